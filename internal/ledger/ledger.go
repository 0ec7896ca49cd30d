// Package ledger records pipeline runs and rejected rows in DynamoDB.
//
// The table is single-table style: run metadata and reject rows share a
// partition per snapshot date, and a GSI lists runs across dates. Payloads
// live in a JSON "data" attribute so the item shape never chases the Go
// structs.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cinelake/cinelake/pkg/types"
)

// DDBAPI is the subset of the DynamoDB client used by the ledger.
type DDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// ErrRunNotFound reports that no run record exists for the requested key.
var ErrRunNotFound = errors.New("run not found")

// rejectRetention bounds how long reject rows stay queryable.
const rejectRetention = 30 * 24 * time.Hour

// Ledger is the DynamoDB-backed run history.
type Ledger struct {
	client    DDBAPI
	tableName string
	logger    *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClient sets a custom DynamoDB client (useful for testing).
func WithClient(c DDBAPI) Option {
	return func(l *Ledger) { l.client = c }
}

// WithLogger sets the ledger logger.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Ledger) { l.logger = lg }
}

// New creates a ledger over the configured table.
func New(cfg types.LedgerConfig, opts ...Option) (*Ledger, error) {
	if cfg.TableName == "" {
		return nil, fmt.Errorf("ledger table name required")
	}
	l := &Ledger{
		tableName: cfg.TableName,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	if l.client == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
		}
		// For DynamoDB Local: use static credentials and custom endpoint.
		if cfg.Endpoint != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("local", "local", ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		var clientOpts []func(*dynamodb.Options)
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			})
		}
		l.client = dynamodb.NewFromConfig(awsCfg, clientOpts...)
	}
	return l, nil
}

// Ping checks connectivity by describing the table.
func (l *Ledger) Ping(ctx context.Context) error {
	_, err := l.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: &l.tableName,
	})
	if err != nil {
		return fmt.Errorf("ledger ping failed: %w", err)
	}
	return nil
}

// EnsureTable creates the ledger table and its GSI if missing, and enables
// TTL on the "ttl" attribute.
func (l *Ledger) EnsureTable(ctx context.Context) error {
	_, err := l.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: &l.tableName,
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: ddbtypes.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: ddbtypes.KeyTypeRange},
		},
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String("PK"), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String("SK"), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String("GSI1PK"), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String("GSI1SK"), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		GlobalSecondaryIndexes: []ddbtypes.GlobalSecondaryIndex{
			{
				IndexName: aws.String("GSI1"),
				KeySchema: []ddbtypes.KeySchemaElement{
					{AttributeName: aws.String("GSI1PK"), KeyType: ddbtypes.KeyTypeHash},
					{AttributeName: aws.String("GSI1SK"), KeyType: ddbtypes.KeyTypeRange},
				},
				Projection: &ddbtypes.Projection{ProjectionType: ddbtypes.ProjectionTypeAll},
				ProvisionedThroughput: &ddbtypes.ProvisionedThroughput{
					ReadCapacityUnits:  aws.Int64(5),
					WriteCapacityUnits: aws.Int64(5),
				},
			},
		},
		ProvisionedThroughput: &ddbtypes.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		},
	})
	if err != nil {
		var inUse *ddbtypes.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("creating ledger table: %w", err)
	}

	_, err = l.client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: &l.tableName,
		TimeToLiveSpecification: &ddbtypes.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String("ttl"),
		},
	})
	if err != nil {
		l.logger.Warn("failed to enable TTL (may already be enabled)", "error", err)
	}
	return nil
}
