// Package catalog registers partition objects with the AWS Glue Data
// Catalog so the lake is queryable from Athena. The table schema is derived
// from the CSV column list, which keeps the catalog and the codec in step.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/cinelake/cinelake/internal/csvio"
	"github.com/cinelake/cinelake/pkg/types"
)

// GlueAPI is the subset of the AWS Glue client used by the catalog package.
type GlueAPI interface {
	CreateDatabase(ctx context.Context, params *glue.CreateDatabaseInput, optFns ...func(*glue.Options)) (*glue.CreateDatabaseOutput, error)
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
	CreateTable(ctx context.Context, params *glue.CreateTableInput, optFns ...func(*glue.Options)) (*glue.CreateTableOutput, error)
	CreatePartition(ctx context.Context, params *glue.CreatePartitionInput, optFns ...func(*glue.Options)) (*glue.CreatePartitionOutput, error)
}

const (
	serdeLibrary = "org.apache.hadoop.hive.serde2.OpenCSVSerde"
	inputFormat  = "org.apache.hadoop.mapred.TextInputFormat"
	outputFormat = "org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat"
)

// columnTypes maps CSV columns to Glue types; columns not listed are strings.
var columnTypes = map[string]string{
	"movie_id":     "bigint",
	"budget":       "bigint",
	"revenue":      "bigint",
	"runtime":      "bigint",
	"vote_count":   "bigint",
	"profit":       "bigint",
	"popularity":   "double",
	"vote_average": "double",
	"roi":          "double",
	"adult":        "boolean",
	"release_year": "int",
}

// Catalog manages the external movies table and its partitions.
type Catalog struct {
	client   GlueAPI
	database string
	table    string
	bucket   string
	prefix   string
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithGlueClient sets a custom Glue client (useful for testing).
func WithGlueClient(c GlueAPI) Option {
	return func(cat *Catalog) { cat.client = c }
}

// WithLogger sets the catalog logger.
func WithLogger(l *slog.Logger) Option {
	return func(cat *Catalog) { cat.logger = l }
}

// New creates a catalog over the configured database and table. The store
// configuration supplies the bucket and prefix the table points at.
func New(cfg types.CatalogConfig, storeCfg types.StoreConfig, opts ...Option) (*Catalog, error) {
	if cfg.Database == "" || cfg.Table == "" {
		return nil, fmt.Errorf("catalog database and table required")
	}
	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("catalog requires an s3-backed store")
	}
	cat := &Catalog{
		database: cfg.Database,
		table:    cfg.Table,
		bucket:   storeCfg.Bucket,
		prefix:   strings.TrimRight(storeCfg.Prefix, "/"),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(cat)
	}
	if cat.client == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		cat.client = glue.NewFromConfig(awsCfg)
	}
	return cat, nil
}

// EnsureTable creates the database and the external movies table if either
// is missing. Existing objects are left untouched.
func (c *Catalog) EnsureTable(ctx context.Context) error {
	_, err := c.client.CreateDatabase(ctx, &glue.CreateDatabaseInput{
		DatabaseInput: &gluetypes.DatabaseInput{Name: aws.String(c.database)},
	})
	if err != nil && !alreadyExists(err) {
		return fmt.Errorf("creating glue database %s: %w", c.database, err)
	}

	_, err = c.client.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(c.database),
		Name:         aws.String(c.table),
	})
	if err == nil {
		return nil
	}
	var notFound *gluetypes.EntityNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("getting glue table %s: %w", c.table, err)
	}

	_, err = c.client.CreateTable(ctx, &glue.CreateTableInput{
		DatabaseName: aws.String(c.database),
		TableInput: &gluetypes.TableInput{
			Name:      aws.String(c.table),
			TableType: aws.String("EXTERNAL_TABLE"),
			Parameters: map[string]string{
				"classification":         "csv",
				"skip.header.line.count": "1",
			},
			PartitionKeys: []gluetypes.Column{
				{Name: aws.String("snapshot_date"), Type: aws.String("string")},
			},
			StorageDescriptor: c.storageDescriptor(c.tableLocation()),
		},
	})
	if err != nil && !alreadyExists(err) {
		return fmt.Errorf("creating glue table %s: %w", c.table, err)
	}
	c.logger.Info("glue table ready", "database", c.database, "table", c.table)
	return nil
}

// RegisterPartition adds the partition for ref's date. Registering the same
// date twice is not an error; the partition layout keeps one object per
// date, so each partition points at its single CSV.
func (c *Catalog) RegisterPartition(ctx context.Context, ref types.PartitionRef) error {
	_, err := c.client.CreatePartition(ctx, &glue.CreatePartitionInput{
		DatabaseName: aws.String(c.database),
		TableName:    aws.String(c.table),
		PartitionInput: &gluetypes.PartitionInput{
			Values:            []string{ref.Date},
			StorageDescriptor: c.storageDescriptor(c.objectLocation(ref.Key)),
		},
	})
	if alreadyExists(err) {
		c.logger.Debug("partition already registered", "date", ref.Date)
		return nil
	}
	if err != nil {
		return fmt.Errorf("registering partition %s: %w", ref.Date, err)
	}
	c.logger.Info("partition registered", "date", ref.Date, "key", ref.Key)
	return nil
}

func (c *Catalog) storageDescriptor(location string) *gluetypes.StorageDescriptor {
	return &gluetypes.StorageDescriptor{
		Columns:      tableColumns(),
		Location:     aws.String(location),
		InputFormat:  aws.String(inputFormat),
		OutputFormat: aws.String(outputFormat),
		SerdeInfo: &gluetypes.SerDeInfo{
			SerializationLibrary: aws.String(serdeLibrary),
			Parameters: map[string]string{
				"separatorChar": ",",
				"quoteChar":     `"`,
				"escapeChar":    `\`,
			},
		},
	}
}

func (c *Catalog) tableLocation() string {
	if c.prefix == "" {
		return "s3://" + c.bucket + "/"
	}
	return "s3://" + c.bucket + "/" + c.prefix + "/"
}

func (c *Catalog) objectLocation(key string) string {
	return "s3://" + c.bucket + "/" + key
}

func tableColumns() []gluetypes.Column {
	cols := make([]gluetypes.Column, 0, len(csvio.Header()))
	for _, name := range csvio.Header() {
		colType := columnTypes[name]
		if colType == "" {
			colType = "string"
		}
		cols = append(cols, gluetypes.Column{
			Name: aws.String(name),
			Type: aws.String(colType),
		})
	}
	return cols
}

func alreadyExists(err error) bool {
	var exists *gluetypes.AlreadyExistsException
	return errors.As(err, &exists)
}
