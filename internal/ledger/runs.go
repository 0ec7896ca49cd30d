package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cinelake/cinelake/pkg/types"
)

// PutRun stores a run record, replacing any previous version.
func (l *Ledger) PutRun(ctx context.Context, run types.RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &l.tableName,
		Item: map[string]ddbtypes.AttributeValue{
			"PK":     &ddbtypes.AttributeValueMemberS{Value: runPK(run.Date)},
			"SK":     &ddbtypes.AttributeValueMemberS{Value: runSK(run.RunID)},
			"GSI1PK": &ddbtypes.AttributeValueMemberS{Value: typeRun},
			"GSI1SK": &ddbtypes.AttributeValueMemberS{Value: runListSK(run.Date, run.RunID)},
			"data":   &ddbtypes.AttributeValueMemberS{Value: string(data)},
		},
	})
	if err != nil {
		return fmt.Errorf("putting run %s: %w", run.RunID, err)
	}
	return nil
}

// UpdateRun rewrites the run record with its final counts and status.
func (l *Ledger) UpdateRun(ctx context.Context, run types.RunRecord) error {
	return l.PutRun(ctx, run)
}

// GetRun retrieves one run record, or ErrRunNotFound.
func (l *Ledger) GetRun(ctx context.Context, date, runID string) (*types.RunRecord, error) {
	out, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &l.tableName,
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: runPK(date)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: runSK(runID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", runID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("run %s on %s: %w", runID, date, ErrRunNotFound)
	}

	data, err := attributeStr(out.Item, "data")
	if err != nil {
		return nil, err
	}
	var run types.RunRecord
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("unmarshaling run %s: %w", runID, err)
	}
	return &run, nil
}

// ListRunsForDate returns every run recorded for a snapshot date.
func (l *Ledger) ListRunsForDate(ctx context.Context, date string) ([]types.RunRecord, error) {
	out, err := l.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &l.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :meta)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk":   &ddbtypes.AttributeValueMemberS{Value: runPK(date)},
			":meta": &ddbtypes.AttributeValueMemberS{Value: prefixMeta},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing runs for %s: %w", date, err)
	}
	return l.decodeRuns(out.Items), nil
}

// ListRuns returns the most recent runs across all dates, newest first.
// A limit of 0 means no limit.
func (l *Ledger) ListRuns(ctx context.Context, limit int32) ([]types.RunRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              &l.tableName,
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: typeRun},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	out, err := l.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return l.decodeRuns(out.Items), nil
}

func (l *Ledger) decodeRuns(items []map[string]ddbtypes.AttributeValue) []types.RunRecord {
	var runs []types.RunRecord
	for _, item := range items {
		data, err := attributeStr(item, "data")
		if err != nil {
			l.logger.Warn("skipping corrupt run entry", "error", err)
			continue
		}
		var run types.RunRecord
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			l.logger.Warn("skipping corrupt run data", "error", err)
			continue
		}
		runs = append(runs, run)
	}
	return runs
}

// attributeStr extracts a string attribute from a DynamoDB item.
func attributeStr(item map[string]ddbtypes.AttributeValue, key string) (string, error) {
	av, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", key)
	}
	var s string
	if err := attributevalue.Unmarshal(av, &s); err != nil {
		return "", fmt.Errorf("unmarshaling %q: %w", key, err)
	}
	return s, nil
}

// attributeTTL extracts the "ttl" integer attribute from a DynamoDB item.
func attributeTTL(item map[string]ddbtypes.AttributeValue) (int64, error) {
	av, ok := item["ttl"]
	if !ok {
		return 0, nil
	}
	var n int64
	if err := attributevalue.Unmarshal(av, &n); err != nil {
		return 0, fmt.Errorf("unmarshaling %q: %w", "ttl", err)
	}
	return n, nil
}
