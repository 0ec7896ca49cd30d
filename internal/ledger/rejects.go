package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cinelake/cinelake/pkg/types"
)

// PutRejects stores the rejected rows of a run. Rows carry a TTL so the
// reject history ages out on its own.
func (l *Ledger) PutRejects(ctx context.Context, rejects []types.RejectRecord) error {
	for _, rej := range rejects {
		data, err := json.Marshal(rej)
		if err != nil {
			return fmt.Errorf("marshaling reject for movie %d: %w", rej.MovieID, err)
		}
		_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: &l.tableName,
			Item: map[string]ddbtypes.AttributeValue{
				"PK":   &ddbtypes.AttributeValueMemberS{Value: runPK(rej.Date)},
				"SK":   &ddbtypes.AttributeValueMemberS{Value: rejectSK(rej.RunID, rej.MovieID)},
				"data": &ddbtypes.AttributeValueMemberS{Value: string(data)},
				"ttl":  &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(ttlEpoch(rejectRetention), 10)},
			},
		})
		if err != nil {
			return fmt.Errorf("putting reject for movie %d: %w", rej.MovieID, err)
		}
	}
	return nil
}

// ListRejects returns the rejected rows recorded for a run. Rows past their
// TTL are filtered out; DynamoDB expiry lags the epoch.
func (l *Ledger) ListRejects(ctx context.Context, date, runID string) ([]types.RejectRecord, error) {
	out, err := l.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &l.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :reject)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk":     &ddbtypes.AttributeValueMemberS{Value: runPK(date)},
			":reject": &ddbtypes.AttributeValueMemberS{Value: prefixReject + runID + "#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing rejects for run %s: %w", runID, err)
	}

	var rejects []types.RejectRecord
	for _, item := range out.Items {
		epoch, err := attributeTTL(item)
		if err != nil {
			l.logger.Warn("skipping reject with corrupt ttl", "error", err)
			continue
		}
		if isExpired(epoch) {
			continue
		}
		data, err := attributeStr(item, "data")
		if err != nil {
			l.logger.Warn("skipping corrupt reject entry", "error", err)
			continue
		}
		var rej types.RejectRecord
		if err := json.Unmarshal([]byte(data), &rej); err != nil {
			l.logger.Warn("skipping corrupt reject data", "error", err)
			continue
		}
		rejects = append(rejects, rej)
	}
	return rejects, nil
}
