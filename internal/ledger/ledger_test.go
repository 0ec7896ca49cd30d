package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelake/cinelake/pkg/types"
)

// mockDDB is a minimal mock of the DDBAPI interface for unit testing.
type mockDDB struct {
	putItemFn       func(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	getItemFn       func(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	queryFn         func(ctx context.Context, input *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	describeTableFn func(ctx context.Context, input *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	createTableFn   func(ctx context.Context, input *dynamodb.CreateTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	updateTTLFn     func(ctx context.Context, input *dynamodb.UpdateTimeToLiveInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

func (m *mockDDB) PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.putItemFn != nil {
		return m.putItemFn(ctx, input, opts...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDB) GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, input, opts...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDDB) Query(ctx context.Context, input *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, input, opts...)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockDDB) DescribeTable(ctx context.Context, input *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if m.describeTableFn != nil {
		return m.describeTableFn(ctx, input, opts...)
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func (m *mockDDB) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	if m.createTableFn != nil {
		return m.createTableFn(ctx, input, opts...)
	}
	return &dynamodb.CreateTableOutput{}, nil
}

func (m *mockDDB) UpdateTimeToLive(ctx context.Context, input *dynamodb.UpdateTimeToLiveInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	if m.updateTTLFn != nil {
		return m.updateTTLFn(ctx, input, opts...)
	}
	return &dynamodb.UpdateTimeToLiveOutput{}, nil
}

func newTestLedger(mock *mockDDB) *Ledger {
	return &Ledger{
		client:    mock,
		tableName: "test-table",
		logger:    slog.Default(),
	}
}

func sampleRun() types.RunRecord {
	return types.RunRecord{
		RunID:        "01HTEST0000000000000000000",
		Date:         "2024-03-01",
		Status:       types.RunCompleted,
		Extracted:    100,
		Enriched:     50,
		Processed:    98,
		Rejected:     2,
		PartitionKey: "daily_outputs/movies_data_2024-03-01.csv",
		StartedAt:    time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
	}
}

func runItem(t *testing.T, run types.RunRecord) map[string]ddbtypes.AttributeValue {
	t.Helper()
	data, err := json.Marshal(run)
	require.NoError(t, err)
	return map[string]ddbtypes.AttributeValue{
		"PK":   &ddbtypes.AttributeValueMemberS{Value: runPK(run.Date)},
		"SK":   &ddbtypes.AttributeValueMemberS{Value: runSK(run.RunID)},
		"data": &ddbtypes.AttributeValueMemberS{Value: string(data)},
	}
}

func TestPutRun_ItemShape(t *testing.T) {
	var captured *dynamodb.PutItemInput
	mock := &mockDDB{
		putItemFn: func(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			captured = input
			return &dynamodb.PutItemOutput{}, nil
		},
	}
	l := newTestLedger(mock)

	run := sampleRun()
	require.NoError(t, l.PutRun(context.Background(), run))

	require.NotNil(t, captured)
	assert.Equal(t, "test-table", *captured.TableName)
	assert.Equal(t, "RUN#2024-03-01", captured.Item["PK"].(*ddbtypes.AttributeValueMemberS).Value)
	assert.Equal(t, "META#"+run.RunID, captured.Item["SK"].(*ddbtypes.AttributeValueMemberS).Value)
	assert.Equal(t, "TYPE#run", captured.Item["GSI1PK"].(*ddbtypes.AttributeValueMemberS).Value)
	assert.Equal(t, "2024-03-01#"+run.RunID, captured.Item["GSI1SK"].(*ddbtypes.AttributeValueMemberS).Value)

	var stored types.RunRecord
	data := captured.Item["data"].(*ddbtypes.AttributeValueMemberS).Value
	require.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.Equal(t, run, stored)
}

func TestGetRun(t *testing.T) {
	run := sampleRun()
	mock := &mockDDB{
		getItemFn: func(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			assert.Equal(t, "RUN#2024-03-01", input.Key["PK"].(*ddbtypes.AttributeValueMemberS).Value)
			return &dynamodb.GetItemOutput{Item: runItem(t, run)}, nil
		},
	}
	l := newTestLedger(mock)

	got, err := l.GetRun(context.Background(), run.Date, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run, *got)
}

func TestGetRun_Missing(t *testing.T) {
	l := newTestLedger(&mockDDB{})

	_, err := l.GetRun(context.Background(), "2024-03-01", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_QueriesGSINewestFirst(t *testing.T) {
	older := sampleRun()
	newer := sampleRun()
	newer.RunID = "01HTEST0000000000000000001"
	newer.Date = "2024-03-02"

	var captured *dynamodb.QueryInput
	mock := &mockDDB{
		queryFn: func(_ context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			captured = input
			return &dynamodb.QueryOutput{
				Items: []map[string]ddbtypes.AttributeValue{
					runItem(t, newer),
					runItem(t, older),
					{"data": &ddbtypes.AttributeValueMemberS{Value: "{corrupt"}},
				},
			}, nil
		},
	}
	l := newTestLedger(mock)

	runs, err := l.ListRuns(context.Background(), 10)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "GSI1", *captured.IndexName)
	assert.False(t, *captured.ScanIndexForward)
	assert.Equal(t, int32(10), *captured.Limit)

	require.Len(t, runs, 2, "corrupt entries are skipped")
	assert.Equal(t, "2024-03-02", runs[0].Date)
}

func TestListRunsForDate(t *testing.T) {
	run := sampleRun()
	mock := &mockDDB{
		queryFn: func(_ context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			assert.Contains(t, *input.KeyConditionExpression, "begins_with")
			assert.Equal(t, "META#",
				input.ExpressionAttributeValues[":meta"].(*ddbtypes.AttributeValueMemberS).Value)
			return &dynamodb.QueryOutput{
				Items: []map[string]ddbtypes.AttributeValue{runItem(t, run)},
			}, nil
		},
	}
	l := newTestLedger(mock)

	runs, err := l.ListRunsForDate(context.Background(), "2024-03-01")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.RunID, runs[0].RunID)
}

func TestPutRejects_ItemShapeAndTTL(t *testing.T) {
	var items []map[string]ddbtypes.AttributeValue
	mock := &mockDDB{
		putItemFn: func(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			items = append(items, input.Item)
			return &dynamodb.PutItemOutput{}, nil
		},
	}
	l := newTestLedger(mock)

	rejects := []types.RejectRecord{
		{RunID: "run-1", Date: "2024-03-01", MovieID: 603, Field: "vote_average", Reason: "out of range"},
		{RunID: "run-1", Date: "2024-03-01", MovieID: 604, Field: "budget", Reason: "negative"},
	}
	require.NoError(t, l.PutRejects(context.Background(), rejects))

	require.Len(t, items, 2)
	assert.Equal(t, "REJECT#run-1#603", items[0]["SK"].(*ddbtypes.AttributeValueMemberS).Value)

	ttlStr := items[0]["ttl"].(*ddbtypes.AttributeValueMemberN).Value
	epoch, err := strconv.ParseInt(ttlStr, 10, 64)
	require.NoError(t, err)
	assert.Greater(t, epoch, time.Now().Unix())
	assert.LessOrEqual(t, epoch, time.Now().Add(rejectRetention).Unix())
}

func TestListRejects_FiltersExpired(t *testing.T) {
	live := types.RejectRecord{RunID: "run-1", Date: "2024-03-01", MovieID: 603, Field: "budget", Reason: "negative"}
	liveData, err := json.Marshal(live)
	require.NoError(t, err)
	expired := types.RejectRecord{RunID: "run-1", Date: "2024-03-01", MovieID: 604, Field: "budget", Reason: "negative"}
	expiredData, err := json.Marshal(expired)
	require.NoError(t, err)

	mock := &mockDDB{
		queryFn: func(_ context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			assert.Equal(t, "REJECT#run-1#",
				input.ExpressionAttributeValues[":reject"].(*ddbtypes.AttributeValueMemberS).Value)
			return &dynamodb.QueryOutput{
				Items: []map[string]ddbtypes.AttributeValue{
					{
						"data": &ddbtypes.AttributeValueMemberS{Value: string(liveData)},
						"ttl":  &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)},
					},
					{
						"data": &ddbtypes.AttributeValueMemberS{Value: string(expiredData)},
						"ttl":  &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)},
					},
				},
			}, nil
		},
	}
	l := newTestLedger(mock)

	rejects, err := l.ListRejects(context.Background(), "2024-03-01", "run-1")
	require.NoError(t, err)
	require.Len(t, rejects, 1)
	assert.Equal(t, int64(603), rejects[0].MovieID)
}

func TestEnsureTable_ExistingTable(t *testing.T) {
	mock := &mockDDB{
		createTableFn: func(_ context.Context, _ *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
			return nil, &ddbtypes.ResourceInUseException{}
		},
	}
	l := newTestLedger(mock)

	assert.NoError(t, l.EnsureTable(context.Background()))
}

func TestEnsureTable_TTLFailureIsNotFatal(t *testing.T) {
	mock := &mockDDB{
		updateTTLFn: func(_ context.Context, _ *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
			return nil, errors.New("already enabled")
		},
	}
	l := newTestLedger(mock)

	assert.NoError(t, l.EnsureTable(context.Background()))
}

func TestPing_Error(t *testing.T) {
	mock := &mockDDB{
		describeTableFn: func(_ context.Context, _ *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			return nil, errors.New("no such table")
		},
	}
	l := newTestLedger(mock)

	err := l.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger ping failed")
}

func TestNew_MissingTable(t *testing.T) {
	_, err := New(types.LedgerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table name required")
}
