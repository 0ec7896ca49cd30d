package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelake/cinelake/pkg/types"
)

type mockS3 struct {
	putFn  func(input *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	getFn  func(input *s3.GetObjectInput) (*s3.GetObjectOutput, error)
	listFn func(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putFn(input)
}

func (m *mockS3) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.getFn(input)
}

func (m *mockS3) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return m.listFn(input)
}

func newTestS3Store(t *testing.T, mock *mockS3) *S3Store {
	t.Helper()
	cfg := types.StoreConfig{Bucket: "movie-lake", Prefix: "daily_outputs"}
	s, err := NewS3Store(cfg, WithS3Client(mock))
	require.NoError(t, err)
	return s
}

func TestS3Store_Put(t *testing.T) {
	var captured *s3.PutObjectInput
	mock := &mockS3{
		putFn: func(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			captured = input
			return &s3.PutObjectOutput{}, nil
		},
	}
	s := newTestS3Store(t, mock)

	ref, err := s.Put(context.Background(), "2024-03-01", []byte("movie_id,title\n"))
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "movie-lake", *captured.Bucket)
	assert.Equal(t, "daily_outputs/movies_data_2024-03-01.csv", *captured.Key)
	assert.Equal(t, "text/csv", *captured.ContentType)

	assert.Equal(t, "2024-03-01", ref.Date)
	assert.Equal(t, "daily_outputs/movies_data_2024-03-01.csv", ref.Key)
	assert.Equal(t, int64(len("movie_id,title\n")), ref.Bytes)
}

func TestS3Store_PutError(t *testing.T) {
	mock := &mockS3{
		putFn: func(*s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			return nil, errors.New("access denied")
		},
	}
	s := newTestS3Store(t, mock)

	_, err := s.Put(context.Background(), "2024-03-01", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "putting partition 2024-03-01")
}

func TestS3Store_Get(t *testing.T) {
	mock := &mockS3{
		getFn: func(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "daily_outputs/movies_data_2024-03-01.csv", *input.Key)
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("csv-bytes"))}, nil
		},
	}
	s := newTestS3Store(t, mock)

	data, err := s.Get(context.Background(), "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "csv-bytes", string(data))
}

func TestS3Store_GetMissing(t *testing.T) {
	mock := &mockS3{
		getFn: func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return nil, &s3types.NoSuchKey{}
		},
	}
	s := newTestS3Store(t, mock)

	_, err := s.Get(context.Background(), "2024-03-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_ListPagesAndSorts(t *testing.T) {
	modified := time.Date(2024, 3, 2, 4, 0, 0, 0, time.UTC)
	var tokens []*string
	mock := &mockS3{
		listFn: func(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			tokens = append(tokens, input.ContinuationToken)
			if input.ContinuationToken == nil {
				return &s3.ListObjectsV2Output{
					Contents: []s3types.Object{
						{Key: aws.String("daily_outputs/movies_data_2024-03-02.csv"), Size: aws.Int64(20), LastModified: &modified},
						{Key: aws.String("daily_outputs/manifest.json"), Size: aws.Int64(1)},
					},
					NextContinuationToken: aws.String("page-2"),
				}, nil
			}
			return &s3.ListObjectsV2Output{
				Contents: []s3types.Object{
					{Key: aws.String("daily_outputs/movies_data_2024-03-01.csv"), Size: aws.Int64(10)},
				},
			}, nil
		},
	}
	s := newTestS3Store(t, mock)

	refs, err := s.List(context.Background())
	require.NoError(t, err)

	require.Len(t, tokens, 2, "continuation token drives a second page")
	require.Len(t, refs, 2, "foreign keys are ignored")
	assert.Equal(t, "2024-03-01", refs[0].Date)
	assert.Equal(t, "2024-03-02", refs[1].Date)
	assert.Equal(t, int64(20), refs[1].Bytes)
	assert.Equal(t, modified, refs[1].UpdatedAt)
}

func TestNewS3Store_MissingBucket(t *testing.T) {
	_, err := NewS3Store(types.StoreConfig{Prefix: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket name required")
}
