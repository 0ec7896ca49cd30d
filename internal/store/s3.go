package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cinelake/cinelake/pkg/types"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps partitions in an S3 bucket.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// S3Option configures an S3Store.
type S3Option func(*S3Store)

// WithS3Client sets a custom S3 client (useful for testing).
func WithS3Client(c S3API) S3Option {
	return func(s *S3Store) { s.client = c }
}

// NewS3Store creates a partition store backed by the named bucket.
func NewS3Store(cfg types.StoreConfig, opts ...S3Option) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket name required")
	}
	s := &S3Store{
		bucket: cfg.Bucket,
		prefix: strings.TrimRight(cfg.Prefix, "/"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.client == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		s.client = s3.NewFromConfig(awsCfg)
	}
	return s, nil
}

// Put uploads the partition CSV for date.
func (s *S3Store) Put(ctx context.Context, date string, data []byte) (types.PartitionRef, error) {
	key := ObjectKey(s.prefix, date)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return types.PartitionRef{}, fmt.Errorf("putting partition %s to s3: %w", date, err)
	}
	return types.PartitionRef{Date: date, Key: key, Bytes: int64(len(data))}, nil
}

// Get downloads the partition CSV for date.
func (s *S3Store) Get(ctx context.Context, date string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ObjectKey(s.prefix, date)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("partition %s: %w", date, ErrNotFound)
		}
		return nil, fmt.Errorf("getting partition %s from s3: %w", date, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading partition %s body: %w", date, err)
	}
	return data, nil
}

// List pages through the bucket prefix and returns every partition object
// whose key matches the layout, ascending by date.
func (s *S3Store) List(ctx context.Context) ([]types.PartitionRef, error) {
	var refs []types.PartitionRef
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("listing partitions: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			date, ok := dateFromName(path.Base(key))
			if !ok {
				continue
			}
			ref := types.PartitionRef{
				Date:  date,
				Key:   key,
				Bytes: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				ref.UpdatedAt = obj.LastModified.UTC()
			}
			refs = append(refs, ref)
		}
		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	slices.SortFunc(refs, func(a, b types.PartitionRef) int {
		return strings.Compare(a.Date, b.Date)
	})
	return refs, nil
}
