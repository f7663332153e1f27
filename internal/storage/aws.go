package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// maxReportBytes caps how much of an S3 object GetFromS3 will read.
const maxReportBytes = 32 << 20

// AWSStorage keeps report documents as JSON objects in one S3 bucket.
type AWSStorage struct {
	s3Client *s3.Client
	bucket   string
	region   string
}

// NewAWSStorage loads the default credential chain (optionally pinned to a
// shared-config profile) and returns an S3-backed report store.
func NewAWSStorage(ctx context.Context, bucket, region, profile string) (*AWSStorage, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &AWSStorage{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucket,
		region:   region,
	}, nil
}

// SaveToS3 writes data as a JSON object under key. meta becomes the
// object's user metadata.
func (s *AWSStorage) SaveToS3(ctx context.Context, key string, data interface{}, meta map[string]string) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata:    meta,
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

// GetFromS3 decodes the JSON object at key into target. A missing key
// yields ErrNotFound.
func (s *AWSStorage) GetFromS3(ctx context.Context, key string, target interface{}) error {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return ErrNotFound
		}
		return fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxReportBytes))
	if err != nil {
		return fmt.Errorf("s3 read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding report %s: %w", key, err)
	}
	return nil
}

// Check confirms the bucket exists and is reachable with our credentials.
func (s *AWSStorage) Check(ctx context.Context) error {
	if _, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}
