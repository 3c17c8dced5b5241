package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"supplyscore/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps the artifact as a single object. A PutObject replaces the object atomically.
type S3Store struct {
	client s3API
	bucket string
	key    string
}

// NewS3Store creates an S3Store using the default AWS credential chain.
func NewS3Store(ctx context.Context, region, bucket, key string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewS3StoreWith(s3.NewFromConfig(cfg), bucket, key), nil
}

// NewS3StoreWith creates an S3Store around an existing client.
func NewS3StoreWith(client s3API, bucket, key string) *S3Store {
	if key == "" {
		key = DefaultKey + ".json"
	}
	return &S3Store{client: client, bucket: bucket, key: key}
}

func (s *S3Store) location() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Save uploads the encoded artifact, replacing the object.
func (s *S3Store) Save(ctx context.Context, m *model.Model) error {
	data, err := encode(s.location(), m)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return &StorageError{Op: "save", Location: s.location(), Err: err}
	}
	return nil
}

// Load downloads and decodes the object. A missing key yields ErrNotFound.
func (s *S3Store) Load(ctx context.Context) (*model.Model, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load", Location: s.location(), Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &StorageError{Op: "load", Location: s.location(), Err: err}
	}
	return decode(s.location(), data)
}
