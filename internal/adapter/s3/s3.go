// Package s3 stores the patient document as a single object in an
// S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"patients/internal/domain"
)

// objectAPI is the subset of *s3.Client the store needs.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store implements domain.PatientRepository on one object key.
type Store struct {
	client objectAPI
	bucket string
	key    string
}

var _ domain.PatientRepository = (*Store)(nil)

// Config holds explicit construction parameters.
type Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // optional; set for MinIO and other S3-compatible servers
	PathStyle       bool
	AccessKeyID     string // optional; falls back to the default credentials chain
	SecretAccessKey string
}

// New creates an S3 document store from cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newWithClient(client, cfg.Bucket, cfg.Key), nil
}

func newWithClient(client objectAPI, bucket, key string) *Store {
	if key == "" {
		key = "patients"
	}
	return &Store{client: client, bucket: bucket, key: key}
}

// Load downloads and decodes the document object.
func (s *Store) Load(ctx context.Context) (*domain.Collection, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, &domain.StorageError{Op: "load", Err: fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, domain.ErrDocumentNotFound)}
		}
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	defer func() { _ = out.Body.Close() }()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	c, err := domain.DecodeCollection(b)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	return c, nil
}

// Save uploads the encoded document, replacing the object.
func (s *Store) Save(ctx context.Context, c *domain.Collection) error {
	b, err := domain.EncodeCollection(c)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &s.key,
		Body:          bytes.NewReader(b),
		ContentLength: aws.Int64(int64(len(b))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}
