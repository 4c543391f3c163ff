package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is used when a location does not name one (optional).
	Bucket string `env:"S3_BUCKET"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `env:"S3_ACCESS_KEY"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `env:"S3_SECRET_KEY"`

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `env:"S3_ENDPOINT"`

	// Region is the AWS region (default: us-east-1).
	Region string `env:"S3_REGION" envDefault:"us-east-1"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"S3_PATH_STYLE"`
}

// Enabled reports whether credentials are configured.
func (c Config) Enabled() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *Config) validate() error {
	if c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// S3 reads and writes sources in S3-compatible object storage.
// Locations have the form s3://bucket/key.
type S3 struct {
	client *s3.Client
	cfg    Config
}

// NewS3 creates an S3 backend with the given configuration.
func NewS3(cfg Config) (*S3, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// Open downloads the object at loc.
func (s *S3) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	bucket, key, err := s.object(loc)
	if err != nil {
		return nil, err
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrReadFailed)
	}

	return output.Body, nil
}

// Put uploads data to loc, replacing any existing object.
func (s *S3) Put(ctx context.Context, loc Location, data []byte) error {
	bucket, key, err := s.object(loc)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/yaml"),
	})
	if err != nil {
		return wrapS3Error(err, ErrWriteFailed)
	}

	return nil
}

func (s *S3) object(loc Location) (bucket, key string, err error) {
	bucket = loc.Host
	if bucket == "" {
		bucket = s.cfg.Bucket
	}
	if bucket == "" || loc.Path == "" {
		return "", "", ErrInvalidLocation
	}
	return bucket, loc.Path, nil
}

var _ Storage = (*S3)(nil)
