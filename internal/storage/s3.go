package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// keyPrefix groups resume objects inside the bucket.
const keyPrefix = "resumes/"

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures an S3-compatible bucket (AWS, R2, MinIO).
type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// S3Store writes files to an S3-compatible object store.
type S3Store struct {
	client objectPutter
	bucket string
}

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: s3 bucket is empty")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Name implements Store.
func (s *S3Store) Name() string { return "s3" }

// Save uploads r as a new object. The body is buffered so the request can be
// signed with a known length.
func (s *S3Store) Save(ctx context.Context, originalName string, r io.Reader) (Blob, error) {
	var buf bytes.Buffer
	n, err := io.CopyBuffer(&buf, r, make([]byte, copyBufferSize))
	if err != nil {
		return Blob{}, fmt.Errorf("storage: read upload: %w", err)
	}

	name := generatedName(originalName)
	key := keyPrefix + name
	data := buf.Bytes()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(n),
		ContentType:   aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		return Blob{}, fmt.Errorf("storage: put s3://%s/%s: %w", s.bucket, key, err)
	}

	return Blob{Filename: name, Location: fmt.Sprintf("s3://%s/%s", s.bucket, key), Size: n}, nil
}
