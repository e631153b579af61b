package users

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/userbook/internal/common"
	"github.com/dmitrijs2005/userbook/internal/models"
)

// S3Options configures the S3 client. Endpoint targets S3-compatible
// servers such as MinIO and switches to path-style addressing.
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// objectAPI is the part of *s3.Client used by S3Repository.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Repository stores the collection as one JSON object, encoded exactly
// like the local file.
type S3Repository struct {
	client objectAPI
	bucket string
	key    string
}

// OpenS3 builds an S3 client from opts and returns a repository for
// s3://bucket/key.
func OpenS3(ctx context.Context, bucket, key string, opts S3Options) (*S3Repository, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Repository(client, bucket, key), nil
}

func newS3Repository(client objectAPI, bucket, key string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, key: key}
}

func (r *S3Repository) Location() string { return schemeS3 + r.bucket + "/" + r.key }

func (r *S3Repository) Close() error { return nil }

func (r *S3Repository) Load(ctx context.Context) ([]models.User, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, common.ErrStorageNotExist
		}
		return nil, fmt.Errorf("get s3 object %s: %w", r.Location(), err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object %s: %w", r.Location(), err)
	}
	return decodeUsers(b)
}

func (r *S3Repository) Save(ctx context.Context, users []models.User) error {
	b, err := encodeUsers(users)
	if err != nil {
		return err
	}
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("put s3 object %s: %w", r.Location(), err)
	}
	return nil
}

// parseS3Location splits s3://bucket/key. The key defaults to users.json.
func parseS3Location(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, schemeS3)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: missing bucket in %s", common.ErrUnsupportedStorage, location)
	}
	if key == "" {
		key = "users.json"
	}
	return bucket, key, nil
}

var _ Repository = (*S3Repository)(nil)
