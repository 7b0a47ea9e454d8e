package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// S3Client is the subset of the S3 API the store uses. Declared as an
// interface so tests can substitute a mock.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Store implements Store on Amazon S3 or an S3-compatible service.
// Object keys are generated names under an optional prefix. Safe for
// concurrent use.
type S3Store struct {
	client    S3Client
	bucket    string
	prefix    string
	validator *Validator
	log       *slog.Logger
}

// S3Option configures S3Store.
type S3Option func(*s3Options)

type s3Options struct {
	client S3Client
	log    *slog.Logger
}

// WithS3Client sets a pre-configured client, bypassing AWS config loading.
// Useful for tests and for sharing a client between stores.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) { o.client = client }
}

// WithS3Logger supplies a logger. Defaults to slog.Default().
func WithS3Logger(log *slog.Logger) S3Option {
	return func(o *s3Options) {
		if log != nil {
			o.log = log
		}
	}
}

// NewS3Store creates an S3-backed store from the intake policy and S3
// settings. Without WithS3Client the AWS SDK configuration is loaded from
// the environment, with static credentials and a custom endpoint applied
// when configured.
func NewS3Store(ctx context.Context, cfg Config, s3cfg S3Config, opts ...S3Option) (*S3Store, error) {
	if s3cfg.Bucket == "" || cfg.MaxFileSize <= 0 {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{log: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	client := options.client
	if client == nil {
		if s3cfg.Region == "" {
			return nil, ErrInvalidConfig
		}

		awsOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(s3cfg.Region),
		}
		if s3cfg.AccessKeyID != "" && s3cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					s3cfg.AccessKeyID,
					s3cfg.SecretKey,
					"",
				)),
			)
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			if s3cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			}
			o.UsePathStyle = s3cfg.ForcePathStyle
		})
	}

	prefix := strings.Trim(s3cfg.KeyPrefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &S3Store{
		client:    client,
		bucket:    s3cfg.Bucket,
		prefix:    prefix,
		validator: NewValidator(cfg.MaxFileSize, cfg.AllowedExtensions),
		log:       options.log,
	}, nil
}

// Save validates, then uploads the payload under a fresh generated key.
// S3 object writes are atomic by nature, so no rename dance is needed.
func (s *S3Store) Save(ctx context.Context, src io.Reader, sizeBytes int64, ext string) (string, error) {
	if err := s.validator.Validate(sizeBytes, ext); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + name),
		Body:          io.LimitReader(src, s.validator.MaxFileSize()),
		ContentLength: aws.Int64(sizeBytes),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	s.log.InfoContext(ctx, "file saved",
		slog.String("name", name),
		slog.Int64("size", sizeBytes))

	return name, nil
}

// Load streams the object body. The caller owns closing the stream.
func (s *S3Store) Load(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	key, err := s.resolveKey(name)
	if err != nil {
		return nil, 0, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}

	return out.Body, aws.ToInt64(out.ContentLength), nil
}

// Delete removes the object, reporting false when it was never there.
func (s *S3Store) Delete(ctx context.Context, name string) (bool, error) {
	key, err := s.resolveKey(name)
	if err != nil {
		return false, err
	}

	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return false, fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}

	s.log.InfoContext(ctx, "file deleted", slog.String("name", name))
	return true, nil
}

// Purge removes every object under the configured prefix, batching the
// deletes at the API's 1000-key limit.
func (s *S3Store) Purge(ctx context.Context) error {
	var objects []types.ObjectIdentifier
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToPurge, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
		if !aws.ToBool(page.IsTruncated) {
			break
		}
		token = page.NextContinuationToken
	}

	for i := 0; i < len(objects); i += 1000 {
		end := min(i+1000, len(objects))
		if _, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects[i:end]},
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToPurge, err)
		}
	}

	s.log.InfoContext(ctx, "object prefix purged",
		slog.String("bucket", s.bucket),
		slog.Int("objects", len(objects)))
	return nil
}

func (s *S3Store) resolveKey(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return s.prefix + name, nil
}

// isS3NotFound recognizes the absent-object answers S3 gives: typed
// NoSuchKey from GetObject, bare 404/"NotFound" codes from HeadObject.
func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
