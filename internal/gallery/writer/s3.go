package writer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 writes media into an S3-compatible bucket, using the gallery
// folder layout as the key prefix structure.
type S3 struct {
	logger *slog.Logger
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 writer. Endpoint and path-style addressing make
// it work against MinIO and other S3-compatible services.
func NewS3(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("access key and secret key are required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var optFns []func(*awsconfig.LoadOptions) error
	optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	optFns = append(optFns, awsconfig.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	var s3OptFns []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3{
		logger: logger,
		client: s3.NewFromConfig(awsCfg, s3OptFns...),
		bucket: cfg.Bucket,
		prefix: cfg.KeyPrefix,
	}, nil
}

// Type returns the writer type identifier.
func (w *S3) Type() string {
	return TypeS3
}

// Capabilities reports that bytes are uploaded verbatim, so animated
// GIFs survive the image path.
func (w *S3) Capabilities() Capabilities {
	return Capabilities{PreservesAnimatedGIF: true}
}

// SaveImage puts image bytes under the key for the request's relative
// path and file name.
func (w *S3) SaveImage(ctx context.Context, req ImageRequest) error {
	key := w.objectKey(req.RelativePath, req.FileName)

	if req.SkipIfExists {
		exists, err := w.objectExists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			w.logger.Debug("object already exists, skipping",
				"key", key,
			)
			return nil
		}
	}

	return w.putObject(ctx, key, req.Bytes, detectContentType(req.FileName, req.Bytes))
}

// SaveFile reads a file from disk and puts it as one object.
func (w *S3) SaveFile(ctx context.Context, req FileRequest) error {
	content, err := os.ReadFile(req.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	key := w.objectKey(req.RelativePath, req.FileName)

	if req.SkipIfExists {
		exists, err := w.objectExists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			w.logger.Debug("object already exists, skipping",
				"key", key,
			)
			return nil
		}
	}

	return w.putObject(ctx, key, content, detectContentType(req.FileName, content))
}

// SaveFiles saves a batch with independent per-item outcomes.
func (w *S3) SaveFiles(ctx context.Context, reqs []FileRequest) (BatchOutcome, error) {
	return saveEach(ctx, w, reqs)
}

func (w *S3) putObject(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	w.logger.Debug("object uploaded",
		"key", key,
		"size", len(content),
	)
	return nil
}

func (w *S3) objectExists(ctx context.Context, key string) (bool, error) {
	_, err := w.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		// Check if it's a "not found" error
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}
	return true, nil
}

func (w *S3) objectKey(relativePath, fileName string) string {
	return path.Join(w.prefix, relativePath, fileName)
}
