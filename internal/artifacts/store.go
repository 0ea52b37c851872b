package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hypertune/hypertune/internal/config"
)

const presignExpiry = 6 * time.Hour

// Store is the object store backing dataset uploads. Datasets are addressed
// as s3://<bucket>/<key> URIs; workers exchange those for presigned HTTP
// URLs before handing them to a model capability.
type Store struct {
	client *minio.Client
	bucket string
}

func NewStore(cfg *config.Config) (*Store, error) {
	if cfg.Artifact.Endpoint == "" {
		return nil, fmt.Errorf("artifact store endpoint is required")
	}

	client, err := minio.New(cfg.Artifact.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Artifact.AccessKey, cfg.Artifact.SecretKey, ""),
		Secure: cfg.Artifact.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &Store{client: client, bucket: cfg.Artifact.Bucket}, nil
}

// EnsureBucket creates the backing bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Upload stores a dataset object and returns its URI.
func (s *Store) Upload(ctx context.Context, key string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// ResolveURI turns an s3:// dataset URI into a presigned HTTP URL. Other
// schemes are passed through untouched so capabilities can use plain file
// paths or HTTP URLs directly.
func (s *Store) ResolveURI(ctx context.Context, datasetURI string) (string, error) {
	parsed, err := url.Parse(datasetURI)
	if err != nil {
		return "", fmt.Errorf("parsing dataset uri %q: %w", datasetURI, err)
	}
	if parsed.Scheme != "s3" {
		return datasetURI, nil
	}

	key := parsed.Path
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}

	presigned, err := s.client.PresignedGetObject(ctx, parsed.Host, key, presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", datasetURI, err)
	}

	return presigned.String(), nil
}
