package infrastructure

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"account-service/internal/config"
)

// UploadStore writes an uploaded blob under name and returns where it went.
type UploadStore interface {
	Save(ctx context.Context, name string, src io.Reader, size int64, contentType string) (string, error)
}

func NewUploadStore(ctx context.Context, cfg config.UploadConfig) (UploadStore, error) {
	switch cfg.Backend {
	case "", "fs":
		return NewFSUploadStore(cfg.Dir)
	case "minio":
		return NewMinioUploadStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
}

type FSUploadStore struct {
	dir string
}

// NewFSUploadStore creates dir if it does not exist yet.
func NewFSUploadStore(dir string) (*FSUploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FSUploadStore{dir: dir}, nil
}

func (s *FSUploadStore) Save(_ context.Context, name string, src io.Reader, _ int64, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(name))

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return path, nil
}

type MinioUploadStore struct {
	client *minio.Client
	bucket string
}

// NewMinioUploadStore connects and creates the bucket when missing.
func NewMinioUploadStore(ctx context.Context, cfg config.UploadConfig) (*MinioUploadStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioUploadStore{client: client, bucket: cfg.MinioBucket}, nil
}

func (s *MinioUploadStore) Save(ctx context.Context, name string, src io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, name, src, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return info.Bucket + "/" + info.Key, nil
}
