package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CoverStorage keeps book cover images in a MinIO bucket, keyed by book uid.
type CoverStorage struct {
	client *minio.Client
	bucket string
}

// NewCoverStorage creates a MinIO-backed cover store and ensures the bucket exists.
func NewCoverStorage(cfg *MinIOConfig) (*CoverStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &CoverStorage{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Key returns the object key used for a book's cover.
func (s *CoverStorage) Key(bookUID string) string {
	return "covers/" + bookUID
}

// Upload stores a cover image for the book.
func (s *CoverStorage) Upload(ctx context.Context, bookUID string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.Key(bookUID), reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Download returns a ReadCloser for the stored cover.
func (s *CoverStorage) Download(ctx context.Context, bookUID string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.Key(bookUID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// perform a stat to ensure object exists
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// PresignedURL returns a presigned GET URL for the cover, valid for expires.
func (s *CoverStorage) PresignedURL(ctx context.Context, bookUID string, expires time.Duration) (string, error) {
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, s.Key(bookUID), expires, reqParams)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
