package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

type Storage struct {
	client    *minio.Client
	publicURL string
}

// NewStorage wraps the client. publicURL is the externally reachable base of
// the object store, used to build the returned object URLs.
func NewStorage(client *minio.Client, publicURL string) *Storage {
	return &Storage{client: client, publicURL: publicURL}
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return "", err
	}
	if !exists {
		if err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return "", err
		}
	}

	_, err = s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, objectName), nil
}

var _ ports.ObjectStorage = (*Storage)(nil)
