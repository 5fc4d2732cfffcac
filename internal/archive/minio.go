// Package archive keeps raw snapshots of crawled pages in object storage.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type MinioStore struct {
	client objectPutter
	bucket string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (m *MinioStore) SaveSnapshot(ctx context.Context, userID, attemptID, html string) (string, error) {
	key := SnapshotKey(userID, attemptID)
	_, err := m.client.PutObject(ctx, m.bucket, key, strings.NewReader(html), int64(len(html)), minio.PutObjectOptions{
		ContentType: "text/html; charset=utf-8",
		UserMetadata: map[string]string{
			"user-id":    userID,
			"attempt-id": attemptID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put snapshot: %w", err)
	}
	return key, nil
}

// SnapshotKey is the object name of an attempt's snapshot.
func SnapshotKey(userID, attemptID string) string {
	return path.Join("crawl-snapshots", userID, attemptID+".html")
}
