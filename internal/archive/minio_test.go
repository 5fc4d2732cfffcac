package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
)

type fakePutter struct {
	bucket, key, body string
	opts              minio.PutObjectOptions
	err               error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if int64(len(raw)) != size {
		return minio.UploadInfo{}, errors.New("size mismatch")
	}
	f.bucket, f.key, f.body, f.opts = bucket, key, string(raw), opts
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func TestSaveSnapshot(t *testing.T) {
	putter := &fakePutter{}
	store := &MinioStore{client: putter, bucket: "snaps"}

	key, err := store.SaveSnapshot(context.Background(), "usr_1", "ca_1", "<p>hello</p>")
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if key != "crawl-snapshots/usr_1/ca_1.html" || putter.key != key || putter.bucket != "snaps" {
		t.Fatalf("unexpected placement: key=%q putter=%+v", key, putter)
	}
	if putter.body != "<p>hello</p>" || putter.opts.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("unexpected upload: %+v", putter)
	}
}

func TestSaveSnapshotError(t *testing.T) {
	store := &MinioStore{client: &fakePutter{err: errors.New("down")}, bucket: "snaps"}
	if _, err := store.SaveSnapshot(context.Background(), "u", "a", "x"); err == nil {
		t.Fatal("expected error")
	}
}
