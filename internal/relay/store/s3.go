package store

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store keeps artifacts as objects named by hash in a single bucket.
type S3Store struct {
	client *minio.Client
	bucket string
}

func NewS3Store(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &S3Store{client: client, bucket: bucket}, nil
}

// Put streams the object; object writes are atomic on the S3 side, so a
// concurrent upload of the same hash simply overwrites with identical bytes.
func (s *S3Store) Put(ctx context.Context, hash string, data io.Reader) (int64, error) {
	info, err := s.client.PutObject(ctx, s.bucket, hash, data, -1, minio.PutObjectOptions{})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (s *S3Store) Get(ctx context.Context, hash string) (io.ReadCloser, error) {
	return s.client.GetObject(ctx, s.bucket, hash, minio.GetObjectOptions{})
}

func (s *S3Store) Exists(ctx context.Context, hash string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, hash, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *S3Store) Delete(ctx context.Context, hash string) error {
	return s.client.RemoveObject(ctx, s.bucket, hash, minio.RemoveObjectOptions{})
}
