package storage

import (
	"context"
	"io"

	"coalhub/service/etc"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MinIO is a storage backend for minio or any S3 compatible service.
type MinIO struct {
	client *minio.Client
	bucket string
}

var _ Provider = (*MinIO)(nil)

// NewMinIO creates a MinIO backend from the given config and creates the
// bucket when it does not exist yet.
func NewMinIO(ctx context.Context, cfg *etc.Configuration) (*MinIO, error) {
	conf := cfg.Storage.MinIO
	client, err := minio.New(
		conf.Endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
			Secure: conf.UseSSL,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "initialize minio client")
	}

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %s", conf.Bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "create bucket %s", conf.Bucket)
		}
		log.WithField("bucket", conf.Bucket).Info("MinIO bucket created")
	}
	log.WithField("endpoint", conf.Endpoint).Info("MinIO client initialized")
	return &MinIO{client: client, bucket: conf.Bucket}, nil
}

func (m *MinIO) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return errors.Wrapf(err, "put object %s", key)
}

func (m *MinIO) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get object %s", key)
	}
	// GetObject is lazy, Stat surfaces a missing key.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "stat object %s", key)
	}
	return obj, nil
}

func (m *MinIO) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	return errors.Wrapf(err, "remove object %s", key)
}
