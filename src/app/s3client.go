package app

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

type (
	// ImageStorage is the slice of object storage the upload endpoint needs.
	ImageStorage interface {
		UploadFile(ctx context.Context, path string, object io.Reader, size int64, contentType string) error
	}

	ClientMinio interface {
		PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (info minio.UploadInfo, err error)
	}

	// MinioS3Client stores uploaded event images in a minio bucket.
	MinioS3Client struct {
		bucketName string
		client     ClientMinio
	}
)

const defaultContentType = "application/octet-stream"

// NewMinioS3Client creates a new MinioS3Client instance.
func NewMinioS3Client(endpoint, accessKeyID, secretAccessKey, bucketName string, useSSL bool) (*MinioS3Client, error) {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		logrus.WithError(err).Errorf("can not create minio client for %s", endpoint)
		return nil, fmt.Errorf("failed to create minio S3 client: %w", err)
	}

	return &MinioS3Client{
		bucketName: bucketName,
		client:     minioClient,
	}, nil
}

// UploadFile uploads one image under the given object path.
func (s3 *MinioS3Client) UploadFile(ctx context.Context, path string, object io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := s3.client.PutObject(ctx,
		s3.bucketName,
		path,
		object,
		size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	return nil
}
