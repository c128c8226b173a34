package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound reports that the requested object or bucket does not exist.
var ErrNotFound = errors.New("object not found")

// ErrAccessDenied reports that the store refused the operation.
var ErrAccessDenied = errors.New("access denied")

// Config contains the information required to talk to an object store.
type Config struct {
	Provider  string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// ObjectInfo describes a stored object without its payload.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Object is a fully fetched object: descriptor plus payload bytes.
type Object struct {
	ObjectInfo
	Data []byte
}

// Client represents the capabilities the thumbnail pipeline expects.
type Client interface {
	Get(ctx context.Context, bucket, key string) (*Object, error)
	Stat(ctx context.Context, bucket, key string) (*ObjectInfo, error)
	Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	Close() error
}

// New creates an object store client based on the given configuration.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "minio", "s3":
		return newMinioClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported object store provider: %s", cfg.Provider)
	}
}

// IsNotFound reports whether err means the object or bucket is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type minioClient struct {
	client *minio.Client
}

func newMinioClient(cfg Config) (Client, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	return &minioClient{client: cl}, nil
}

func (m *minioClient) Get(ctx context.Context, bucket, key string) (*Object, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, classify(err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, classify(err))
	}

	return &Object{
		ObjectInfo: ObjectInfo{
			Key:          key,
			Size:         info.Size,
			LastModified: info.LastModified,
			ContentType:  info.ContentType,
		},
		Data: data,
	}, nil
}

func (m *minioClient) Stat(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	info, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	return &ObjectInfo{
		Key:          key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
	}, nil
}

func (m *minioClient) Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := m.client.PutObject(ctx, bucket, key, reader, size, opts); err != nil {
		return classify(err)
	}
	return nil
}

func (m *minioClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ok, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, classify(err)
	}
	return ok, nil
}

func (m *minioClient) Close() error {
	return nil
}

// classify maps minio error responses onto the package sentinels so callers
// can branch without importing the minio types.
func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Message)
	case "AccessDenied":
		return fmt.Errorf("%w: %s", ErrAccessDenied, resp.Message)
	}
	return err
}
