package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/productos-api/internal/application/ports"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/pkg/config"
)

var _ ports.FileStorage = (*MinioStorage)(nil)

const defaultContentType = "application/octet-stream"

// objectStore operaciones de MinIO que usa MinioStorage; permite sustituir el cliente en tests.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	Get(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// minioClient adapta *minio.Client a objectStore (GetObject devuelve *minio.Object).
type minioClient struct {
	*minio.Client
}

func (c minioClient) Get(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
}

// MinioStorage guarda los archivos en un bucket S3 compatible.
type MinioStorage struct {
	client objectStore
	bucket string
}

// NewMinioStorage conecta con MinIO y crea el bucket si no existe.
func NewMinioStorage(ctx context.Context, cfg config.MinioConfig) (*MinioStorage, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("crear cliente minio: %w", err)
	}
	return newMinioStorage(ctx, minioClient{c}, cfg.Bucket)
}

func newMinioStorage(ctx context.Context, client objectStore, bucket string) (*MinioStorage, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("consultar bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("crear bucket %s: %w", bucket, err)
		}
	}
	return &MinioStorage{client: client, bucket: bucket}, nil
}

// Save sube content como objeto "{code}-{originalName}".
func (s *MinioStorage) Save(ctx context.Context, originalName string, content io.Reader, size int64) (string, error) {
	code := uuid.NewString()
	name := ports.StoredName(code, originalName)
	if err := checkName(name); err != nil {
		return "", err
	}
	if size <= 0 {
		size = -1
	}
	if _, err := s.client.PutObject(ctx, s.bucket, name, content, size,
		minio.PutObjectOptions{ContentType: defaultContentType}); err != nil {
		return "", fmt.Errorf("subir objeto %s: %w", name, err)
	}
	return code, nil
}

// Open resuelve el objeto exacto o, si no existe, el primero cuyo nombre empiece por storedName.
func (s *MinioStorage) Open(ctx context.Context, storedName string) (*ports.StoredFile, error) {
	if err := checkName(storedName); err != nil {
		return nil, err
	}
	info, err := s.client.StatObject(ctx, s.bucket, storedName, minio.StatObjectOptions{})
	if err != nil {
		if !isNoSuchKey(err) {
			return nil, fmt.Errorf("stat objeto: %w", err)
		}
		info, err = s.firstWithPrefix(ctx, storedName)
		if err != nil {
			return nil, err
		}
	}
	body, err := s.client.Get(ctx, s.bucket, info.Key)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("leer objeto: %w", err)
	}
	return &ports.StoredFile{Name: info.Key, Size: info.Size, Content: body}, nil
}

func (s *MinioStorage) firstWithPrefix(ctx context.Context, prefix string) (minio.ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return minio.ObjectInfo{}, fmt.Errorf("listar objetos: %w", obj.Err)
		}
		return obj, nil
	}
	return minio.ObjectInfo{}, domain.ErrFileNotFound
}

// Delete elimina el objeto; MinIO no falla si ya no existe.
func (s *MinioStorage) Delete(ctx context.Context, storedName string) error {
	if err := checkName(storedName); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, storedName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("eliminar objeto: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
