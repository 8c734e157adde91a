package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mealmart/internal/common"
	"mealmart/internal/repositories"
)

const presignedURLExpiry = 24 * time.Hour

// ObjectStore abstracts the blob storage used for catalog images.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, object, contentType string, reader io.Reader, size int64) error
	PresignedURL(bucket, object string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, bucket, object string) error
	EnsureBucket(ctx context.Context, bucket string) error
}

type minioStore struct {
	client *minio.Client
}

func NewMinioStore(endpoint, accessKey, secretKey string, useSSL bool) (ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStore{client: client}, nil
}

func (m *minioStore) Upload(ctx context.Context, bucket, object, contentType string, reader io.Reader, size int64) error {
	_, err := m.client.PutObject(ctx, bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioStore) PresignedURL(bucket, object string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), bucket, object, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioStore) Remove(ctx context.Context, bucket, object string) error {
	return m.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
}

func (m *minioStore) EnsureBucket(ctx context.Context, bucket string) error {
	found, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// ImageServiceInterface stores catalog images and records their URLs.
type ImageServiceInterface interface {
	UploadFoodImage(ctx context.Context, foodID int64, filename, contentType string, reader io.Reader, size int64) (string, error)
	UploadGroceryImage(ctx context.Context, itemID int64, filename, contentType string, reader io.Reader, size int64) (string, error)
}

type imageService struct {
	store       ObjectStore
	bucket      string
	foodRepo    repositories.FoodRepository
	groceryRepo repositories.GroceryRepository
}

func NewImageService(store ObjectStore, bucket string, foodRepo repositories.FoodRepository, groceryRepo repositories.GroceryRepository) ImageServiceInterface {
	return &imageService{store: store, bucket: bucket, foodRepo: foodRepo, groceryRepo: groceryRepo}
}

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

func (s *imageService) UploadFoodImage(ctx context.Context, foodID int64, filename, contentType string, reader io.Reader, size int64) (string, error) {
	return s.upload(ctx, "foods", foodID, filename, contentType, reader, size, s.foodRepo.SetImage)
}

func (s *imageService) UploadGroceryImage(ctx context.Context, itemID int64, filename, contentType string, reader io.Reader, size int64) (string, error) {
	return s.upload(ctx, "grocery", itemID, filename, contentType, reader, size, s.groceryRepo.SetImage)
}

func (s *imageService) upload(ctx context.Context, prefix string, id int64, filename, contentType string, reader io.Reader, size int64,
	setImage func(context.Context, int64, string) (bool, error)) (string, error) {

	if _, ok := allowedImageTypes[contentType]; !ok {
		return "", common.ValidationError("unsupported image type %q", contentType)
	}
	if size <= 0 {
		return "", common.ValidationError("image is empty")
	}

	ext := strings.ToLower(path.Ext(filename))
	object := fmt.Sprintf("%s/%d/%s%s", prefix, id, uuid.NewString(), ext)
	if err := s.store.Upload(ctx, s.bucket, object, contentType, reader, size); err != nil {
		return "", common.StoreError("upload image", err)
	}

	url, err := s.store.PresignedURL(s.bucket, object, presignedURLExpiry)
	if err != nil {
		return "", common.StoreError("sign image url", err)
	}

	found, err := setImage(ctx, id, url)
	if err != nil {
		return "", common.StoreError("record image url", err)
	}
	if !found {
		// No row to attach to; drop the orphaned object.
		_ = s.store.Remove(ctx, s.bucket, object)
		return "", common.NotFoundError("item")
	}
	return url, nil
}
