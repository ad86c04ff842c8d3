package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const (
	thumbnailSize = 80
	// MaxImageBytes bounds accepted uploads.
	MaxImageBytes = 5 << 20
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUpload is a raw image received with a recipe write.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// PreparedImage is a decoded upload with its thumbnail already rendered.
type PreparedImage struct {
	data        []byte
	contentType string
	ext         string
	thumbnail   []byte
}

// StoredImage references the objects written for one recipe image.
type StoredImage struct {
	URL          string
	Key          string
	ThumbnailURL string
	ThumbnailKey string
}

// ImageStore persists image objects and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageService validates uploads, renders thumbnails and writes both to an ImageStore.
type ImageService struct {
	store  ImageStore
	logger *zap.Logger
}

func NewImageService(store ImageStore, logger *zap.Logger) *ImageService {
	return &ImageService{store: store, logger: logger}
}

// Prepare decodes the upload and renders an 80x80 thumbnail. Problems with the
// payload are reported as a ValidationError on the "image" field.
func (s *ImageService) Prepare(upload *ImageUpload) (*PreparedImage, error) {
	verr := NewValidationError()
	if len(upload.Data) == 0 {
		verr.Add("image", "The submitted file is empty.")
		return nil, verr
	}
	if len(upload.Data) > MaxImageBytes {
		verr.Add("image", fmt.Sprintf("Images may not exceed %d MB.", MaxImageBytes>>20))
		return nil, verr
	}

	contentType := http.DetectContentType(upload.Data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		verr.Add("image", "Upload a valid image. Supported formats are JPEG, PNG, GIF and WebP.")
		return nil, verr
	}

	img, err := imaging.Decode(bytes.NewReader(upload.Data), imaging.AutoOrientation(true))
	if err != nil {
		verr.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		return nil, verr
	}

	thumb := imaging.Fill(img, thumbnailSize, thumbnailSize, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &PreparedImage{
		data:        upload.Data,
		contentType: contentType,
		ext:         ext,
		thumbnail:   buf.Bytes(),
	}, nil
}

// Save uploads the image and its thumbnail. On a partial failure the objects
// already written are removed before returning.
func (s *ImageService) Save(ctx context.Context, recipeID uuid.UUID, img *PreparedImage) (*StoredImage, error) {
	name := uuid.New().String()
	stored := &StoredImage{
		Key:          fmt.Sprintf("recipe_images/%s/%s%s", recipeID, name, img.ext),
		ThumbnailKey: fmt.Sprintf("recipe_images/thumbnails/%s/%s.jpg", recipeID, name),
	}

	url, err := s.store.Put(ctx, stored.Key, img.data, img.contentType)
	if err != nil {
		return nil, &UpstreamStorageError{Op: "upload image", Err: err}
	}
	stored.URL = url

	thumbURL, err := s.store.Put(ctx, stored.ThumbnailKey, img.thumbnail, "image/jpeg")
	if err != nil {
		s.remove(ctx, stored.Key)
		return nil, &UpstreamStorageError{Op: "upload thumbnail", Err: err}
	}
	stored.ThumbnailURL = thumbURL

	return stored, nil
}

// Discard removes stored objects. Failures are logged and otherwise ignored.
func (s *ImageService) Discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key != "" {
			s.remove(ctx, key)
		}
	}
}

func (s *ImageService) remove(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove image object", zap.String("key", key), zap.Error(err))
	}
}

// S3API is the subset of the S3 client used for image storage.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3ImageStore struct {
	client S3API
	bucket string
}

func NewS3ImageStore(client S3API, bucket string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket}
}

// Put uploads data to S3 and returns the public URL
func (s *S3ImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images below a media directory served at baseURL.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *LocalImageStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
