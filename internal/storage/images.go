// Package storage persists uploaded pet images in S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/vetsuite/clinic-crm/pkg/logging"
)

// S3API is the subset of the S3 client used by ImageStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ImageStore keeps pet profile photos and record attachments. If bucket is
// empty the store is disabled and uploads return ErrDisabled.
type ImageStore struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = fmt.Errorf("storage: image store not configured")

func NewImageStore(s3Client S3API, bucket string, logger *logging.Logger) *ImageStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &ImageStore{
		bucket:   bucket,
		s3Client: s3Client,
		logger:   logger.Component("image_store"),
	}
}

// Enabled reports whether uploads are configured.
func (s *ImageStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// PutProfileImage stores a pet's profile photo and returns its object key.
// Re-uploading replaces the previous photo.
func (s *ImageStore) PutProfileImage(ctx context.Context, petID, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	key := fmt.Sprintf("pets/%s/profile%s", petID, extensionFor(contentType))
	if err := s.put(ctx, key, contentType, data); err != nil {
		return "", err
	}
	s.logger.Debug("profile image stored", "pet_id", petID, "s3_key", key)
	return key, nil
}

// PutRecordAttachment stores an image attached to a medical record and
// returns its object key. Filenames are prefixed with a fresh id so repeat
// uploads never collide.
func (s *ImageStore) PutRecordAttachment(ctx context.Context, petID, filename, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	name := path.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == "/" {
		name = "attachment"
	}
	key := fmt.Sprintf("pets/%s/records/%s-%s", petID, uuid.NewString(), name)
	if err := s.put(ctx, key, contentType, data); err != nil {
		return "", err
	}
	s.logger.Debug("record attachment stored", "pet_id", petID, "s3_key", key)
	return key, nil
}

// Get reads an object back by key.
func (s *ImageStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: s3 get %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

func (s *ImageStore) put(ctx context.Context, key, contentType string, data []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 put %s: %w", key, err)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
