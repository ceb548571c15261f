package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"coursehub/internal/common"
	"coursehub/internal/platform/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var allowedImageTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// ImageStore is the slice of the object store the upload path needs.
type ImageStore interface {
	PutStream(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
}

// UploadService stores lesson images in the object store.
type UploadService struct {
	store ImageStore
}

func NewUploadService(store ImageStore) *UploadService {
	return &UploadService{store: store}
}

// SaveImage uploads the file and returns its public URL. Only image
// content types are accepted.
func (s *UploadService) SaveImage(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("object store is not configured: %w", common.ErrBackendUnavailable)
	}
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("only image uploads are allowed, got %q: %w", contentType, common.ErrValidation)
	}

	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	objectName := fmt.Sprintf("%s/%s-%s%s",
		config.AppConfig.UploadPrefix, uuid.NewString()[:8], slug.Make(base), ext)

	if err := s.store.PutStream(ctx, objectName, r, size, contentType); err != nil {
		return "", fmt.Errorf("failed to store upload: %v: %w", err, common.ErrBackendUnavailable)
	}

	baseURL := config.AppConfig.UploadPublicURL
	if baseURL == "" {
		scheme := "http"
		if config.AppConfig.MinioUseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, config.AppConfig.MinioEndpoint, config.AppConfig.MinioBucket)
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + objectName, nil
}
