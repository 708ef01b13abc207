// ===============================
// internal/services/upload.go - Media file uploads
// ===============================

package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"signagebe/internal/models"
	"signagebe/internal/storage"

	"github.com/google/uuid"
)

type UploadService struct {
	r2Client *storage.R2Client
}

func NewUploadService(r2Client *storage.R2Client) *UploadService {
	return &UploadService{r2Client: r2Client}
}

// UploadFile stores the file under the tenant's prefix and returns its
// public URL for use as a media sourceUrl.
func (s *UploadService) UploadFile(ctx context.Context, scope models.TenantScope, file multipart.File, filename string) (string, error) {
	key := objectKey(scope, filename)
	contentType := contentTypeFor(filename)

	if err := s.r2Client.UploadFile(ctx, key, file, contentType); err != nil {
		return "", err
	}
	return s.r2Client.GetPublicURL(key), nil
}

// PresignedUpload hands the dashboard a short-lived PUT URL plus the public
// URL the file will have once uploaded.
func (s *UploadService) PresignedUpload(scope models.TenantScope, filename, contentType string) (*models.PresignedUpload, error) {
	if filename == "" {
		return nil, models.NewValidation(map[string]string{"filename": "filename is required"})
	}
	if contentType == "" {
		contentType = contentTypeFor(filename)
	}

	key := objectKey(scope, filename)
	uploadURL, err := s.r2Client.PresignUpload(key, contentType, 15*time.Minute)
	if err != nil {
		return nil, err
	}

	return &models.PresignedUpload{
		UploadURL:   uploadURL,
		PublicURL:   s.r2Client.GetPublicURL(key),
		Key:         key,
		ContentType: contentType,
		ExpiresIn:   int((15 * time.Minute).Seconds()),
	}, nil
}

// objectKey namespaces uploads by service and organization so tenants never
// collide in the bucket.
func objectKey(scope models.TenantScope, filename string) string {
	org := "platform"
	if scope.OrganizationID != nil {
		org = *scope.OrganizationID
	}
	ext := getFileExtension(filename)
	return fmt.Sprintf("signage/%s/%s/%d_%s%s",
		scope.ServiceKey, org, time.Now().Unix(), uuid.New().String()[:8], ext)
}

func getFileExtension(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[i:]
		}
	}
	return ""
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(getFileExtension(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".html":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
