// ===============================
// internal/models/media.go - Media catalog models
// ===============================

package models

import "time"

// Media statuses
const (
	MediaStatusActive   = "active"
	MediaStatusArchived = "archived"
)

// Media types
const (
	MediaTypeImage    = "image"
	MediaTypeVideo    = "video"
	MediaTypeHTML     = "html"
	MediaTypeText     = "text"
	MediaTypeYouTube  = "youtube"
	MediaTypeExternal = "external"
)

// Source types
const (
	MediaSourceUpload   = "upload"
	MediaSourceEmbed    = "embed"
	MediaSourceExternal = "external"
)

// Media is a registered playable asset. Playlist items reference it weakly;
// deleting media never cascades into playlists.
type Media struct {
	ID             string      `json:"id" db:"id"`
	ServiceKey     string      `json:"serviceKey" db:"service_key"`
	OrganizationID *string     `json:"organizationId" db:"organization_id"`
	Name           string      `json:"name" db:"name"`
	Description    string      `json:"description" db:"description"`
	MediaType      string      `json:"mediaType" db:"media_type"`
	SourceType     string      `json:"sourceType" db:"source_type"`
	SourceURL      string      `json:"sourceUrl" db:"source_url"`
	ThumbnailURL   string      `json:"thumbnailUrl" db:"thumbnail_url"`
	Duration       int         `json:"duration" db:"duration"` // seconds, hint for players
	MimeType       string      `json:"mimeType" db:"mime_type"`
	FileSize       int64       `json:"fileSize" db:"file_size"`
	Category       string      `json:"category" db:"category"`
	Tags           StringSlice `json:"tags" db:"tags"`
	Status         string      `json:"status" db:"status"`
	CreatedBy      string      `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
	DeletedAt      *time.Time  `json:"-" db:"deleted_at"`
}

func (m *Media) IsActive() bool {
	return m.Status == MediaStatusActive && m.DeletedAt == nil
}

var validMediaTypes = map[string]bool{
	MediaTypeImage:    true,
	MediaTypeVideo:    true,
	MediaTypeHTML:     true,
	MediaTypeText:     true,
	MediaTypeYouTube:  true,
	MediaTypeExternal: true,
}

// ValidateForCreation returns field-level problems, empty when valid.
func (m *Media) ValidateForCreation() map[string]string {
	fields := map[string]string{}
	if m.Name == "" {
		fields["name"] = "name is required"
	}
	if !validMediaTypes[m.MediaType] {
		fields["mediaType"] = "unknown media type"
	}
	if m.SourceURL == "" && m.MediaType != MediaTypeText && m.MediaType != MediaTypeHTML {
		fields["sourceUrl"] = "source URL is required for this media type"
	}
	if m.Duration < 0 {
		fields["duration"] = "duration cannot be negative"
	}
	return fields
}

type CreateMediaRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	MediaType    string   `json:"mediaType" binding:"required"`
	SourceType   string   `json:"sourceType"`
	SourceURL    string   `json:"sourceUrl"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Duration     int      `json:"duration"`
	MimeType     string   `json:"mimeType"`
	FileSize     int64    `json:"fileSize"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
}

type UpdateMediaRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	SourceURL    *string  `json:"sourceUrl"`
	ThumbnailURL *string  `json:"thumbnailUrl"`
	Duration     *int     `json:"duration"`
	Category     *string  `json:"category"`
	Tags         []string `json:"tags"`
	Status       *string  `json:"status"`
}

// MediaListParams are the supported listing filters.
type MediaListParams struct {
	Page
	MediaType  string
	SourceType string
	Status     string
	Category   string
	Search     string
	Tags       []string
}

// PresignedUpload is the response of the presigned upload flow: the client
// PUTs the file to UploadURL, then registers media with PublicURL as its
// sourceUrl.
type PresignedUpload struct {
	UploadURL   string `json:"uploadUrl"`
	PublicURL   string `json:"publicUrl"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	ExpiresIn   int    `json:"expiresIn"` // seconds
}

// MediaLibrary groups assets by ownership tier for the picker UI: platform
// rows (organization_id IS NULL) plus the caller's own organization rows.
type MediaLibrary struct {
	Platform     []Media `json:"platform"`
	Organization []Media `json:"organization"`
}
