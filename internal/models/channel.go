// ===============================
// internal/models/channel.go - Display channel models
// ===============================

package models

import "time"

// Channel statuses
const (
	ChannelStatusActive   = "active"
	ChannelStatusInactive = "inactive"
)

// Channel is a display endpoint (a screen or screen group). Its default
// playlist is the last resolution fallback before "none".
type Channel struct {
	ID                string      `json:"id" db:"id"`
	ServiceKey        string      `json:"serviceKey" db:"service_key"`
	OrganizationID    *string     `json:"organizationId" db:"organization_id"`
	Name              string      `json:"name" db:"name"`
	Description       string      `json:"description" db:"description"`
	Location          string      `json:"location" db:"location"`
	Orientation       string      `json:"orientation" db:"orientation"` // landscape|portrait
	Resolution        string      `json:"resolution" db:"resolution"`
	DefaultPlaylistID *string     `json:"defaultPlaylistId" db:"default_playlist_id"`
	Settings          MetadataMap `json:"settings" db:"settings"`
	Status            string      `json:"status" db:"status"`
	CreatedBy         string      `json:"createdBy" db:"created_by"`
	CreatedAt         time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time   `json:"updatedAt" db:"updated_at"`
	DeletedAt         *time.Time  `json:"-" db:"deleted_at"`
}

type CreateChannelRequest struct {
	Name              string                 `json:"name" binding:"required"`
	Description       string                 `json:"description"`
	Location          string                 `json:"location"`
	Orientation       string                 `json:"orientation"`
	Resolution        string                 `json:"resolution"`
	DefaultPlaylistID *string                `json:"defaultPlaylistId"`
	Settings          map[string]interface{} `json:"settings"`
}

type UpdateChannelRequest struct {
	Name              *string                `json:"name"`
	Description       *string                `json:"description"`
	Location          *string                `json:"location"`
	Orientation       *string                `json:"orientation"`
	Resolution        *string                `json:"resolution"`
	DefaultPlaylistID *string                `json:"defaultPlaylistId"`
	Settings          map[string]interface{} `json:"settings"`
	Status            *string                `json:"status"`
}

type ChannelListParams struct {
	Page
	Status string
	Search string
}
