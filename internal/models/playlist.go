// ===============================
// internal/models/playlist.go - Playlist and playlist item models
// ===============================

package models

import "time"

// Playlist statuses
const (
	PlaylistStatusDraft    = "draft"
	PlaylistStatusActive   = "active"
	PlaylistStatusArchived = "archived"
)

type Playlist struct {
	ID             string     `json:"id" db:"id"`
	ServiceKey     string     `json:"serviceKey" db:"service_key"`
	OrganizationID *string    `json:"organizationId" db:"organization_id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	Status         string     `json:"status" db:"status"`
	Loop           bool       `json:"loop" db:"loop"`
	ItemCount      int        `json:"itemCount" db:"item_count"`
	TotalDuration  int        `json:"totalDuration" db:"total_duration"` // seconds
	CreatedBy      string     `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`

	// Populated on detail reads only.
	Items []PlaylistItem `json:"items,omitempty" db:"-"`
}

func (p *Playlist) IsArchived() bool {
	return p.Status == PlaylistStatusArchived || p.DeletedAt != nil
}

// PlaylistItem is an entry in a playlist's ordered sequence. MediaID is a
// weak reference; resolution tolerates items whose media has since been
// archived or removed.
type PlaylistItem struct {
	ID         string      `json:"id" db:"id"`
	PlaylistID string      `json:"playlistId" db:"playlist_id"`
	MediaID    string      `json:"mediaId" db:"media_id"`
	SortOrder  int         `json:"sortOrder" db:"sort_order"`
	Duration   *int        `json:"duration" db:"duration"` // override of the media's own duration
	Transition string      `json:"transition" db:"transition"`
	Settings   MetadataMap `json:"settings" db:"settings"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time   `json:"updatedAt" db:"updated_at"`

	// Joined media snapshot for resolution and detail reads.
	Media *Media `json:"media,omitempty" db:"-"`
}

type CreatePlaylistRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Loop        *bool  `json:"loop"`
}

type UpdatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Loop        *bool   `json:"loop"`
}

type AddPlaylistItemRequest struct {
	MediaID    string                 `json:"mediaId" binding:"required"`
	Duration   *int                   `json:"duration"`
	Transition string                 `json:"transition"`
	Settings   map[string]interface{} `json:"settings"`
}

type UpdatePlaylistItemRequest struct {
	Duration   *int                   `json:"duration"`
	Transition *string                `json:"transition"`
	Settings   map[string]interface{} `json:"settings"`
}

type ReorderPlaylistItemsRequest struct {
	ItemIDs []string `json:"itemIds" binding:"required"`
}

type PlaylistListParams struct {
	Page
	Status string
	Search string
}

// ValidateReorderSet checks that requested is an exact permutation of the
// playlist's current item ids. Returns a Conflict error naming the first
// discrepancy so concurrent edits surface clearly instead of silently
// dropping rows.
func ValidateReorderSet(current []string, requested []string) error {
	if len(requested) != len(current) {
		return NewConflict("item_set_changed: reorder must list every playlist item exactly once")
	}
	existing := make(map[string]bool, len(current))
	for _, id := range current {
		existing[id] = true
	}
	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		if !existing[id] {
			return NewConflict("item_set_changed: unknown item " + id)
		}
		if seen[id] {
			return NewConflict("item_set_changed: duplicate item " + id)
		}
		seen[id] = true
	}
	return nil
}
