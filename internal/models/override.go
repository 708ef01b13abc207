// ===============================
// internal/models/override.go - Quick action override models
// ===============================

package models

import "time"

// Override modes
const (
	OverrideModeReplace = "replace"
	OverrideModeOverlay = "overlay"
)

// Override statuses. Stopped and expired are terminal; an override never
// returns to active.
const (
	OverrideStatusActive  = "active"
	OverrideStatusStopped = "stopped"
	OverrideStatusExpired = "expired"
)

// Reasons recorded on stopped overrides: an explicit stop versus being
// displaced by a newer override on the same slot.
const (
	OverrideReasonManual     = "manual"
	OverrideReasonSuperseded = "superseded"
)

// Override is a quick action taking precedence over scheduled content on one
// channel slot. At most one is live per (tenant, slot) at any instant; the
// slot is the channel id or the platform-default key. Content either points
// at a playlist or carries ad-hoc payload (announcement text, image) in
// Content.
type Override struct {
	ID             string      `json:"id" db:"id"`
	ServiceKey     string      `json:"serviceKey" db:"service_key"`
	OrganizationID *string     `json:"organizationId" db:"organization_id"`
	ChannelID      *string     `json:"channelId" db:"channel_id"`
	SlotKey        string      `json:"-" db:"slot_key"`
	Mode           string      `json:"mode" db:"mode"`
	PlaylistID     *string     `json:"playlistId" db:"playlist_id"`
	Content        MetadataMap `json:"content" db:"content"`
	Status         string      `json:"status" db:"status"`
	EndedReason    string      `json:"endedReason,omitempty" db:"ended_reason"`
	StartedBy      string      `json:"startedBy" db:"started_by"`
	StartedAt      time.Time   `json:"startedAt" db:"started_at"`
	ExpiresAt      *time.Time  `json:"expiresAt" db:"expires_at"` // nil runs until stopped
	EndedAt        *time.Time  `json:"endedAt" db:"ended_at"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
}

// Target reports which channel slot the override claims.
func (o *Override) Target() ChannelTarget {
	if o.ChannelID == nil {
		return PlatformDefaultChannel()
	}
	return SpecificChannel(*o.ChannelID)
}

// IsLiveAt reports whether the override governs the slot at t. A stored
// status of active with a passed expiresAt is treated as expired; the row
// is fixed up lazily on the next read, never by a background job.
func (o *Override) IsLiveAt(t time.Time) bool {
	if o.Status != OverrideStatusActive {
		return false
	}
	return !o.HasLapsedAt(t)
}

// HasLapsedAt reports whether an active override's expiry has passed.
func (o *Override) HasLapsedAt(t time.Time) bool {
	return o.ExpiresAt != nil && !t.Before(*o.ExpiresAt)
}

// Validate checks the content shape: exactly one of playlistId or ad-hoc
// content, and a known mode.
func (o *Override) Validate() error {
	fields := map[string]string{}
	if o.Mode != OverrideModeReplace && o.Mode != OverrideModeOverlay {
		fields["mode"] = "must be replace or overlay"
	}
	hasPlaylist := o.PlaylistID != nil && *o.PlaylistID != ""
	hasContent := len(o.Content) > 0
	if hasPlaylist == hasContent {
		fields["playlistId"] = "exactly one of playlistId or content is required"
	}
	if o.ExpiresAt != nil && !o.ExpiresAt.After(o.StartedAt) {
		fields["durationSeconds"] = "expiry must be after the start"
	}
	if len(fields) > 0 {
		return NewValidation(fields)
	}
	return nil
}

type ExecuteQuickActionRequest struct {
	ChannelID       *string                `json:"channelId"`
	Mode            string                 `json:"mode"`
	PlaylistID      *string                `json:"playlistId"`
	Content         map[string]interface{} `json:"content"`
	DurationSeconds *int                   `json:"durationSeconds"` // nil runs until stopped
}

type OverrideListParams struct {
	Page
	ChannelID string
	Status    string
}
