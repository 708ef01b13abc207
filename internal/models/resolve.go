// ===============================
// internal/models/resolve.go - Active content resolution result
// ===============================

package models

import "time"

// Resolution sources, in precedence order.
const (
	ResolveSourceOverride = "override"
	ResolveSourceSchedule = "schedule"
	ResolveSourceDefault  = "default"
	ResolveSourceNone     = "none"
)

// ResolveResult is what a display client plays right now. Source names the
// tier that produced the content. Overlay is set alongside schedule/default
// content when an overlay-mode override is live. AdHoc carries the payload
// of a playlist-less override.
type ResolveResult struct {
	Source     string          `json:"source"`
	ResolvedAt time.Time       `json:"resolvedAt"`
	Playlist   *Playlist       `json:"playlist,omitempty"`
	Items      []PlaylistItem  `json:"items,omitempty"`
	ScheduleID *string         `json:"scheduleId,omitempty"`
	OverrideID *string         `json:"overrideId,omitempty"`
	AdHoc      MetadataMap     `json:"adHocContent,omitempty"`
	Overlay    *ResolveOverlay `json:"overlay,omitempty"`
}

// ResolveOverlay is the overlay-mode override rendered on top of the base
// content.
type ResolveOverlay struct {
	OverrideID string         `json:"overrideId"`
	Playlist   *Playlist      `json:"playlist,omitempty"`
	Items      []PlaylistItem `json:"items,omitempty"`
	AdHoc      MetadataMap    `json:"adHocContent,omitempty"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`
}
