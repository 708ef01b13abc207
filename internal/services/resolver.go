// ===============================
// internal/services/resolver.go - Active content resolution
// ===============================

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"signagebe/internal/models"

	"github.com/jmoiron/sqlx"
)

// ResolverService answers "what should this display play right now". It is
// read-only: apart from lazy override expiry bookkeeping it never writes,
// so any number of displays can poll concurrently.
type ResolverService struct {
	db        *sqlx.DB
	playlists *PlaylistService
	schedules *ScheduleService
	overrides *OverrideService
}

func NewResolverService(db *sqlx.DB, playlists *PlaylistService, schedules *ScheduleService, overrides *OverrideService) *ResolverService {
	return &ResolverService{
		db:        db,
		playlists: playlists,
		schedules: schedules,
		overrides: overrides,
	}
}

// ResolveActiveContent walks the precedence tiers: live override, winning
// schedule, channel default, none. Broken references degrade to the next
// tier with a diagnostic log; a display client never sees an error for
// content that merely went missing.
func (s *ResolverService) ResolveActiveContent(ctx context.Context, scope models.TenantScope, target models.ChannelTarget, asOf time.Time) (*models.ResolveResult, error) {
	result := &models.ResolveResult{
		Source:     models.ResolveSourceNone,
		ResolvedAt: asOf,
	}

	override, err := s.overrides.GetLiveOverride(ctx, scope, target, asOf)
	if err != nil {
		log.Printf("⚠️ Override lookup failed: %v", err)
		override = nil
	}

	if override != nil && override.Mode == models.OverrideModeReplace {
		if s.fillFromOverride(ctx, result, override) {
			return result, nil
		}
		override = nil // dangling replace override degrades to the schedule tier
	}

	s.fillBaseContent(ctx, result, scope, target, asOf)

	if override != nil && override.Mode == models.OverrideModeOverlay {
		s.attachOverlay(ctx, result, override)
	}
	return result, nil
}

// fillFromOverride populates the result from a replace-mode override.
// Returns false when the override points at a playlist that no longer
// resolves.
func (s *ResolverService) fillFromOverride(ctx context.Context, result *models.ResolveResult, override *models.Override) bool {
	if override.PlaylistID == nil {
		result.Source = models.ResolveSourceOverride
		result.OverrideID = &override.ID
		result.AdHoc = override.Content
		return true
	}

	playlist, items, ok := s.loadPlayable(ctx, *override.PlaylistID)
	if !ok {
		log.Printf("⚠️ Override %s references unplayable playlist %s, degrading", override.ID, *override.PlaylistID)
		return false
	}
	result.Source = models.ResolveSourceOverride
	result.OverrideID = &override.ID
	result.Playlist = playlist
	result.Items = items
	return true
}

// fillBaseContent resolves the schedule and default tiers into result,
// leaving source none when neither yields playable content.
func (s *ResolverService) fillBaseContent(ctx context.Context, result *models.ResolveResult, scope models.TenantScope, target models.ChannelTarget, asOf time.Time) {
	candidates, err := s.schedules.GetCandidates(ctx, scope, target, asOf)
	if err != nil {
		log.Printf("⚠️ Schedule candidate lookup failed: %v", err)
		candidates = nil
	}

	// Candidates that fail to load drop out and the next-ranked one wins.
	for len(candidates) > 0 {
		winner := models.SelectWinner(candidates)
		playlist, items, ok := s.loadPlayable(ctx, winner.PlaylistID)
		if ok {
			result.Source = models.ResolveSourceSchedule
			result.ScheduleID = &winner.ID
			result.Playlist = playlist
			result.Items = items
			return
		}
		log.Printf("⚠️ Schedule %s references unplayable playlist %s, degrading", winner.ID, winner.PlaylistID)
		candidates = withoutSchedule(candidates, winner)
	}

	if channelID, ok := target.ChannelID(); ok {
		s.fillChannelDefault(ctx, result, scope, channelID)
	}
}

func (s *ResolverService) fillChannelDefault(ctx context.Context, result *models.ResolveResult, scope models.TenantScope, channelID string) {
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT default_playlist_id FROM signage_channels
		WHERE %s AND id = $%d AND status = 'active' AND deleted_at IS NULL`, where, idx)
	args = append(args, channelID)

	var defaultPlaylistID *string
	err := s.db.GetContext(ctx, &defaultPlaylistID, query, args...)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("⚠️ Channel default lookup failed for %s: %v", channelID, err)
		}
		return
	}
	if defaultPlaylistID == nil {
		return
	}

	playlist, items, ok := s.loadPlayable(ctx, *defaultPlaylistID)
	if !ok {
		log.Printf("⚠️ Channel %s default playlist %s is unplayable", channelID, *defaultPlaylistID)
		return
	}
	result.Source = models.ResolveSourceDefault
	result.Playlist = playlist
	result.Items = items
}

func (s *ResolverService) attachOverlay(ctx context.Context, result *models.ResolveResult, override *models.Override) {
	overlay := &models.ResolveOverlay{
		OverrideID: override.ID,
		ExpiresAt:  override.ExpiresAt,
	}
	if override.PlaylistID == nil {
		overlay.AdHoc = override.Content
	} else {
		playlist, items, ok := s.loadPlayable(ctx, *override.PlaylistID)
		if !ok {
			log.Printf("⚠️ Overlay override %s references unplayable playlist %s, dropping overlay", override.ID, *override.PlaylistID)
			return
		}
		overlay.Playlist = playlist
		overlay.Items = items
	}
	result.Overlay = overlay
}

// loadPlayable fetches a playlist for playback: it must exist, not be
// archived or deleted, and items with missing media are dropped from the
// sequence rather than handed to the player.
func (s *ResolverService) loadPlayable(ctx context.Context, playlistID string) (*models.Playlist, []models.PlaylistItem, bool) {
	var playlist models.Playlist
	err := s.db.GetContext(ctx, &playlist, `
		SELECT * FROM signage_playlists
		WHERE id = $1 AND status != 'archived' AND deleted_at IS NULL`, playlistID)
	if err != nil {
		return nil, nil, false
	}

	items, err := s.playlists.GetItems(ctx, playlistID)
	if err != nil {
		log.Printf("⚠️ Failed to load items for playlist %s: %v", playlistID, err)
		return nil, nil, false
	}

	playable := make([]models.PlaylistItem, 0, len(items))
	for _, item := range items {
		if item.Media != nil {
			playable = append(playable, item)
		}
	}
	return &playlist, playable, true
}

func withoutSchedule(candidates []*models.Schedule, drop *models.Schedule) []*models.Schedule {
	out := candidates[:0]
	for _, c := range candidates {
		if c.ID != drop.ID {
			out = append(out, c)
		}
	}
	return out
}
