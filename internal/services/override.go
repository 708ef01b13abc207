// ===============================
// internal/services/override.go - Quick action overrides
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

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// OverrideNotifier receives override lifecycle events for dashboard fanout.
type OverrideNotifier interface {
	OverrideStarted(override *models.Override)
	OverrideStopped(override *models.Override)
}

type OverrideService struct {
	db       *sqlx.DB
	notifier OverrideNotifier
}

func NewOverrideService(db *sqlx.DB, notifier OverrideNotifier) *OverrideService {
	return &OverrideService{db: db, notifier: notifier}
}

// Execute starts an override on a channel slot. Any override currently
// active on the same slot is superseded in the same transaction, so the
// one-live-per-slot invariant holds even under concurrent execution.
func (s *OverrideService) Execute(ctx context.Context, scope models.TenantScope, userID string, req *models.ExecuteQuickActionRequest) (*models.Override, error) {
	mode := req.Mode
	if mode == "" {
		mode = models.OverrideModeReplace
	}

	target := models.PlatformDefaultChannel()
	if req.ChannelID != nil && *req.ChannelID != "" {
		target = models.SpecificChannel(*req.ChannelID)
	}

	now := time.Now()
	override := &models.Override{
		ID:             uuid.New().String(),
		ServiceKey:     scope.ServiceKey,
		OrganizationID: scope.OrganizationID,
		SlotKey:        target.SlotKey(),
		Mode:           mode,
		PlaylistID:     req.PlaylistID,
		Content:        models.MetadataMap(req.Content),
		Status:         models.OverrideStatusActive,
		StartedBy:      userID,
		StartedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if channelID, ok := target.ChannelID(); ok {
		override.ChannelID = &channelID
	}
	if override.Content == nil {
		override.Content = models.MetadataMap{}
	}
	if req.DurationSeconds != nil {
		if *req.DurationSeconds <= 0 {
			return nil, models.NewValidation(map[string]string{"durationSeconds": "must be positive"})
		}
		expires := now.Add(time.Duration(*req.DurationSeconds) * time.Second)
		override.ExpiresAt = &expires
	}

	if err := override.Validate(); err != nil {
		return nil, err
	}
	if override.PlaylistID != nil {
		if err := s.checkPlaylist(ctx, scope, *override.PlaylistID); err != nil {
			return nil, err
		}
	}
	if override.ChannelID != nil {
		if err := s.checkChannel(ctx, scope, *override.ChannelID); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	where, args, idx := scopeWhere(scope, 1)
	supersede := fmt.Sprintf(`
		UPDATE signage_overrides
		SET status = 'stopped', ended_reason = 'superseded',
			ended_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE %s AND slot_key = $%d AND status = 'active'`, where, idx)
	args = append(args, override.SlotKey)
	if _, err := tx.ExecContext(ctx, supersede, args...); err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO signage_overrides (
			id, service_key, organization_id, channel_id, slot_key, mode,
			playlist_id, content, status, ended_reason, started_by, started_at,
			expires_at, ended_at, created_at, updated_at
		) VALUES (
			:id, :service_key, :organization_id, :channel_id, :slot_key, :mode,
			:playlist_id, :content, :status, :ended_reason, :started_by, :started_at,
			:expires_at, :ended_at, :created_at, :updated_at
		)`
	if _, err := tx.NamedExecContext(ctx, insert, override); err != nil {
		return nil, fmt.Errorf("failed to create override: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit override: %w", err)
	}

	if s.notifier != nil {
		s.notifier.OverrideStarted(override)
	}
	return override, nil
}

// Stop ends an override. Stopping one that already reached a terminal state
// is a no-op success, so dashboard retries and racing admins are harmless.
func (s *OverrideService) Stop(ctx context.Context, scope models.TenantScope, overrideID string) (*models.Override, error) {
	override, err := s.GetOverride(ctx, scope, overrideID)
	if err != nil {
		return nil, err
	}
	if override.Status != models.OverrideStatusActive {
		return override, nil
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE signage_overrides
		SET status = 'stopped', ended_reason = 'manual', ended_at = $1, updated_at = $1
		WHERE id = $2 AND status = 'active'`, now, overrideID)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Lost the race to another stop or supersede; re-read the outcome.
		return s.GetOverride(ctx, scope, overrideID)
	}

	override.Status = models.OverrideStatusStopped
	override.EndedReason = models.OverrideReasonManual
	override.EndedAt = &now
	override.UpdatedAt = now

	if s.notifier != nil {
		s.notifier.OverrideStopped(override)
	}
	return override, nil
}

func (s *OverrideService) GetOverride(ctx context.Context, scope models.TenantScope, overrideID string) (*models.Override, error) {
	if !validID(overrideID) {
		return nil, models.NewNotFound("override", overrideID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT * FROM signage_overrides
		WHERE %s AND id = $%d`, where, idx)
	args = append(args, overrideID)

	var override models.Override
	err := s.db.GetContext(ctx, &override, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("override", overrideID)
	}
	if err != nil {
		return nil, err
	}
	s.applyLazyExpiry(&override, time.Now())
	return &override, nil
}

func (s *OverrideService) ListOverrides(ctx context.Context, scope models.TenantScope, params models.OverrideListParams) ([]models.Override, models.PageMeta, error) {
	params.Normalize()

	where, args, idx := scopeWhere(scope, 1)
	if params.ChannelID != "" {
		if !validID(params.ChannelID) {
			return nil, models.PageMeta{}, models.NewValidation(map[string]string{"channelId": "must be a UUID"})
		}
		where += fmt.Sprintf(" AND channel_id = $%d", idx)
		args = append(args, params.ChannelID)
		idx++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, params.Status)
		idx++
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM signage_overrides WHERE "+where, args...); err != nil {
		return nil, models.PageMeta{}, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM signage_overrides
		WHERE %s
		ORDER BY started_at DESC
		LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, params.Limit, params.Offset())

	overrides := []models.Override{}
	if err := s.db.SelectContext(ctx, &overrides, query, args...); err != nil {
		return nil, models.PageMeta{}, err
	}

	now := time.Now()
	for i := range overrides {
		s.applyLazyExpiry(&overrides[i], now)
	}
	return overrides, models.NewPageMeta(params.Page, total), nil
}

// GetLiveOverride returns the override governing the slot at asOf, nil when
// none. A stored-active row whose expiry has passed is reported as absent
// and fixed up lazily.
func (s *OverrideService) GetLiveOverride(ctx context.Context, scope models.TenantScope, target models.ChannelTarget, asOf time.Time) (*models.Override, error) {
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT * FROM signage_overrides
		WHERE %s AND slot_key = $%d AND status = 'active'`, where, idx)
	args = append(args, target.SlotKey())

	var override models.Override
	err := s.db.GetContext(ctx, &override, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if override.HasLapsedAt(asOf) {
		s.applyLazyExpiry(&override, asOf)
		return nil, nil
	}
	return &override, nil
}

// applyLazyExpiry marks a lapsed active override expired in the returned
// struct and writes the status back asynchronously. Reads never block on
// the bookkeeping write; the status check on the UPDATE keeps it from
// clobbering a concurrent stop.
func (s *OverrideService) applyLazyExpiry(override *models.Override, asOf time.Time) {
	if override.Status != models.OverrideStatusActive || !override.HasLapsedAt(asOf) {
		return
	}
	override.Status = models.OverrideStatusExpired
	override.EndedAt = override.ExpiresAt

	// asOf can be a preview instant ahead of the wall clock. The struct
	// reflects what the caller asked about; the row is only written once
	// the expiry has actually passed.
	if !override.HasLapsedAt(time.Now()) {
		return
	}

	id := override.ID
	expiresAt := *override.ExpiresAt
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := s.db.ExecContext(ctx, `
			UPDATE signage_overrides
			SET status = 'expired', ended_at = $1, updated_at = CURRENT_TIMESTAMP
			WHERE id = $2 AND status = 'active'`, expiresAt, id)
		if err != nil {
			log.Printf("⚠️ Failed to persist override expiry for %s: %v", id, err)
		}
	}()
}

func (s *OverrideService) checkPlaylist(ctx context.Context, scope models.TenantScope, playlistID string) error {
	if !validID(playlistID) {
		return models.NewNotFound("playlist", playlistID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT status FROM signage_playlists
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, playlistID)

	var status string
	err := s.db.GetContext(ctx, &status, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewNotFound("playlist", playlistID)
	}
	if err != nil {
		return err
	}
	if status == models.PlaylistStatusArchived {
		return models.NewValidation(map[string]string{"playlistId": "playlist is archived"})
	}
	return nil
}

func (s *OverrideService) checkChannel(ctx context.Context, scope models.TenantScope, channelID string) error {
	if !validID(channelID) {
		return models.NewNotFound("channel", channelID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM signage_channels
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, channelID)

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return err
	}
	if count == 0 {
		return models.NewNotFound("channel", channelID)
	}
	return nil
}
