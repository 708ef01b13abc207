// ===============================
// internal/services/playlist.go - Playlist manager
// ===============================

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"signagebe/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PlaylistService struct {
	db *sqlx.DB
}

func NewPlaylistService(db *sqlx.DB) *PlaylistService {
	return &PlaylistService{db: db}
}

// ===============================
// PLAYLIST CRUD
// ===============================

func (s *PlaylistService) CreatePlaylist(ctx context.Context, scope models.TenantScope, userID string, req *models.CreatePlaylistRequest) (*models.Playlist, error) {
	status := req.Status
	if status == "" {
		status = models.PlaylistStatusDraft
	}
	if status != models.PlaylistStatusDraft && status != models.PlaylistStatusActive {
		return nil, models.NewValidation(map[string]string{"status": "must be draft or active"})
	}
	loop := true
	if req.Loop != nil {
		loop = *req.Loop
	}

	playlist := &models.Playlist{
		ID:             uuid.New().String(),
		ServiceKey:     scope.ServiceKey,
		OrganizationID: scope.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		Status:         status,
		Loop:           loop,
		CreatedBy:      userID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	query := `
		INSERT INTO signage_playlists (
			id, service_key, organization_id, name, description, status, loop,
			item_count, total_duration, created_by, created_at, updated_at
		) VALUES (
			:id, :service_key, :organization_id, :name, :description, :status, :loop,
			:item_count, :total_duration, :created_by, :created_at, :updated_at
		)`
	if _, err := s.db.NamedExecContext(ctx, query, playlist); err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	playlist.Items = []models.PlaylistItem{}
	return playlist, nil
}

// getPlaylistRow fetches the playlist header without items.
func (s *PlaylistService) getPlaylistRow(ctx context.Context, scope models.TenantScope, playlistID string) (*models.Playlist, error) {
	if !validID(playlistID) {
		return nil, models.NewNotFound("playlist", playlistID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT * FROM signage_playlists
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, playlistID)

	var playlist models.Playlist
	err := s.db.GetContext(ctx, &playlist, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("playlist", playlistID)
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (s *PlaylistService) GetPlaylist(ctx context.Context, scope models.TenantScope, playlistID string) (*models.Playlist, error) {
	playlist, err := s.getPlaylistRow(ctx, scope, playlistID)
	if err != nil {
		return nil, err
	}
	items, err := s.GetItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	playlist.Items = items
	return playlist, nil
}

var playlistSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"itemCount": "item_count",
}

func (s *PlaylistService) ListPlaylists(ctx context.Context, scope models.TenantScope, params models.PlaylistListParams) ([]models.Playlist, models.PageMeta, error) {
	params.Normalize()

	where, args, idx := scopeWhere(scope, 1)
	where += " AND deleted_at IS NULL"

	if params.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, params.Status)
		idx++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", idx, idx)
		args = append(args, "%"+params.Search+"%")
		idx++
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM signage_playlists WHERE "+where, args...); err != nil {
		return nil, models.PageMeta{}, err
	}

	sortCol := params.SortColumn(playlistSortColumns, "created_at")
	query := fmt.Sprintf(`
		SELECT * FROM signage_playlists
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`, where, sortCol, params.SortOrder, idx, idx+1)
	args = append(args, params.Limit, params.Offset())

	playlists := []models.Playlist{}
	if err := s.db.SelectContext(ctx, &playlists, query, args...); err != nil {
		return nil, models.PageMeta{}, err
	}
	return playlists, models.NewPageMeta(params.Page, total), nil
}

func (s *PlaylistService) UpdatePlaylist(ctx context.Context, scope models.TenantScope, playlistID string, req *models.UpdatePlaylistRequest) (*models.Playlist, error) {
	playlist, err := s.getPlaylistRow(ctx, scope, playlistID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		playlist.Name = *req.Name
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.Loop != nil {
		playlist.Loop = *req.Loop
	}
	if req.Status != nil {
		switch *req.Status {
		case models.PlaylistStatusDraft, models.PlaylistStatusActive, models.PlaylistStatusArchived:
			playlist.Status = *req.Status
		default:
			return nil, models.NewValidation(map[string]string{"status": "must be draft, active or archived"})
		}
	}

	playlist.UpdatedAt = time.Now()
	query := `
		UPDATE signage_playlists SET
			name = :name, description = :description, status = :status,
			loop = :loop, updated_at = :updated_at
		WHERE id = :id`
	if _, err := s.db.NamedExecContext(ctx, query, playlist); err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}
	return playlist, nil
}

// DeletePlaylist soft-deletes the playlist. Blocked while any non-deleted
// schedule still references it, so displays never resolve to a tombstone
// through the scheduling path.
func (s *PlaylistService) DeletePlaylist(ctx context.Context, scope models.TenantScope, playlistID string) error {
	if _, err := s.getPlaylistRow(ctx, scope, playlistID); err != nil {
		return err
	}

	var refs int
	err := s.db.GetContext(ctx, &refs, `
		SELECT COUNT(*) FROM signage_schedules
		WHERE playlist_id = $1 AND deleted_at IS NULL`, playlistID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &models.DependencyError{Resource: "playlist", ReferredBy: "schedule"}
	}

	err = s.db.GetContext(ctx, &refs, `
		SELECT COUNT(*) FROM signage_channels
		WHERE default_playlist_id = $1 AND deleted_at IS NULL`, playlistID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &models.DependencyError{Resource: "playlist", ReferredBy: "channel"}
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE signage_playlists
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`, playlistID)
	return err
}

// ===============================
// PLAYLIST ITEMS
// ===============================

// GetItems returns the ordered sequence with a media snapshot attached to
// each item. Items whose media is archived or deleted keep a nil Media.
func (s *PlaylistService) GetItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	items := []models.PlaylistItem{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT * FROM signage_playlist_items
		WHERE playlist_id = $1
		ORDER BY sort_order`, playlistID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	mediaIDs := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		if !seen[item.MediaID] {
			seen[item.MediaID] = true
			mediaIDs = append(mediaIDs, item.MediaID)
		}
	}

	query, args, err := sqlx.In(`
		SELECT * FROM signage_media
		WHERE id IN (?) AND status = 'active' AND deleted_at IS NULL`, mediaIDs)
	if err != nil {
		return nil, err
	}
	var media []models.Media
	if err := s.db.SelectContext(ctx, &media, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Media, len(media))
	for i := range media {
		byID[media[i].ID] = &media[i]
	}
	for i := range items {
		items[i].Media = byID[items[i].MediaID]
	}
	return items, nil
}

func (s *PlaylistService) AddItem(ctx context.Context, scope models.TenantScope, playlistID string, req *models.AddPlaylistItemRequest) (*models.PlaylistItem, error) {
	playlist, err := s.getPlaylistRow(ctx, scope, playlistID)
	if err != nil {
		return nil, err
	}

	var item *models.PlaylistItem
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		item, err = insertItem(ctx, tx, scope, playlist.ID, req)
		if err != nil {
			return err
		}
		return updatePlaylistStats(ctx, tx, playlist.ID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *PlaylistService) BulkAddItems(ctx context.Context, scope models.TenantScope, playlistID string, reqs []models.AddPlaylistItemRequest) ([]models.PlaylistItem, error) {
	playlist, err := s.getPlaylistRow(ctx, scope, playlistID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return []models.PlaylistItem{}, nil
	}

	items := make([]models.PlaylistItem, 0, len(reqs))
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		for i := range reqs {
			item, err := insertItem(ctx, tx, scope, playlist.ID, &reqs[i])
			if err != nil {
				return err
			}
			items = append(items, *item)
		}
		return updatePlaylistStats(ctx, tx, playlist.ID)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// insertItem appends at the end of the sequence. The media must exist and be
// visible to the caller's scope or the platform tier.
func insertItem(ctx context.Context, tx *sqlx.Tx, scope models.TenantScope, playlistID string, req *models.AddPlaylistItemRequest) (*models.PlaylistItem, error) {
	if !validID(req.MediaID) {
		return nil, models.NewNotFound("media", req.MediaID)
	}
	var count int
	mediaQuery := `
		SELECT COUNT(*) FROM signage_media
		WHERE id = $1 AND service_key = $2 AND deleted_at IS NULL
		  AND (organization_id IS NULL OR organization_id = $3)`
	orgID := ""
	if scope.OrganizationID != nil {
		orgID = *scope.OrganizationID
	}
	if err := tx.GetContext(ctx, &count, mediaQuery, req.MediaID, scope.ServiceKey, orgID); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, models.NewNotFound("media", req.MediaID)
	}

	item := &models.PlaylistItem{
		ID:         uuid.New().String(),
		PlaylistID: playlistID,
		MediaID:    req.MediaID,
		Duration:   req.Duration,
		Transition: req.Transition,
		Settings:   models.MetadataMap(req.Settings),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if item.Settings == nil {
		item.Settings = models.MetadataMap{}
	}

	err := tx.GetContext(ctx, &item.SortOrder, `
		SELECT COALESCE(MAX(sort_order), -1) + 1
		FROM signage_playlist_items WHERE playlist_id = $1`, playlistID)
	if err != nil {
		return nil, err
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO signage_playlist_items (
			id, playlist_id, media_id, sort_order, duration, transition,
			settings, created_at, updated_at
		) VALUES (
			:id, :playlist_id, :media_id, :sort_order, :duration, :transition,
			:settings, :created_at, :updated_at
		)`, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add playlist item: %w", err)
	}
	return item, nil
}

func (s *PlaylistService) UpdateItem(ctx context.Context, scope models.TenantScope, playlistID, itemID string, req *models.UpdatePlaylistItemRequest) (*models.PlaylistItem, error) {
	if _, err := s.getPlaylistRow(ctx, scope, playlistID); err != nil {
		return nil, err
	}

	if !validID(itemID) {
		return nil, models.NewNotFound("playlist_item", itemID)
	}
	var item models.PlaylistItem
	err := s.db.GetContext(ctx, &item, `
		SELECT * FROM signage_playlist_items
		WHERE id = $1 AND playlist_id = $2`, itemID, playlistID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("playlist_item", itemID)
	}
	if err != nil {
		return nil, err
	}

	if req.Duration != nil {
		item.Duration = req.Duration
	}
	if req.Transition != nil {
		item.Transition = *req.Transition
	}
	if req.Settings != nil {
		item.Settings = models.MetadataMap(req.Settings)
	}
	item.UpdatedAt = time.Now()

	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			UPDATE signage_playlist_items SET
				duration = :duration, transition = :transition,
				settings = :settings, updated_at = :updated_at
			WHERE id = :id`, &item)
		if err != nil {
			return err
		}
		return updatePlaylistStats(ctx, tx, playlistID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *PlaylistService) DeleteItem(ctx context.Context, scope models.TenantScope, playlistID, itemID string) error {
	if _, err := s.getPlaylistRow(ctx, scope, playlistID); err != nil {
		return err
	}

	if !validID(itemID) {
		return models.NewNotFound("playlist_item", itemID)
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			DELETE FROM signage_playlist_items
			WHERE id = $1 AND playlist_id = $2`, itemID, playlistID)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return models.NewNotFound("playlist_item", itemID)
		}
		return updatePlaylistStats(ctx, tx, playlistID)
	})
}

// ReorderItems replaces the sequence order in one transaction. The request
// must list every current item exactly once; anything else means the caller
// is working from a stale view and gets a conflict instead of a partial
// reorder.
func (s *PlaylistService) ReorderItems(ctx context.Context, scope models.TenantScope, playlistID string, itemIDs []string) ([]models.PlaylistItem, error) {
	if _, err := s.getPlaylistRow(ctx, scope, playlistID); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current := []string{}
		err := tx.SelectContext(ctx, &current, `
			SELECT id FROM signage_playlist_items
			WHERE playlist_id = $1
			ORDER BY sort_order
			FOR UPDATE`, playlistID)
		if err != nil {
			return err
		}

		if err := models.ValidateReorderSet(current, itemIDs); err != nil {
			return err
		}

		// Positions are zero-based: the first item in the request lands at
		// sort_order 0.
		for pos, id := range itemIDs {
			_, err := tx.ExecContext(ctx, `
				UPDATE signage_playlist_items
				SET sort_order = $1, updated_at = CURRENT_TIMESTAMP
				WHERE id = $2 AND playlist_id = $3`, pos, id, playlistID)
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE signage_playlists SET updated_at = CURRENT_TIMESTAMP
			WHERE id = $1`, playlistID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetItems(ctx, playlistID)
}

// updatePlaylistStats recomputes the denormalized item_count/total_duration.
// An item's duration falls back to its media's duration when not overridden.
func updatePlaylistStats(ctx context.Context, tx *sqlx.Tx, playlistID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE signage_playlists SET
			item_count = stats.cnt,
			total_duration = stats.dur,
			updated_at = CURRENT_TIMESTAMP
		FROM (
			SELECT COUNT(*) AS cnt,
				COALESCE(SUM(COALESCE(i.duration, m.duration, 0)), 0) AS dur
			FROM signage_playlist_items i
			LEFT JOIN signage_media m ON m.id = i.media_id
			WHERE i.playlist_id = $1
		) AS stats
		WHERE id = $1`, playlistID)
	return err
}

func (s *PlaylistService) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
