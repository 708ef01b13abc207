// ===============================
// internal/services/channel.go - Display channel registry
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

type ChannelService struct {
	db *sqlx.DB
}

func NewChannelService(db *sqlx.DB) *ChannelService {
	return &ChannelService{db: db}
}

func (s *ChannelService) CreateChannel(ctx context.Context, scope models.TenantScope, userID string, req *models.CreateChannelRequest) (*models.Channel, error) {
	orientation := req.Orientation
	if orientation == "" {
		orientation = "landscape"
	}
	if orientation != "landscape" && orientation != "portrait" {
		return nil, models.NewValidation(map[string]string{"orientation": "must be landscape or portrait"})
	}

	if req.DefaultPlaylistID != nil {
		if err := s.checkPlaylistRef(ctx, scope, *req.DefaultPlaylistID); err != nil {
			return nil, err
		}
	}

	channel := &models.Channel{
		ID:                uuid.New().String(),
		ServiceKey:        scope.ServiceKey,
		OrganizationID:    scope.OrganizationID,
		Name:              req.Name,
		Description:       req.Description,
		Location:          req.Location,
		Orientation:       orientation,
		Resolution:        req.Resolution,
		DefaultPlaylistID: req.DefaultPlaylistID,
		Settings:          models.MetadataMap(req.Settings),
		Status:            models.ChannelStatusActive,
		CreatedBy:         userID,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if channel.Settings == nil {
		channel.Settings = models.MetadataMap{}
	}

	query := `
		INSERT INTO signage_channels (
			id, service_key, organization_id, name, description, location,
			orientation, resolution, default_playlist_id, settings, status,
			created_by, created_at, updated_at
		) VALUES (
			:id, :service_key, :organization_id, :name, :description, :location,
			:orientation, :resolution, :default_playlist_id, :settings, :status,
			:created_by, :created_at, :updated_at
		)`
	if _, err := s.db.NamedExecContext(ctx, query, channel); err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	return channel, nil
}

func (s *ChannelService) GetChannel(ctx context.Context, scope models.TenantScope, channelID string) (*models.Channel, error) {
	if !validID(channelID) {
		return nil, models.NewNotFound("channel", channelID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT * FROM signage_channels
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, channelID)

	var channel models.Channel
	err := s.db.GetContext(ctx, &channel, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("channel", channelID)
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

var channelSortColumns = map[string]string{
	"name":      "name",
	"location":  "location",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (s *ChannelService) ListChannels(ctx context.Context, scope models.TenantScope, params models.ChannelListParams) ([]models.Channel, models.PageMeta, error) {
	params.Normalize()

	where, args, idx := scopeWhere(scope, 1)
	where += " AND deleted_at IS NULL"

	if params.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, params.Status)
		idx++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR location ILIKE $%d)", idx, idx)
		args = append(args, "%"+params.Search+"%")
		idx++
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM signage_channels WHERE "+where, args...); err != nil {
		return nil, models.PageMeta{}, err
	}

	sortCol := params.SortColumn(channelSortColumns, "created_at")
	query := fmt.Sprintf(`
		SELECT * FROM signage_channels
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`, where, sortCol, params.SortOrder, idx, idx+1)
	args = append(args, params.Limit, params.Offset())

	channels := []models.Channel{}
	if err := s.db.SelectContext(ctx, &channels, query, args...); err != nil {
		return nil, models.PageMeta{}, err
	}
	return channels, models.NewPageMeta(params.Page, total), nil
}

func (s *ChannelService) UpdateChannel(ctx context.Context, scope models.TenantScope, channelID string, req *models.UpdateChannelRequest) (*models.Channel, error) {
	channel, err := s.GetChannel(ctx, scope, channelID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Description != nil {
		channel.Description = *req.Description
	}
	if req.Location != nil {
		channel.Location = *req.Location
	}
	if req.Orientation != nil {
		if *req.Orientation != "landscape" && *req.Orientation != "portrait" {
			return nil, models.NewValidation(map[string]string{"orientation": "must be landscape or portrait"})
		}
		channel.Orientation = *req.Orientation
	}
	if req.Resolution != nil {
		channel.Resolution = *req.Resolution
	}
	if req.DefaultPlaylistID != nil {
		if *req.DefaultPlaylistID == "" {
			channel.DefaultPlaylistID = nil
		} else {
			if err := s.checkPlaylistRef(ctx, scope, *req.DefaultPlaylistID); err != nil {
				return nil, err
			}
			channel.DefaultPlaylistID = req.DefaultPlaylistID
		}
	}
	if req.Settings != nil {
		channel.Settings = models.MetadataMap(req.Settings)
	}
	if req.Status != nil {
		if *req.Status != models.ChannelStatusActive && *req.Status != models.ChannelStatusInactive {
			return nil, models.NewValidation(map[string]string{"status": "must be active or inactive"})
		}
		channel.Status = *req.Status
	}

	channel.UpdatedAt = time.Now()
	query := `
		UPDATE signage_channels SET
			name = :name, description = :description, location = :location,
			orientation = :orientation, resolution = :resolution,
			default_playlist_id = :default_playlist_id, settings = :settings,
			status = :status, updated_at = :updated_at
		WHERE id = :id`
	if _, err := s.db.NamedExecContext(ctx, query, channel); err != nil {
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}
	return channel, nil
}

func (s *ChannelService) DeleteChannel(ctx context.Context, scope models.TenantScope, channelID string) error {
	if !validID(channelID) {
		return models.NewNotFound("channel", channelID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		UPDATE signage_channels
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, channelID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return models.NewNotFound("channel", channelID)
	}
	return nil
}

// checkPlaylistRef confirms the playlist exists in scope and is not archived
// before a channel adopts it as its default.
func (s *ChannelService) checkPlaylistRef(ctx context.Context, scope models.TenantScope, playlistID string) error {
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
		return models.NewValidation(map[string]string{"defaultPlaylistId": "playlist is archived"})
	}
	return nil
}
