// ===============================
// internal/services/media.go - Media catalog
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

type MediaService struct {
	db *sqlx.DB
}

func NewMediaService(db *sqlx.DB) *MediaService {
	return &MediaService{db: db}
}

func (s *MediaService) CreateMedia(ctx context.Context, scope models.TenantScope, userID string, req *models.CreateMediaRequest) (*models.Media, error) {
	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = models.MediaSourceExternal
	}

	media := &models.Media{
		ID:             uuid.New().String(),
		ServiceKey:     scope.ServiceKey,
		OrganizationID: scope.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		MediaType:      req.MediaType,
		SourceType:     sourceType,
		SourceURL:      req.SourceURL,
		ThumbnailURL:   req.ThumbnailURL,
		Duration:       req.Duration,
		MimeType:       req.MimeType,
		FileSize:       req.FileSize,
		Category:       req.Category,
		Tags:           models.StringSlice(req.Tags),
		Status:         models.MediaStatusActive,
		CreatedBy:      userID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if fields := media.ValidateForCreation(); len(fields) > 0 {
		return nil, models.NewValidation(fields)
	}

	query := `
		INSERT INTO signage_media (
			id, service_key, organization_id, name, description, media_type,
			source_type, source_url, thumbnail_url, duration, mime_type,
			file_size, category, tags, status, created_by, created_at, updated_at
		) VALUES (
			:id, :service_key, :organization_id, :name, :description, :media_type,
			:source_type, :source_url, :thumbnail_url, :duration, :mime_type,
			:file_size, :category, :tags, :status, :created_by, :created_at, :updated_at
		)`

	if _, err := s.db.NamedExecContext(ctx, query, media); err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}
	return media, nil
}

func (s *MediaService) GetMedia(ctx context.Context, scope models.TenantScope, mediaID string) (*models.Media, error) {
	if !validID(mediaID) {
		return nil, models.NewNotFound("media", mediaID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT * FROM signage_media
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, mediaID)

	var media models.Media
	err := s.db.GetContext(ctx, &media, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("media", mediaID)
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

var mediaSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"duration":  "duration",
	"fileSize":  "file_size",
}

func (s *MediaService) ListMedia(ctx context.Context, scope models.TenantScope, params models.MediaListParams) ([]models.Media, models.PageMeta, error) {
	params.Normalize()

	where, args, idx := scopeWhere(scope, 1)
	where += " AND deleted_at IS NULL"

	if params.MediaType != "" {
		where += fmt.Sprintf(" AND media_type = $%d", idx)
		args = append(args, params.MediaType)
		idx++
	}
	if params.SourceType != "" {
		where += fmt.Sprintf(" AND source_type = $%d", idx)
		args = append(args, params.SourceType)
		idx++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, params.Status)
		idx++
	}
	if params.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, params.Category)
		idx++
	}
	if len(params.Tags) > 0 {
		where += fmt.Sprintf(" AND tags && $%d", idx)
		args = append(args, models.StringSlice(params.Tags))
		idx++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", idx, idx)
		args = append(args, "%"+params.Search+"%")
		idx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM signage_media WHERE " + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, models.PageMeta{}, err
	}

	sortCol := params.SortColumn(mediaSortColumns, "created_at")
	query := fmt.Sprintf(`
		SELECT * FROM signage_media
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`, where, sortCol, params.SortOrder, idx, idx+1)
	args = append(args, params.Limit, params.Offset())

	media := []models.Media{}
	if err := s.db.SelectContext(ctx, &media, query, args...); err != nil {
		return nil, models.PageMeta{}, err
	}
	return media, models.NewPageMeta(params.Page, total), nil
}

// GetLibrary returns platform assets plus, for organization scopes, the
// organization's own assets. Archived and deleted rows are excluded.
func (s *MediaService) GetLibrary(ctx context.Context, scope models.TenantScope) (*models.MediaLibrary, error) {
	library := &models.MediaLibrary{
		Platform:     []models.Media{},
		Organization: []models.Media{},
	}

	platformQuery := `
		SELECT * FROM signage_media
		WHERE service_key = $1 AND organization_id IS NULL
		  AND status = 'active' AND deleted_at IS NULL
		ORDER BY category, name`
	if err := s.db.SelectContext(ctx, &library.Platform, platformQuery, scope.ServiceKey); err != nil {
		return nil, err
	}

	if scope.OrganizationID != nil {
		orgQuery := `
			SELECT * FROM signage_media
			WHERE service_key = $1 AND organization_id = $2
			  AND status = 'active' AND deleted_at IS NULL
			ORDER BY category, name`
		if err := s.db.SelectContext(ctx, &library.Organization, orgQuery, scope.ServiceKey, *scope.OrganizationID); err != nil {
			return nil, err
		}
	}
	return library, nil
}

func (s *MediaService) UpdateMedia(ctx context.Context, scope models.TenantScope, mediaID string, req *models.UpdateMediaRequest) (*models.Media, error) {
	media, err := s.GetMedia(ctx, scope, mediaID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		media.Name = *req.Name
	}
	if req.Description != nil {
		media.Description = *req.Description
	}
	if req.SourceURL != nil {
		media.SourceURL = *req.SourceURL
	}
	if req.ThumbnailURL != nil {
		media.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Duration != nil {
		media.Duration = *req.Duration
	}
	if req.Category != nil {
		media.Category = *req.Category
	}
	if req.Tags != nil {
		media.Tags = models.StringSlice(req.Tags)
	}
	if req.Status != nil {
		if *req.Status != models.MediaStatusActive && *req.Status != models.MediaStatusArchived {
			return nil, models.NewValidation(map[string]string{"status": "must be active or archived"})
		}
		media.Status = *req.Status
	}

	if fields := media.ValidateForCreation(); len(fields) > 0 {
		return nil, models.NewValidation(fields)
	}

	media.UpdatedAt = time.Now()
	query := `
		UPDATE signage_media SET
			name = :name, description = :description, source_url = :source_url,
			thumbnail_url = :thumbnail_url, duration = :duration,
			category = :category, tags = :tags, status = :status,
			updated_at = :updated_at
		WHERE id = :id`
	if _, err := s.db.NamedExecContext(ctx, query, media); err != nil {
		return nil, fmt.Errorf("failed to update media: %w", err)
	}
	return media, nil
}

// DeleteMedia soft-deletes the asset. Playlist items referencing it are left
// in place; resolution skips them.
func (s *MediaService) DeleteMedia(ctx context.Context, scope models.TenantScope, mediaID string) error {
	if !validID(mediaID) {
		return models.NewNotFound("media", mediaID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		UPDATE signage_media
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, mediaID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return models.NewNotFound("media", mediaID)
	}
	return nil
}
