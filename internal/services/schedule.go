// ===============================
// internal/services/schedule.go - Schedule repository and validator
// ===============================

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"signagebe/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ScheduleService struct {
	db *sqlx.DB
}

func NewScheduleService(db *sqlx.DB) *ScheduleService {
	return &ScheduleService{db: db}
}

func (s *ScheduleService) CreateSchedule(ctx context.Context, scope models.TenantScope, userID string, req *models.CreateScheduleRequest) (*models.Schedule, error) {
	status := req.Status
	if status == "" {
		status = models.ScheduleStatusActive
	}
	if status != models.ScheduleStatusActive && status != models.ScheduleStatusInactive {
		return nil, models.NewValidation(map[string]string{"status": "must be active or inactive"})
	}
	priority := 0
	if req.Priority != nil {
		priority = *req.Priority
	}

	schedule := &models.Schedule{
		ID:             uuid.New().String(),
		ServiceKey:     scope.ServiceKey,
		OrganizationID: scope.OrganizationID,
		ChannelID:      req.ChannelID,
		PlaylistID:     req.PlaylistID,
		Name:           req.Name,
		Recurrence:     req.Recurrence,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		DaysOfWeek:     models.IntSlice(req.DaysOfWeek),
		Date:           req.Date,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		Priority:       priority,
		Status:         status,
		CreatedBy:      userID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, scope, schedule); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO signage_schedules (
			id, service_key, organization_id, channel_id, playlist_id, name,
			recurrence, start_time, end_time, days_of_week, date, valid_from,
			valid_until, priority, status, created_by, created_at, updated_at
		) VALUES (
			:id, :service_key, :organization_id, :channel_id, :playlist_id, :name,
			:recurrence, :start_time, :end_time, :days_of_week, :date, :valid_from,
			:valid_until, :priority, :status, :created_by, :created_at, :updated_at
		)`
	if _, err := s.db.NamedExecContext(ctx, query, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return schedule, nil
}

func (s *ScheduleService) GetSchedule(ctx context.Context, scope models.TenantScope, scheduleID string) (*models.Schedule, error) {
	if !validID(scheduleID) {
		return nil, models.NewNotFound("schedule", scheduleID)
	}
	where, args, idx := scopeWhereAliased(scope, "s", 1)
	query := fmt.Sprintf(`
		SELECT s.*, COALESCE(p.name, '') AS playlist_name
		FROM signage_schedules s
		LEFT JOIN signage_playlists p ON p.id = s.playlist_id
		WHERE %s AND s.id = $%d AND s.deleted_at IS NULL`, where, idx)
	args = append(args, scheduleID)

	var schedule models.Schedule
	err := s.db.GetContext(ctx, &schedule, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("schedule", scheduleID)
	}
	if err != nil {
		return nil, err
	}
	schedule.Status = schedule.EffectiveStatus(time.Now())
	return &schedule, nil
}

var scheduleSortColumns = map[string]string{
	"name":      "s.name",
	"priority":  "s.priority",
	"createdAt": "s.created_at",
	"updatedAt": "s.updated_at",
	"startTime": "s.start_time",
}

func (s *ScheduleService) ListSchedules(ctx context.Context, scope models.TenantScope, params models.ScheduleListParams) ([]models.Schedule, models.PageMeta, error) {
	params.Normalize()

	where, args, idx := scopeWhereAliased(scope, "s", 1)
	where += " AND s.deleted_at IS NULL"

	if params.ChannelID != "" {
		if !validID(params.ChannelID) {
			return nil, models.PageMeta{}, models.NewValidation(map[string]string{"channelId": "must be a UUID"})
		}
		where += fmt.Sprintf(" AND s.channel_id = $%d", idx)
		args = append(args, params.ChannelID)
		idx++
	}
	if params.PlaylistID != "" {
		if !validID(params.PlaylistID) {
			return nil, models.PageMeta{}, models.NewValidation(map[string]string{"playlistId": "must be a UUID"})
		}
		where += fmt.Sprintf(" AND s.playlist_id = $%d", idx)
		args = append(args, params.PlaylistID)
		idx++
	}
	if params.Recurrence != "" {
		where += fmt.Sprintf(" AND s.recurrence = $%d", idx)
		args = append(args, params.Recurrence)
		idx++
	}

	// Expired is a derived state, not a stored status: the predicate mirrors
	// Schedule.IsExpiredAt so COUNT, LIMIT and the returned rows agree.
	switch {
	case params.Status == models.ScheduleStatusExpired:
		where += " AND s.status = 'active' AND " + scheduleExpiredSQL("s", idx)
		args = append(args, time.Now().Format("2006-01-02"))
		idx++
	case params.Status == models.ScheduleStatusActive:
		where += " AND s.status = 'active' AND NOT " + scheduleExpiredSQL("s", idx)
		args = append(args, time.Now().Format("2006-01-02"))
		idx++
	case params.Status != "":
		where += fmt.Sprintf(" AND s.status = $%d", idx)
		args = append(args, params.Status)
		idx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM signage_schedules s WHERE " + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, models.PageMeta{}, err
	}

	sortCol := params.SortColumn(scheduleSortColumns, "s.created_at")
	query := fmt.Sprintf(`
		SELECT s.*, COALESCE(p.name, '') AS playlist_name
		FROM signage_schedules s
		LEFT JOIN signage_playlists p ON p.id = s.playlist_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`, where, sortCol, params.SortOrder, idx, idx+1)
	args = append(args, params.Limit, params.Offset())

	schedules := []models.Schedule{}
	if err := s.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, models.PageMeta{}, err
	}

	now := time.Now()
	for i := range schedules {
		schedules[i].Status = schedules[i].EffectiveStatus(now)
	}
	return schedules, models.NewPageMeta(params.Page, total), nil
}

// scheduleExpiredSQL is the SQL form of Schedule.IsExpiredAt: a one_time
// schedule whose date has passed, or a recurring one past valid_until. The
// placeholder takes today's date as YYYY-MM-DD; a NULL valid_until compares
// to NULL and never matches, matching the Go side.
func scheduleExpiredSQL(alias string, idx int) string {
	return fmt.Sprintf(
		"((%[1]s.recurrence = 'one_time' AND %[1]s.date < $%[2]d) OR (%[1]s.recurrence <> 'one_time' AND %[1]s.valid_until < $%[2]d))",
		alias, idx)
}

func (s *ScheduleService) UpdateSchedule(ctx context.Context, scope models.TenantScope, scheduleID string, req *models.UpdateScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.getRow(ctx, scope, scheduleID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.ChannelID != nil {
		if *req.ChannelID == "" {
			schedule.ChannelID = nil
		} else {
			schedule.ChannelID = req.ChannelID
		}
	}
	if req.PlaylistID != nil {
		schedule.PlaylistID = *req.PlaylistID
	}
	if req.Recurrence != nil {
		schedule.Recurrence = *req.Recurrence
	}
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.DaysOfWeek != nil {
		schedule.DaysOfWeek = models.IntSlice(req.DaysOfWeek)
	}
	if req.Date != nil {
		schedule.Date = req.Date
	}
	if req.ValidFrom != nil {
		schedule.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		schedule.ValidUntil = req.ValidUntil
	}
	if req.Priority != nil {
		schedule.Priority = *req.Priority
	}
	if req.Status != nil {
		if *req.Status != models.ScheduleStatusActive && *req.Status != models.ScheduleStatusInactive {
			return nil, models.NewValidation(map[string]string{"status": "must be active or inactive"})
		}
		schedule.Status = *req.Status
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, scope, schedule); err != nil {
		return nil, err
	}

	schedule.UpdatedAt = time.Now()
	query := `
		UPDATE signage_schedules SET
			name = :name, channel_id = :channel_id, playlist_id = :playlist_id,
			recurrence = :recurrence, start_time = :start_time, end_time = :end_time,
			days_of_week = :days_of_week, date = :date, valid_from = :valid_from,
			valid_until = :valid_until, priority = :priority, status = :status,
			updated_at = :updated_at
		WHERE id = :id`
	if _, err := s.db.NamedExecContext(ctx, query, schedule); err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	schedule.Status = schedule.EffectiveStatus(time.Now())
	return schedule, nil
}

func (s *ScheduleService) DeleteSchedule(ctx context.Context, scope models.TenantScope, scheduleID string) error {
	if !validID(scheduleID) {
		return models.NewNotFound("schedule", scheduleID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		UPDATE signage_schedules
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, scheduleID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return models.NewNotFound("schedule", scheduleID)
	}
	return nil
}

// GetCandidates returns the active schedules covering the target at asOf.
// SQL narrows to the tenant, status and slot; the recurrence check runs in
// Go so its semantics live in one place.
func (s *ScheduleService) GetCandidates(ctx context.Context, scope models.TenantScope, target models.ChannelTarget, asOf time.Time) ([]*models.Schedule, error) {
	where, args, idx := scopeWhereAliased(scope, "s", 1)
	where += " AND s.deleted_at IS NULL AND s.status = 'active'"

	if channelID, ok := target.ChannelID(); ok {
		where += fmt.Sprintf(" AND (s.channel_id = $%d OR s.channel_id IS NULL)", idx)
		args = append(args, channelID)
		idx++
	} else {
		where += " AND s.channel_id IS NULL"
	}

	query := fmt.Sprintf(`
		SELECT s.*, COALESCE(p.name, '') AS playlist_name
		FROM signage_schedules s
		LEFT JOIN signage_playlists p ON p.id = s.playlist_id
		WHERE %s`, where)

	rows := []models.Schedule{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	candidates := []*models.Schedule{}
	for i := range rows {
		if rows[i].MatchesAt(asOf) {
			candidates = append(candidates, &rows[i])
		}
	}
	return candidates, nil
}

// Calendar expands every matching schedule into concrete occurrences in
// [startDate, endDate], sorted by date then start time.
func (s *ScheduleService) Calendar(ctx context.Context, scope models.TenantScope, startDate, endDate, channelID string) ([]models.CalendarEntry, error) {
	if !validCalendarDate(startDate) || !validCalendarDate(endDate) {
		return nil, models.NewValidation(map[string]string{"startDate": "startDate and endDate must be YYYY-MM-DD"})
	}
	start, _ := time.Parse("2006-01-02", startDate)
	end, _ := time.Parse("2006-01-02", endDate)
	if end.Before(start) {
		return nil, models.NewValidation(map[string]string{"endDate": "endDate cannot precede startDate"})
	}
	if end.Sub(start) > 92*24*time.Hour {
		return nil, models.NewValidation(map[string]string{"endDate": "range cannot exceed 92 days"})
	}

	where, args, idx := scopeWhereAliased(scope, "s", 1)
	where += " AND s.deleted_at IS NULL AND s.status = 'active'"
	if channelID != "" {
		if !validID(channelID) {
			return nil, models.NewValidation(map[string]string{"channelId": "must be a UUID"})
		}
		where += fmt.Sprintf(" AND (s.channel_id = $%d OR s.channel_id IS NULL)", idx)
		args = append(args, channelID)
		idx++
	}

	query := fmt.Sprintf(`
		SELECT s.*, COALESCE(p.name, '') AS playlist_name
		FROM signage_schedules s
		LEFT JOIN signage_playlists p ON p.id = s.playlist_id
		WHERE %s`, where)

	schedules := []models.Schedule{}
	if err := s.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, err
	}

	entries := []models.CalendarEntry{}
	for i := range schedules {
		entries = append(entries, schedules[i].ExpandCalendar(startDate, endDate)...)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		if entries[i].StartTime != entries[j].StartTime {
			return entries[i].StartTime < entries[j].StartTime
		}
		return entries[i].Priority > entries[j].Priority
	})
	return entries, nil
}

// getRow fetches without the playlist join or status overlay, for updates.
func (s *ScheduleService) getRow(ctx context.Context, scope models.TenantScope, scheduleID string) (*models.Schedule, error) {
	if !validID(scheduleID) {
		return nil, models.NewNotFound("schedule", scheduleID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT * FROM signage_schedules
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, scheduleID)

	var schedule models.Schedule
	err := s.db.GetContext(ctx, &schedule, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound("schedule", scheduleID)
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// checkReferences validates the playlist and channel a schedule points at,
// with errors that distinguish a missing playlist from a missing schedule.
func (s *ScheduleService) checkReferences(ctx context.Context, scope models.TenantScope, schedule *models.Schedule) error {
	if !validID(schedule.PlaylistID) {
		return models.NewNotFound("playlist", schedule.PlaylistID)
	}
	if schedule.ChannelID != nil && !validID(*schedule.ChannelID) {
		return models.NewNotFound("channel", *schedule.ChannelID)
	}
	where, args, idx := scopeWhere(scope, 1)
	query := fmt.Sprintf(`
		SELECT status FROM signage_playlists
		WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
	args = append(args, schedule.PlaylistID)

	var status string
	err := s.db.GetContext(ctx, &status, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewNotFound("playlist", schedule.PlaylistID)
	}
	if err != nil {
		return err
	}
	if status == models.PlaylistStatusArchived {
		return models.NewValidation(map[string]string{"playlistId": "playlist is archived"})
	}

	if schedule.ChannelID != nil {
		where, args, idx = scopeWhere(scope, 1)
		query = fmt.Sprintf(`
			SELECT COUNT(*) FROM signage_channels
			WHERE %s AND id = $%d AND deleted_at IS NULL`, where, idx)
		args = append(args, *schedule.ChannelID)

		var count int
		if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
			return err
		}
		if count == 0 {
			return models.NewNotFound("channel", *schedule.ChannelID)
		}
	}
	return nil
}

func validCalendarDate(v string) bool {
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}
