package services

import (
	"context"
	"testing"
	"time"

	"signagebe/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

const testPlaylistRefID = "bbbbbbbb-1111-2222-3333-444444444444"

var scheduleColumns = []string{
	"id", "service_key", "organization_id", "channel_id", "playlist_id",
	"name", "recurrence", "start_time", "end_time", "days_of_week", "date",
	"valid_from", "valid_until", "priority", "status", "created_by",
	"created_at", "updated_at", "deleted_at", "playlist_name",
}

func TestListSchedulesExpiredFilterMeta(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewScheduleService(db)
	scope := models.TenantScope{ServiceKey: "retail-screens"}
	now := time.Now()

	// The count must carry the same expiry predicate as the page query, so
	// total reflects the filtered set rather than every schedule.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM signage_schedules s WHERE .*one_time`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(scheduleColumns).
		AddRow(
			"cccccccc-1111-2222-3333-444444444444", "retail-screens", nil, nil, testPlaylistRefID,
			"summer launch day", models.RecurrenceOneTime, "09:00:00", "17:00:00", []byte("{}"), "2024-01-15",
			nil, nil, 0, models.ScheduleStatusActive, "admin-1",
			now, now, nil, "Launch Loop",
		).
		AddRow(
			"dddddddd-1111-2222-3333-444444444444", "retail-screens", nil, nil, testPlaylistRefID,
			"winter promo", models.RecurrenceDaily, "08:00:00", "20:00:00", []byte("{}"), nil,
			nil, "2024-02-01", 0, models.ScheduleStatusActive, "admin-1",
			now, now, nil, "Promo Loop",
		)
	mock.ExpectQuery(`SELECT s\.\*, COALESCE\(p\.name, ''\) AS playlist_name`).
		WillReturnRows(rows)

	schedules, meta, err := svc.ListSchedules(context.Background(), scope, models.ScheduleListParams{
		Status: models.ScheduleStatusExpired,
	})
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if meta.Total != 2 {
		t.Fatalf("meta.Total = %d, want 2", meta.Total)
	}
	if len(schedules) != 2 {
		t.Fatalf("len = %d, want 2", len(schedules))
	}
	for _, sched := range schedules {
		if sched.Status != models.ScheduleStatusExpired {
			t.Fatalf("schedule %s status = %q, want expired", sched.Name, sched.Status)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListSchedulesActiveFilterExcludesExpired(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewScheduleService(db)
	scope := models.TenantScope{ServiceKey: "retail-screens"}
	now := time.Now()
	future := now.AddDate(0, 1, 0).Format("2006-01-02")

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM signage_schedules s WHERE .*NOT \(\(s\.recurrence = 'one_time'`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT s\.\*, COALESCE\(p\.name, ''\) AS playlist_name`).
		WillReturnRows(sqlmock.NewRows(scheduleColumns).AddRow(
			"eeeeeeee-1111-2222-3333-444444444444", "retail-screens", nil, nil, testPlaylistRefID,
			"ongoing loop", models.RecurrenceDaily, "08:00:00", "20:00:00", []byte("{}"), nil,
			nil, future, 0, models.ScheduleStatusActive, "admin-1",
			now, now, nil, "Store Loop",
		))

	schedules, meta, err := svc.ListSchedules(context.Background(), scope, models.ScheduleListParams{
		Status: models.ScheduleStatusActive,
	})
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if meta.Total != 1 || len(schedules) != 1 {
		t.Fatalf("total = %d, len = %d, want 1/1", meta.Total, len(schedules))
	}
	if schedules[0].Status != models.ScheduleStatusActive {
		t.Fatalf("status = %q, want active", schedules[0].Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListSchedulesRejectsMalformedFilters(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewScheduleService(db)
	scope := models.TenantScope{ServiceKey: "retail-screens"}
	ctx := context.Background()

	if _, _, err := svc.ListSchedules(ctx, scope, models.ScheduleListParams{ChannelID: "lobby"}); !models.IsValidation(err) {
		t.Fatalf("channel filter: err = %v, want validation error", err)
	}
	if _, _, err := svc.ListSchedules(ctx, scope, models.ScheduleListParams{PlaylistID: "promo"}); !models.IsValidation(err) {
		t.Fatalf("playlist filter: err = %v, want validation error", err)
	}
	if _, err := svc.Calendar(ctx, scope, "2024-06-01", "2024-06-07", "lobby"); !models.IsValidation(err) {
		t.Fatalf("calendar channel filter: err = %v, want validation error", err)
	}
}
