package services

import (
	"context"
	"testing"
	"time"

	"signagebe/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

const testOverrideID = "aaaaaaaa-1111-2222-3333-444444444444"

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db := sqlx.NewDb(raw, "postgres")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var overrideColumns = []string{
	"id", "service_key", "organization_id", "channel_id", "slot_key", "mode",
	"playlist_id", "content", "status", "ended_reason", "started_by",
	"started_at", "expires_at", "ended_at", "created_at", "updated_at",
}

// overrideRow builds a single-row result for the override table. expiresAt
// and endedAt take a time.Time or nil.
func overrideRow(id, status, endedReason string, expiresAt, endedAt interface{}) *sqlmock.Rows {
	started := time.Now().Add(-time.Hour)
	return sqlmock.NewRows(overrideColumns).AddRow(
		id, "retail-screens", nil, nil, "platform-default", models.OverrideModeReplace,
		nil, []byte(`{"text":"flash sale"}`), status, endedReason, "admin-1",
		started, expiresAt, endedAt, started, started,
	)
}

type stubNotifier struct {
	started int
	stopped int
}

func (n *stubNotifier) OverrideStarted(*models.Override) { n.started++ }
func (n *stubNotifier) OverrideStopped(*models.Override) { n.stopped++ }

func TestPreviewLookupDoesNotPersistExpiry(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewOverrideService(db, nil)
	scope := models.TenantScope{ServiceKey: "retail-screens"}

	expires := time.Now().Add(30 * time.Minute)
	mock.ExpectQuery(`SELECT \* FROM signage_overrides`).
		WillReturnRows(overrideRow(testOverrideID, models.OverrideStatusActive, "", expires, nil))

	// The expectation below must stay unmet: the lookup instant is past the
	// expiry but the wall clock is not, so no bookkeeping write may run.
	mock.ExpectExec(`UPDATE signage_overrides`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := svc.GetLiveOverride(context.Background(), scope, models.PlatformDefaultChannel(), time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetLiveOverride: %v", err)
	}
	if got != nil {
		t.Fatalf("an override lapsed at the lookup instant must read as absent")
	}

	time.Sleep(50 * time.Millisecond)
	if err := mock.ExpectationsWereMet(); err == nil {
		t.Fatalf("a future-dated lookup expired a still-live override")
	}
}

func TestLapsedOverrideIsExpiredLazily(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewOverrideService(db, nil)
	scope := models.TenantScope{ServiceKey: "retail-screens"}

	expires := time.Now().Add(-30 * time.Minute)
	mock.ExpectQuery(`SELECT \* FROM signage_overrides`).
		WillReturnRows(overrideRow(testOverrideID, models.OverrideStatusActive, "", expires, nil))
	mock.ExpectExec(`UPDATE signage_overrides`).
		WithArgs(sqlmock.AnyArg(), testOverrideID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := svc.GetLiveOverride(context.Background(), scope, models.PlatformDefaultChannel(), time.Now())
	if err != nil {
		t.Fatalf("GetLiveOverride: %v", err)
	}
	if got != nil {
		t.Fatalf("lapsed override must read as absent")
	}

	// The write-back is asynchronous.
	deadline := time.Now().Add(2 * time.Second)
	for mock.ExpectationsWereMet() != nil {
		if time.Now().After(deadline) {
			t.Fatalf("expiry was never persisted: %v", mock.ExpectationsWereMet())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStopActiveOverride(t *testing.T) {
	db, mock := newMockDB(t)
	notifier := &stubNotifier{}
	svc := NewOverrideService(db, notifier)
	scope := models.TenantScope{ServiceKey: "retail-screens"}

	mock.ExpectQuery(`SELECT \* FROM signage_overrides`).
		WillReturnRows(overrideRow(testOverrideID, models.OverrideStatusActive, "", nil, nil))
	mock.ExpectExec(`UPDATE signage_overrides`).
		WithArgs(sqlmock.AnyArg(), testOverrideID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := svc.Stop(context.Background(), scope, testOverrideID)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got.Status != models.OverrideStatusStopped {
		t.Fatalf("status = %q, want stopped", got.Status)
	}
	if got.EndedReason != models.OverrideReasonManual {
		t.Fatalf("endedReason = %q, want manual", got.EndedReason)
	}
	if got.EndedAt == nil {
		t.Fatalf("stopped override must carry endedAt")
	}
	if notifier.stopped != 1 {
		t.Fatalf("stop events = %d, want 1", notifier.stopped)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	notifier := &stubNotifier{}
	svc := NewOverrideService(db, notifier)
	scope := models.TenantScope{ServiceKey: "retail-screens"}

	endedAt := time.Now().Add(-10 * time.Minute)
	mock.ExpectQuery(`SELECT \* FROM signage_overrides`).
		WillReturnRows(overrideRow(testOverrideID, models.OverrideStatusStopped, models.OverrideReasonManual, nil, endedAt))

	got, err := svc.Stop(context.Background(), scope, testOverrideID)
	if err != nil {
		t.Fatalf("stopping a stopped override must not error: %v", err)
	}
	if got.Status != models.OverrideStatusStopped {
		t.Fatalf("status = %q, want stopped", got.Status)
	}
	if notifier.stopped != 0 {
		t.Fatalf("a repeated stop must not re-notify, got %d events", notifier.stopped)
	}
	// Only the read may run; a second UPDATE would trip the mock.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("terminal override triggered a write: %v", err)
	}
}

func TestListOverridesRejectsMalformedChannelFilter(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewOverrideService(db, nil)
	scope := models.TenantScope{ServiceKey: "retail-screens"}

	_, _, err := svc.ListOverrides(context.Background(), scope, models.OverrideListParams{ChannelID: "lobby"})
	if !models.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
