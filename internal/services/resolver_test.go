package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"signagebe/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestResolveDegradesWhenOverrideLookupFails(t *testing.T) {
	db, mock := newMockDB(t)
	playlists := NewPlaylistService(db)
	schedules := NewScheduleService(db)
	overrides := NewOverrideService(db, nil)
	svc := NewResolverService(db, playlists, schedules, overrides)
	scope := models.TenantScope{ServiceKey: "retail-screens"}

	mock.ExpectQuery(`SELECT \* FROM signage_overrides`).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectQuery(`SELECT s\.\*, COALESCE\(p\.name, ''\) AS playlist_name`).
		WillReturnRows(sqlmock.NewRows(scheduleColumns))

	result, err := svc.ResolveActiveContent(context.Background(), scope, models.PlatformDefaultChannel(), time.Now())
	if err != nil {
		t.Fatalf("a failed override lookup must degrade, not error: %v", err)
	}
	if result.Source != models.ResolveSourceNone {
		t.Fatalf("source = %q, want none", result.Source)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
