package services

import (
	"context"
	"testing"

	"signagebe/internal/models"
)

// Malformed ids must short-circuit before SQL; the id columns are UUID typed
// and a raw string would otherwise fail as a cast error. The mock carries no
// expectations, so any query here fails the test.
func TestMalformedIDsReadAsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	scope := models.TenantScope{ServiceKey: "retail-screens"}
	ctx := context.Background()

	if _, err := NewMediaService(db).GetMedia(ctx, scope, "not-a-uuid"); !models.IsNotFound(err) {
		t.Fatalf("GetMedia: err = %v, want not found", err)
	}
	if _, err := NewPlaylistService(db).GetPlaylist(ctx, scope, "42"); !models.IsNotFound(err) {
		t.Fatalf("GetPlaylist: err = %v, want not found", err)
	}
	if _, err := NewScheduleService(db).GetSchedule(ctx, scope, "weekly"); !models.IsNotFound(err) {
		t.Fatalf("GetSchedule: err = %v, want not found", err)
	}
	if err := NewChannelService(db).DeleteChannel(ctx, scope, "../lobby"); !models.IsNotFound(err) {
		t.Fatalf("DeleteChannel: err = %v, want not found", err)
	}
	if _, err := NewOverrideService(db, nil).GetOverride(ctx, scope, "latest"); !models.IsNotFound(err) {
		t.Fatalf("GetOverride: err = %v, want not found", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("malformed id reached the database: %v", err)
	}
}

func TestValidID(t *testing.T) {
	if !validID("11111111-1111-1111-1111-111111111111") {
		t.Fatalf("well-formed UUID rejected")
	}
	for _, bad := range []string{"", "abc", "11111111-1111-1111-1111-11111111111g"} {
		if validID(bad) {
			t.Fatalf("validID(%q) = true", bad)
		}
	}
}
