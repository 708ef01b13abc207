package services

import (
	"context"
	"testing"
	"time"

	"signagebe/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	testPlaylistID = "11111111-1111-1111-1111-111111111111"
	testItemA      = "22222222-2222-2222-2222-222222222222"
	testItemB      = "33333333-3333-3333-3333-333333333333"
	testMediaID    = "44444444-4444-4444-4444-444444444444"
)

var playlistColumns = []string{
	"id", "service_key", "organization_id", "name", "description", "status",
	"loop", "item_count", "total_duration", "created_by", "created_at",
	"updated_at", "deleted_at",
}

var playlistItemColumns = []string{
	"id", "playlist_id", "media_id", "sort_order", "duration", "transition",
	"settings", "created_at", "updated_at",
}

var mediaColumns = []string{
	"id", "service_key", "organization_id", "name", "description", "media_type",
	"source_type", "source_url", "thumbnail_url", "duration", "mime_type",
	"file_size", "category", "tags", "status", "created_by", "created_at",
	"updated_at", "deleted_at",
}

func playlistHeaderRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(playlistColumns).AddRow(
		testPlaylistID, "retail-screens", nil, "Store Loop", "", models.PlaylistStatusActive,
		true, 2, 30, "admin-1", now, now, nil,
	)
}

func mediaRow(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(mediaColumns).AddRow(
		id, "retail-screens", nil, "Promo Spot", "", models.MediaTypeVideo,
		models.MediaSourceUpload, "https://cdn.example/promo.mp4", "", 15, "video/mp4",
		1024, "", []byte("{}"), models.MediaStatusActive, "admin-1", now, now, nil,
	)
}

func TestReorderAssignsZeroBasedOrder(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPlaylistService(db)
	scope := models.TenantScope{ServiceKey: "retail-screens"}
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM signage_playlists`).
		WillReturnRows(playlistHeaderRow())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM signage_playlist_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testItemA).AddRow(testItemB))

	// Request order [B, A]: B lands at position 0, A at 1.
	mock.ExpectExec(`UPDATE signage_playlist_items`).
		WithArgs(0, testItemB, testPlaylistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE signage_playlist_items`).
		WithArgs(1, testItemA, testPlaylistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE signage_playlists`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM signage_playlist_items`).
		WillReturnRows(sqlmock.NewRows(playlistItemColumns).
			AddRow(testItemB, testPlaylistID, testMediaID, 0, nil, "", []byte("{}"), now, now).
			AddRow(testItemA, testPlaylistID, testMediaID, 1, nil, "", []byte("{}"), now, now))
	mock.ExpectQuery(`SELECT \* FROM signage_media`).
		WillReturnRows(mediaRow(testMediaID))

	items, err := svc.ReorderItems(context.Background(), scope, testPlaylistID, []string{testItemB, testItemA})
	if err != nil {
		t.Fatalf("ReorderItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID != testItemB || items[0].SortOrder != 0 {
		t.Fatalf("first item = %s at %d, want %s at 0", items[0].ID, items[0].SortOrder, testItemB)
	}
	if items[1].ID != testItemA || items[1].SortOrder != 1 {
		t.Fatalf("second item = %s at %d, want %s at 1", items[1].ID, items[1].SortOrder, testItemA)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddItemToEmptyPlaylistStartsAtZero(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPlaylistService(db)
	scope := models.TenantScope{ServiceKey: "retail-screens"}

	mock.ExpectQuery(`SELECT \* FROM signage_playlists`).
		WillReturnRows(playlistHeaderRow())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM signage_media`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(sort_order\), -1\) \+ 1`).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO signage_playlist_items`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE signage_playlists`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item, err := svc.AddItem(context.Background(), scope, testPlaylistID, &models.AddPlaylistItemRequest{
		MediaID: testMediaID,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.SortOrder != 0 {
		t.Fatalf("first item sortOrder = %d, want 0", item.SortOrder)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
