package models

import "testing"

func TestValidateReorderSet(t *testing.T) {
	current := []string{"a", "b", "c"}

	if err := ValidateReorderSet(current, []string{"c", "a", "b"}); err != nil {
		t.Fatalf("permutation rejected: %v", err)
	}
	if err := ValidateReorderSet(current, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("identity order rejected: %v", err)
	}

	if err := ValidateReorderSet(current, []string{"a", "b"}); err == nil {
		t.Fatalf("missing item must conflict")
	}
	if err := ValidateReorderSet(current, []string{"a", "b", "c", "d"}); err == nil {
		t.Fatalf("extra item must conflict")
	}
	if err := ValidateReorderSet(current, []string{"a", "b", "x"}); err == nil {
		t.Fatalf("unknown item must conflict")
	}
	if err := ValidateReorderSet(current, []string{"a", "a", "b"}); err == nil {
		t.Fatalf("duplicate item must conflict")
	}

	err := ValidateReorderSet(current, []string{"a", "b", "x"})
	if !IsConflict(err) {
		t.Fatalf("expected conflict error, got %T", err)
	}

	if err := ValidateReorderSet(nil, nil); err != nil {
		t.Fatalf("empty playlist reorder should be a no-op: %v", err)
	}
}

func TestPlaylistIsArchived(t *testing.T) {
	p := &Playlist{Status: PlaylistStatusActive}
	if p.IsArchived() {
		t.Fatalf("active playlist is not archived")
	}
	p.Status = PlaylistStatusArchived
	if !p.IsArchived() {
		t.Fatalf("archived status not detected")
	}
}
