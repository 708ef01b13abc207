package models

import (
	"testing"
	"time"
)

func TestOverrideLiveness(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	expires := start.Add(10 * time.Minute)

	o := &Override{
		Status:    OverrideStatusActive,
		StartedAt: start,
		ExpiresAt: &expires,
	}

	if !o.IsLiveAt(start) {
		t.Fatalf("override should be live at start")
	}
	if !o.IsLiveAt(expires.Add(-time.Second)) {
		t.Fatalf("override should be live just before expiry")
	}
	if o.IsLiveAt(expires) {
		t.Fatalf("expiry instant should not be live")
	}
	if o.IsLiveAt(expires.Add(time.Hour)) {
		t.Fatalf("lapsed override should not be live")
	}
}

func TestOverrideWithoutExpiryRunsUntilStopped(t *testing.T) {
	o := &Override{
		Status:    OverrideStatusActive,
		StartedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if !o.IsLiveAt(o.StartedAt.Add(100 * 24 * time.Hour)) {
		t.Fatalf("unbounded override stays live until stopped")
	}
	if o.HasLapsedAt(o.StartedAt.Add(100 * 24 * time.Hour)) {
		t.Fatalf("unbounded override never lapses")
	}
}

func TestTerminalOverridesAreNeverLive(t *testing.T) {
	now := time.Now()
	for _, status := range []string{OverrideStatusStopped, OverrideStatusExpired} {
		o := &Override{Status: status, StartedAt: now.Add(-time.Hour)}
		if o.IsLiveAt(now) {
			t.Fatalf("%s override must not be live", status)
		}
	}

	superseded := &Override{
		Status:      OverrideStatusStopped,
		EndedReason: OverrideReasonSuperseded,
		StartedAt:   now.Add(-time.Hour),
	}
	if superseded.IsLiveAt(now) {
		t.Fatalf("superseded override must not be live")
	}
}

func TestOverrideValidate(t *testing.T) {
	playlistID := "p1"
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ok := &Override{Mode: OverrideModeReplace, PlaylistID: &playlistID, StartedAt: start}
	if err := ok.Validate(); err != nil {
		t.Fatalf("playlist override rejected: %v", err)
	}

	adhoc := &Override{
		Mode:      OverrideModeOverlay,
		Content:   MetadataMap{"text": "evacuate via north exit"},
		StartedAt: start,
	}
	if err := adhoc.Validate(); err != nil {
		t.Fatalf("ad-hoc override rejected: %v", err)
	}

	neither := &Override{Mode: OverrideModeReplace, StartedAt: start}
	if err := neither.Validate(); err == nil {
		t.Fatalf("override needs a playlist or content")
	}

	both := &Override{
		Mode:       OverrideModeReplace,
		PlaylistID: &playlistID,
		Content:    MetadataMap{"text": "x"},
		StartedAt:  start,
	}
	if err := both.Validate(); err == nil {
		t.Fatalf("override cannot carry both a playlist and content")
	}

	badMode := &Override{Mode: "pause", PlaylistID: &playlistID, StartedAt: start}
	if err := badMode.Validate(); err == nil {
		t.Fatalf("unknown mode must be rejected")
	}

	past := start.Add(-time.Minute)
	badExpiry := &Override{Mode: OverrideModeReplace, PlaylistID: &playlistID, StartedAt: start, ExpiresAt: &past}
	if err := badExpiry.Validate(); err == nil {
		t.Fatalf("expiry before start must be rejected")
	}
}

func TestOverrideTarget(t *testing.T) {
	ch := "c1"
	specific := &Override{ChannelID: &ch}
	if specific.Target().SlotKey() != "c1" {
		t.Fatalf("channel override slot = %q", specific.Target().SlotKey())
	}

	platform := &Override{}
	if !platform.Target().IsPlatformDefault() {
		t.Fatalf("nil channel means the platform default slot")
	}
	if platform.Target().SlotKey() != "platform-default" {
		t.Fatalf("platform slot key = %q", platform.Target().SlotKey())
	}
}
