package models

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

// 2024-01-01 is a Monday.
func at(day string, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", day+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDailyScheduleWindow(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceDaily,
		StartTime:  "09:00:00",
		EndTime:    "17:00:00",
	}

	if !s.MatchesAt(at("2024-01-01", "09:00:00")) {
		t.Fatalf("window start should be inclusive")
	}
	if !s.MatchesAt(at("2024-01-01", "16:59:59")) {
		t.Fatalf("expected match just before end")
	}
	if s.MatchesAt(at("2024-01-01", "17:00:00")) {
		t.Fatalf("window end should be exclusive")
	}
	if s.MatchesAt(at("2024-01-01", "08:59:59")) {
		t.Fatalf("expected no match before start")
	}
}

func TestDailyScheduleValidityRange(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceDaily,
		StartTime:  "00:00:00",
		EndTime:    "23:59:59",
		ValidFrom:  strPtr("2024-01-10"),
		ValidUntil: strPtr("2024-01-20"),
	}

	if s.MatchesAt(at("2024-01-09", "12:00:00")) {
		t.Fatalf("expected no match before validFrom")
	}
	if !s.MatchesAt(at("2024-01-10", "12:00:00")) {
		t.Fatalf("validFrom should be inclusive")
	}
	if !s.MatchesAt(at("2024-01-20", "12:00:00")) {
		t.Fatalf("validUntil should be inclusive")
	}
	if s.MatchesAt(at("2024-01-21", "12:00:00")) {
		t.Fatalf("expected no match after validUntil")
	}
}

func TestWeeklyScheduleDays(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceWeekly,
		StartTime:  "08:00:00",
		EndTime:    "18:00:00",
		DaysOfWeek: IntSlice{1, 3, 5}, // Mon, Wed, Fri
	}

	if !s.MatchesAt(at("2024-01-01", "12:00:00")) { // Monday
		t.Fatalf("expected match on Monday")
	}
	if s.MatchesAt(at("2024-01-02", "12:00:00")) { // Tuesday
		t.Fatalf("expected no match on Tuesday")
	}
	if !s.MatchesAt(at("2024-01-03", "12:00:00")) { // Wednesday
		t.Fatalf("expected match on Wednesday")
	}
	if s.MatchesAt(at("2024-01-07", "12:00:00")) { // Sunday
		t.Fatalf("expected no match on Sunday")
	}
}

func TestOneTimeSchedule(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceOneTime,
		StartTime:  "10:00:00",
		EndTime:    "12:00:00",
		Date:       strPtr("2024-06-15"),
	}

	if !s.MatchesAt(at("2024-06-15", "11:00:00")) {
		t.Fatalf("expected match on the scheduled date")
	}
	if s.MatchesAt(at("2024-06-16", "11:00:00")) {
		t.Fatalf("expected no match the day after")
	}
	if s.MatchesAt(at("2024-06-15", "12:00:00")) {
		t.Fatalf("window end should be exclusive on the scheduled date")
	}
}

func TestMatchesAtAcceptsShortClockForm(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceDaily,
		StartTime:  "09:00",
		EndTime:    "17:00",
	}
	if !s.MatchesAt(at("2024-01-01", "09:00:00")) {
		t.Fatalf("HH:MM times should normalize to HH:MM:SS")
	}
	if s.MatchesAt(at("2024-01-01", "17:00:00")) {
		t.Fatalf("HH:MM end should stay exclusive")
	}
}

func TestScheduleExpiry(t *testing.T) {
	oneTime := &Schedule{
		Recurrence: RecurrenceOneTime,
		Date:       strPtr("2024-06-15"),
		Status:     ScheduleStatusActive,
	}
	if oneTime.IsExpiredAt(at("2024-06-15", "23:00:00")) {
		t.Fatalf("one_time schedule is not expired on its own date")
	}
	if !oneTime.IsExpiredAt(at("2024-06-16", "00:00:00")) {
		t.Fatalf("one_time schedule expires the day after its date")
	}
	if got := oneTime.EffectiveStatus(at("2024-06-16", "00:00:00")); got != ScheduleStatusExpired {
		t.Fatalf("effective status = %q, want expired", got)
	}

	bounded := &Schedule{
		Recurrence: RecurrenceDaily,
		ValidUntil: strPtr("2024-03-31"),
		Status:     ScheduleStatusInactive,
	}
	// Inactive stays inactive even past validUntil.
	if got := bounded.EffectiveStatus(at("2024-04-01", "00:00:00")); got != ScheduleStatusInactive {
		t.Fatalf("effective status = %q, want inactive", got)
	}

	unbounded := &Schedule{Recurrence: RecurrenceDaily, Status: ScheduleStatusActive}
	if unbounded.IsExpiredAt(at("2030-01-01", "00:00:00")) {
		t.Fatalf("unbounded daily schedule never expires")
	}
}

func TestScheduleValidate(t *testing.T) {
	valid := &Schedule{
		Name:       "morning loop",
		PlaylistID: "p1",
		Recurrence: RecurrenceDaily,
		StartTime:  "09:00",
		EndTime:    "17:00",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid daily schedule rejected: %v", err)
	}

	cases := []struct {
		name  string
		s     Schedule
		field string
	}{
		{
			name:  "end before start",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceDaily, StartTime: "17:00", EndTime: "09:00"},
			field: "endTime",
		},
		{
			name:  "equal start and end",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceDaily, StartTime: "09:00", EndTime: "09:00"},
			field: "endTime",
		},
		{
			name:  "weekly without days",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceWeekly, StartTime: "09:00", EndTime: "17:00"},
			field: "daysOfWeek",
		},
		{
			name:  "weekly with day out of range",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceWeekly, StartTime: "09:00", EndTime: "17:00", DaysOfWeek: IntSlice{7}},
			field: "daysOfWeek",
		},
		{
			name:  "one_time without date",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceOneTime, StartTime: "09:00", EndTime: "17:00"},
			field: "date",
		},
		{
			name:  "one_time with validity range",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceOneTime, StartTime: "09:00", EndTime: "17:00", Date: strPtr("2024-06-15"), ValidFrom: strPtr("2024-06-01")},
			field: "validFrom",
		},
		{
			name:  "daily with days of week",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceDaily, StartTime: "09:00", EndTime: "17:00", DaysOfWeek: IntSlice{1}},
			field: "daysOfWeek",
		},
		{
			name:  "unknown recurrence",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: "monthly", StartTime: "09:00", EndTime: "17:00"},
			field: "recurrence",
		},
		{
			name:  "bad clock",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceDaily, StartTime: "9am", EndTime: "17:00"},
			field: "startTime",
		},
		{
			name:  "inverted validity range",
			s:     Schedule{Name: "x", PlaylistID: "p", Recurrence: RecurrenceDaily, StartTime: "09:00", EndTime: "17:00", ValidFrom: strPtr("2024-06-30"), ValidUntil: strPtr("2024-06-01")},
			field: "validUntil",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if _, found := ve.Fields[tc.field]; !found {
				t.Fatalf("expected field %q in %v", tc.field, ve.Fields)
			}
		})
	}
}

func TestSelectWinnerPriority(t *testing.T) {
	low := &Schedule{ID: "a", Priority: 1, CreatedAt: at("2024-01-01", "00:00:00")}
	high := &Schedule{ID: "b", Priority: 5, CreatedAt: at("2024-01-01", "00:00:00")}

	if got := SelectWinner([]*Schedule{low, high}); got != high {
		t.Fatalf("winner = %s, want higher priority", got.ID)
	}
	if got := SelectWinner([]*Schedule{high, low}); got != high {
		t.Fatalf("winner should not depend on input order")
	}
}

func TestSelectWinnerChannelSpecificityBeatsPlatform(t *testing.T) {
	ch := "c1"
	platform := &Schedule{ID: "a", Priority: 3, CreatedAt: at("2024-01-02", "00:00:00")}
	specific := &Schedule{ID: "b", Priority: 3, ChannelID: &ch, CreatedAt: at("2024-01-01", "00:00:00")}

	if got := SelectWinner([]*Schedule{platform, specific}); got != specific {
		t.Fatalf("channel-specific schedule should beat platform-default at equal priority")
	}
}

func TestSelectWinnerDeterministicTieBreak(t *testing.T) {
	older := &Schedule{ID: "a", Priority: 3, CreatedAt: at("2024-01-01", "00:00:00")}
	newer := &Schedule{ID: "b", Priority: 3, CreatedAt: at("2024-02-01", "00:00:00")}

	if got := SelectWinner([]*Schedule{older, newer}); got != newer {
		t.Fatalf("newer schedule should win the tie")
	}

	twinA := &Schedule{ID: "a", Priority: 3, CreatedAt: at("2024-01-01", "00:00:00")}
	twinB := &Schedule{ID: "b", Priority: 3, CreatedAt: at("2024-01-01", "00:00:00")}
	first := SelectWinner([]*Schedule{twinA, twinB})
	second := SelectWinner([]*Schedule{twinB, twinA})
	if first != second {
		t.Fatalf("winner must be deterministic for identical timestamps")
	}
	if first.ID != "b" {
		t.Fatalf("higher id should break the final tie")
	}
}

func TestSelectWinnerEmpty(t *testing.T) {
	if got := SelectWinner(nil); got != nil {
		t.Fatalf("no candidates should yield nil")
	}
}

func TestExpandCalendar(t *testing.T) {
	weekly := &Schedule{
		ID:         "s1",
		Recurrence: RecurrenceWeekly,
		StartTime:  "08:00",
		EndTime:    "10:00",
		DaysOfWeek: IntSlice{1}, // Mondays
	}

	entries := weekly.ExpandCalendar("2024-01-01", "2024-01-14")
	if len(entries) != 2 {
		t.Fatalf("expected 2 Mondays, got %d", len(entries))
	}
	if entries[0].Date != "2024-01-01" || entries[1].Date != "2024-01-08" {
		t.Fatalf("unexpected dates: %s, %s", entries[0].Date, entries[1].Date)
	}
	if entries[0].StartTime != "08:00:00" {
		t.Fatalf("calendar times should be normalized, got %s", entries[0].StartTime)
	}

	oneTime := &Schedule{
		ID:         "s2",
		Recurrence: RecurrenceOneTime,
		StartTime:  "08:00",
		EndTime:    "10:00",
		Date:       strPtr("2024-01-05"),
	}
	entries = oneTime.ExpandCalendar("2024-01-01", "2024-01-31")
	if len(entries) != 1 || entries[0].Date != "2024-01-05" {
		t.Fatalf("one_time expansion wrong: %+v", entries)
	}
	if entries = oneTime.ExpandCalendar("2024-02-01", "2024-02-28"); len(entries) != 0 {
		t.Fatalf("expected no entries outside the range")
	}
}
