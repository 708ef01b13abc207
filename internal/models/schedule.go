// ===============================
// internal/models/schedule.go - Schedule model and recurrence matching
// ===============================

package models

import (
	"fmt"
	"time"
)

// Recurrence types
const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceOneTime = "one_time"
)

// Schedule statuses. Expired is never stored; it is computed from
// validUntil/date at read time.
const (
	ScheduleStatusActive   = "active"
	ScheduleStatusInactive = "inactive"
	ScheduleStatusExpired  = "expired"
)

// Schedule binds a playlist to a time window on a channel slot. ChannelID
// nil targets the platform default slot. Times are wall-clock HH:MM:SS in
// the tenant's local day; dates are YYYY-MM-DD.
type Schedule struct {
	ID             string     `json:"id" db:"id"`
	ServiceKey     string     `json:"serviceKey" db:"service_key"`
	OrganizationID *string    `json:"organizationId" db:"organization_id"`
	ChannelID      *string    `json:"channelId" db:"channel_id"`
	PlaylistID     string     `json:"playlistId" db:"playlist_id"`
	Name           string     `json:"name" db:"name"`
	Recurrence     string     `json:"recurrence" db:"recurrence"`
	StartTime      string     `json:"startTime" db:"start_time"` // HH:MM:SS
	EndTime        string     `json:"endTime" db:"end_time"`     // HH:MM:SS
	DaysOfWeek     IntSlice   `json:"daysOfWeek" db:"days_of_week"`
	Date           *string    `json:"date" db:"date"`             // one_time only, YYYY-MM-DD
	ValidFrom      *string    `json:"validFrom" db:"valid_from"`  // daily/weekly, inclusive
	ValidUntil     *string    `json:"validUntil" db:"valid_until"`
	Priority       int        `json:"priority" db:"priority"`
	Status         string     `json:"status" db:"status"`
	CreatedBy      string     `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`

	// Joined playlist name for list views.
	PlaylistName string `json:"playlistName,omitempty" db:"playlist_name"`
}

// Target reports which channel slot the schedule addresses.
func (s *Schedule) Target() ChannelTarget {
	if s.ChannelID == nil {
		return PlatformDefaultChannel()
	}
	return SpecificChannel(*s.ChannelID)
}

// timeOfDay formats t as HH:MM:SS so window checks reduce to lexical
// comparison, matching how the columns are stored.
func timeOfDay(t time.Time) string {
	return t.Format("15:04:05")
}

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// normalizeClock pads HH:MM to HH:MM:SS so stored and request forms compare
// consistently.
func normalizeClock(v string) string {
	if len(v) == 5 {
		return v + ":00"
	}
	return v
}

// MatchesAt reports whether the schedule's recurrence covers the instant t.
// The daily window is [startTime, endTime): a schedule ending at 17:00:00 is
// no longer active at exactly 17:00:00. Validity dates are inclusive on both
// ends. Status is not consulted here; callers prefilter on it.
func (s *Schedule) MatchesAt(t time.Time) bool {
	clock := timeOfDay(t)
	if clock < normalizeClock(s.StartTime) || clock >= normalizeClock(s.EndTime) {
		return false
	}

	day := dateOf(t)
	switch s.Recurrence {
	case RecurrenceOneTime:
		return s.Date != nil && *s.Date == day
	case RecurrenceWeekly:
		if !s.DaysOfWeek.Contains(int(t.Weekday())) {
			return false
		}
		return s.inValidityRange(day)
	case RecurrenceDaily:
		return s.inValidityRange(day)
	default:
		return false
	}
}

func (s *Schedule) inValidityRange(day string) bool {
	if s.ValidFrom != nil && day < *s.ValidFrom {
		return false
	}
	if s.ValidUntil != nil && day > *s.ValidUntil {
		return false
	}
	return true
}

// IsExpiredAt reports whether the schedule can never match again at or after
// t: a one_time schedule whose date has passed, or a bounded recurring
// schedule past validUntil.
func (s *Schedule) IsExpiredAt(t time.Time) bool {
	day := dateOf(t)
	switch s.Recurrence {
	case RecurrenceOneTime:
		return s.Date != nil && *s.Date < day
	default:
		return s.ValidUntil != nil && *s.ValidUntil < day
	}
}

// EffectiveStatus overlays the computed expired state on the stored status.
func (s *Schedule) EffectiveStatus(t time.Time) string {
	if s.Status == ScheduleStatusActive && s.IsExpiredAt(t) {
		return ScheduleStatusExpired
	}
	return s.Status
}

func validClock(v string) bool {
	if len(v) != 5 && len(v) != 8 {
		return false
	}
	if v[2] != ':' || (len(v) == 8 && v[5] != ':') {
		return false
	}
	var h, m, sec int
	var err error
	if len(v) == 8 {
		_, err = fmt.Sscanf(v, "%02d:%02d:%02d", &h, &m, &sec)
	} else {
		_, err = fmt.Sscanf(v, "%02d:%02d", &h, &m)
	}
	return err == nil && h < 24 && m < 60 && sec < 60
}

func validDate(v string) bool {
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}

// Validate enforces the per-recurrence shape. Returns a ValidationError
// listing every problem, nil when clean.
func (s *Schedule) Validate() error {
	fields := map[string]string{}

	if s.Name == "" {
		fields["name"] = "name is required"
	}
	if s.PlaylistID == "" {
		fields["playlistId"] = "playlistId is required"
	}

	if !validClock(s.StartTime) {
		fields["startTime"] = "must be HH:MM or HH:MM:SS"
	}
	if !validClock(s.EndTime) {
		fields["endTime"] = "must be HH:MM or HH:MM:SS"
	}
	if fields["startTime"] == "" && fields["endTime"] == "" &&
		normalizeClock(s.StartTime) >= normalizeClock(s.EndTime) {
		fields["endTime"] = "endTime must be after startTime within the same day"
	}

	switch s.Recurrence {
	case RecurrenceDaily:
		if len(s.DaysOfWeek) > 0 {
			fields["daysOfWeek"] = "not allowed for daily recurrence"
		}
		if s.Date != nil {
			fields["date"] = "not allowed for daily recurrence"
		}
	case RecurrenceWeekly:
		if len(s.DaysOfWeek) == 0 {
			fields["daysOfWeek"] = "at least one day is required for weekly recurrence"
		}
		for _, d := range s.DaysOfWeek {
			if d < 0 || d > 6 {
				fields["daysOfWeek"] = "days must be 0 (Sunday) through 6 (Saturday)"
				break
			}
		}
		if s.Date != nil {
			fields["date"] = "not allowed for weekly recurrence"
		}
	case RecurrenceOneTime:
		if s.Date == nil || *s.Date == "" {
			fields["date"] = "date is required for one_time recurrence"
		} else if !validDate(*s.Date) {
			fields["date"] = "must be YYYY-MM-DD"
		}
		if s.ValidFrom != nil || s.ValidUntil != nil {
			fields["validFrom"] = "validity range is not allowed for one_time recurrence"
		}
	default:
		fields["recurrence"] = "must be daily, weekly or one_time"
	}

	if s.ValidFrom != nil && !validDate(*s.ValidFrom) {
		fields["validFrom"] = "must be YYYY-MM-DD"
	}
	if s.ValidUntil != nil && !validDate(*s.ValidUntil) {
		fields["validUntil"] = "must be YYYY-MM-DD"
	}
	if s.ValidFrom != nil && s.ValidUntil != nil &&
		fields["validFrom"] == "" && fields["validUntil"] == "" &&
		*s.ValidUntil < *s.ValidFrom {
		fields["validUntil"] = "validUntil cannot precede validFrom"
	}

	if len(fields) > 0 {
		return NewValidation(fields)
	}
	return nil
}

// SelectWinner picks the active schedule from candidates already known to
// match the instant. Precedence: higher priority, then channel-specific over
// platform-default, then newer createdAt, then higher id. Deterministic for
// any input order.
func SelectWinner(candidates []*Schedule) *Schedule {
	var best *Schedule
	for _, c := range candidates {
		if best == nil || beats(c, best) {
			best = c
		}
	}
	return best
}

func beats(a, b *Schedule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	aSpecific := a.ChannelID != nil
	bSpecific := b.ChannelID != nil
	if aSpecific != bSpecific {
		return aSpecific
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

type CreateScheduleRequest struct {
	Name       string  `json:"name" binding:"required"`
	ChannelID  *string `json:"channelId"`
	PlaylistID string  `json:"playlistId" binding:"required"`
	Recurrence string  `json:"recurrence" binding:"required"`
	StartTime  string  `json:"startTime" binding:"required"`
	EndTime    string  `json:"endTime" binding:"required"`
	DaysOfWeek []int   `json:"daysOfWeek"`
	Date       *string `json:"date"`
	ValidFrom  *string `json:"validFrom"`
	ValidUntil *string `json:"validUntil"`
	Priority   *int    `json:"priority"`
	Status     string  `json:"status"`
}

type UpdateScheduleRequest struct {
	Name       *string `json:"name"`
	ChannelID  *string `json:"channelId"`
	PlaylistID *string `json:"playlistId"`
	Recurrence *string `json:"recurrence"`
	StartTime  *string `json:"startTime"`
	EndTime    *string `json:"endTime"`
	DaysOfWeek []int   `json:"daysOfWeek"`
	Date       *string `json:"date"`
	ValidFrom  *string `json:"validFrom"`
	ValidUntil *string `json:"validUntil"`
	Priority   *int    `json:"priority"`
	Status     *string `json:"status"`
}

type ScheduleListParams struct {
	Page
	ChannelID  string
	PlaylistID string
	Recurrence string
	Status     string
}

// CalendarEntry is one concrete occurrence in a timeline expansion.
type CalendarEntry struct {
	ScheduleID   string  `json:"scheduleId"`
	Name         string  `json:"name"`
	PlaylistID   string  `json:"playlistId"`
	PlaylistName string  `json:"playlistName,omitempty"`
	ChannelID    *string `json:"channelId"`
	Date         string  `json:"date"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Priority     int     `json:"priority"`
	Recurrence   string  `json:"recurrence"`
}

// ExpandCalendar lists each day in [startDate, endDate] on which the
// schedule would run, noon-sampled so the window check never interferes
// with the day check.
func (s *Schedule) ExpandCalendar(startDate, endDate string) []CalendarEntry {
	start, err1 := time.Parse("2006-01-02", startDate)
	end, err2 := time.Parse("2006-01-02", endDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}

	var out []CalendarEntry
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := dateOf(d)
		ok := false
		switch s.Recurrence {
		case RecurrenceOneTime:
			ok = s.Date != nil && *s.Date == day
		case RecurrenceWeekly:
			ok = s.DaysOfWeek.Contains(int(d.Weekday())) && s.inValidityRange(day)
		case RecurrenceDaily:
			ok = s.inValidityRange(day)
		}
		if ok {
			out = append(out, CalendarEntry{
				ScheduleID:   s.ID,
				Name:         s.Name,
				PlaylistID:   s.PlaylistID,
				PlaylistName: s.PlaylistName,
				ChannelID:    s.ChannelID,
				Date:         day,
				StartTime:    normalizeClock(s.StartTime),
				EndTime:      normalizeClock(s.EndTime),
				Priority:     s.Priority,
				Recurrence:   s.Recurrence,
			})
		}
	}
	return out
}
