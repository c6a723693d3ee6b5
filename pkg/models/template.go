package models

import (
	"strings"
	"time"
)

// SchedulableDates bounds the date range the user is willing to meet in.
type SchedulableDates struct {
	// Start is the first acceptable day (inclusive).
	Start time.Time `json:"start"`
	// End is the last acceptable day (inclusive).
	End time.Time `json:"end"`
	// Description is the user's phrasing of the range (e.g. "next week").
	Description string `json:"description,omitempty"`
}

// HourWindow is a clock-time window within a day, in "15:04" form.
// A window whose Start equals its End denotes an explicit single instant.
type HourWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// IsInstant returns true if the window names a single point in time.
func (w HourWindow) IsInstant() bool {
	return w.Start != "" && w.Start == w.End
}

// SchedulableHours maps lowercase weekday names ("monday") to acceptable
// clock-time windows on that day. An empty map means any hour is fine.
type SchedulableHours map[string][]HourWindow

// ForDay returns the windows configured for the given weekday.
func (h SchedulableHours) ForDay(d time.Weekday) []HourWindow {
	if h == nil {
		return nil
	}
	return h[strings.ToLower(d.String())]
}

// Empty returns true if no day has any window.
func (h SchedulableHours) Empty() bool {
	for _, ws := range h {
		if len(ws) > 0 {
			return false
		}
	}
	return true
}

// TravelBuffer is extra time reserved around the event's core duration
// for getting to and from the venue.
type TravelBuffer struct {
	// BeforeMinutes is reserved ahead of the event start.
	BeforeMinutes int `json:"before"`
	// AfterMinutes is reserved after the event end.
	AfterMinutes int `json:"after"`
}

// IsZero returns true if no buffer is configured.
func (b TravelBuffer) IsZero() bool {
	return b.BeforeMinutes == 0 && b.AfterMinutes == 0
}

// Total returns the combined buffer duration.
func (b TravelBuffer) Total() time.Duration {
	return time.Duration(b.BeforeMinutes+b.AfterMinutes) * time.Minute
}

// EventTemplate is the partially specified event negotiated across turns.
// It stays partial until the finalizer commits to a slot and venue; edit
// operations mutate it in place.
type EventTemplate struct {
	// Intent is a short summary of what the parties want to do.
	Intent string `json:"intent"`
	// Title is the display title, normalized to title case.
	Title string `json:"title"`
	// DurationMinutes is the core event duration, excluding travel buffer.
	DurationMinutes int `json:"duration_minutes"`
	// EventType is the venue category ("restaurant", "cafe", "meeting", ...).
	EventType string `json:"event_type"`
	// CalendarType selects which calendars availability is read from.
	CalendarType CalendarType `json:"calendar_type"`
	// Dates bounds the acceptable date range, if the user gave one.
	Dates *SchedulableDates `json:"dates,omitempty"`
	// Hours restricts acceptable hours per weekday, if the user gave any.
	Hours SchedulableHours `json:"hours,omitempty"`
	// TravelBuffer is the transit padding around the event.
	TravelBuffer TravelBuffer `json:"travel_buffer"`
	// HasExplicitTimeRequest is set when the user named a single instant.
	HasExplicitTimeRequest bool `json:"has_explicit_time_request"`
	// ExplicitStart is the requested instant when HasExplicitTimeRequest.
	ExplicitStart *time.Time `json:"explicit_start,omitempty"`
	// VenueQuery is the user's venue hint ("sushi near the river").
	VenueQuery string `json:"venue_query,omitempty"`
}

// IsLeisure reports whether the template describes a personal leisure
// activity. Leisure templates bias toward evenings and weekends.
func (t *EventTemplate) IsLeisure() bool {
	if t.CalendarType != CalendarPersonal {
		return false
	}
	return t.EventType != "meeting"
}

// NeedsVenue reports whether venue search applies to this template.
func (t *EventTemplate) NeedsVenue() bool {
	return t.VenueQuery != "" || (t.EventType != "" && t.EventType != "meeting")
}

// Clone returns a deep copy of the template.
func (t *EventTemplate) Clone() *EventTemplate {
	if t == nil {
		return nil
	}
	out := *t
	if t.Dates != nil {
		d := *t.Dates
		out.Dates = &d
	}
	if t.ExplicitStart != nil {
		ts := *t.ExplicitStart
		out.ExplicitStart = &ts
	}
	if t.Hours != nil {
		out.Hours = make(SchedulableHours, len(t.Hours))
		for day, ws := range t.Hours {
			out.Hours[day] = append([]HourWindow(nil), ws...)
		}
	}
	return &out
}
