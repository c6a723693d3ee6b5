package models

import "time"

// CalendarLinks holds add-to-calendar URLs for a finalized event.
type CalendarLinks struct {
	// Google is a Google Calendar event-template URL.
	Google string `json:"google,omitempty"`
	// Outlook is an Outlook Live event-compose URL.
	Outlook string `json:"outlook,omitempty"`
	// ICS is a data URL carrying the iCalendar body.
	ICS string `json:"ics,omitempty"`
}

// FinalEvent is the terminal artifact of a successful scheduling run.
// StartTime/EndTime cover the event itself; the calendar block additionally
// includes the travel buffer and is what calendar adapters receive.
type FinalEvent struct {
	// StartTime is when the event itself begins, buffer excluded.
	StartTime time.Time `json:"start_time"`
	// EndTime is when the event itself ends, buffer excluded.
	EndTime time.Time `json:"end_time"`
	// Title is the event title.
	Title string `json:"title"`
	// Description is the event description, including the rationale.
	Description string `json:"description,omitempty"`
	// Location is the chosen venue's name and address, if any.
	Location string `json:"location,omitempty"`
	// VenueName is the chosen venue's name, if any.
	VenueName string `json:"venue_name,omitempty"`
	// CalendarURLs are add-to-calendar links for the participants.
	CalendarURLs CalendarLinks `json:"calendar_urls"`
	// TravelBuffer is the transit padding applied around the event.
	TravelBuffer TravelBuffer `json:"travel_buffer"`
	// CalendarBlockStart is StartTime shifted back by the before-buffer.
	CalendarBlockStart time.Time `json:"calendar_block_start"`
	// CalendarBlockEnd is EndTime shifted forward by the after-buffer.
	CalendarBlockEnd time.Time `json:"calendar_block_end"`
	// Rationale is the explanation for the chosen slot and venue.
	Rationale string `json:"rationale,omitempty"`
}

// ApplyTravelBuffer recomputes the calendar block from the event times
// and the configured buffer.
func (e *FinalEvent) ApplyTravelBuffer() {
	e.CalendarBlockStart = e.StartTime.Add(-time.Duration(e.TravelBuffer.BeforeMinutes) * time.Minute)
	e.CalendarBlockEnd = e.EndTime.Add(time.Duration(e.TravelBuffer.AfterMinutes) * time.Minute)
}

// CalendarBlock returns the buffer-inclusive slot external calendars see.
func (e *FinalEvent) CalendarBlock() TimeSlot {
	return TimeSlot{Start: e.CalendarBlockStart, End: e.CalendarBlockEnd}
}
