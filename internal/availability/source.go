// Package availability fetches both participants' free/busy data from
// calendar providers. Providers are external collaborators; this package
// only adapts them to one Source interface.
package availability

import (
	"context"
	"time"

	"github.com/getahuddle/huddle/internal/slots"
	"github.com/getahuddle/huddle/pkg/models"
)

// DefaultHorizonDays is how far ahead availability is fetched when the
// caller does not say otherwise.
const DefaultHorizonDays = 21

// Pair is both participants' busy intervals over a shared bounded horizon.
type Pair struct {
	// Horizon is the range the busy data covers.
	Horizon models.TimeSlot
	// BusyA and BusyB are each participant's busy intervals, unordered.
	BusyA []models.TimeSlot
	BusyB []models.TimeSlot
}

// FreeA returns participant A's free windows within the horizon.
func (p Pair) FreeA() []models.TimeSlot {
	return slots.FreeWindows(p.BusyA, p.Horizon)
}

// FreeB returns participant B's free windows within the horizon.
func (p Pair) FreeB() []models.TimeSlot {
	return slots.FreeWindows(p.BusyB, p.Horizon)
}

// Source answers free/busy queries for a participant pair.
type Source interface {
	FreeBusy(ctx context.Context, participantA, participantB string, calendarType models.CalendarType) (Pair, error)
}

// StaticSource serves fixed busy intervals, keyed by participant id. It
// backs demos and tests where no calendar provider is configured.
type StaticSource struct {
	// Busy maps participant id to busy intervals.
	Busy map[string][]models.TimeSlot
	// HorizonDays bounds the horizon; DefaultHorizonDays when zero.
	HorizonDays int
	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// FreeBusy returns the configured busy intervals for both participants.
func (s *StaticSource) FreeBusy(_ context.Context, participantA, participantB string, _ models.CalendarType) (Pair, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	days := s.HorizonDays
	if days <= 0 {
		days = DefaultHorizonDays
	}
	start := now().Truncate(time.Hour)
	return Pair{
		Horizon: models.TimeSlot{Start: start, End: start.AddDate(0, 0, days)},
		BusyA:   s.Busy[participantA],
		BusyB:   s.Busy[participantB],
	}, nil
}
