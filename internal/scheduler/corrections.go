package scheduler

import (
	"fmt"
	"time"

	"github.com/getahuddle/huddle/pkg/models"
)

// Post-selection business rules. These run after the model has chosen and
// are enforced programmatically; the model cannot opt out of them.

// correctLeisureSlot moves a personal leisure event off weekday midday.
// When the chosen slot's core falls inside working hours on a weekday and
// a weekend or evening candidate exists, the first such candidate wins.
// With no better candidate the original choice stands.
func (s *Scheduler) correctLeisureSlot(tmpl *models.EventTemplate, candidates []models.TimeSlot, chosen int) int {
	if !tmpl.IsLeisure() || tmpl.HasExplicitTimeRequest {
		return chosen
	}
	if !s.weekdayMidday(tmpl, candidates[chosen]) {
		return chosen
	}
	for i, slot := range candidates {
		if s.leisureFriendly(tmpl, slot) {
			return i
		}
	}
	return chosen
}

// weekdayMidday reports whether the slot's core starts inside working
// hours on a weekday.
func (s *Scheduler) weekdayMidday(tmpl *models.EventTemplate, slot models.TimeSlot) bool {
	core := coreOf(tmpl, slot)
	switch core.Start.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := core.Start.Hour()
	pol := s.Policy()
	return hour >= pol.WorkdayStartHour && hour < pol.WorkdayEndHour
}

// bufferExplanation renders the deterministic travel-buffer sentence
// appended after the model's rationale. Returns "" for a zero buffer.
func bufferExplanation(b models.TravelBuffer) string {
	switch {
	case b.IsZero():
		return ""
	case b.BeforeMinutes > 0 && b.AfterMinutes > 0:
		return fmt.Sprintf("Your calendar will be blocked %d minutes before and %d minutes after for travel.",
			b.BeforeMinutes, b.AfterMinutes)
	case b.BeforeMinutes > 0:
		return fmt.Sprintf("Your calendar will be blocked %d minutes before for travel.", b.BeforeMinutes)
	default:
		return fmt.Sprintf("Your calendar will be blocked %d minutes after for travel.", b.AfterMinutes)
	}
}
