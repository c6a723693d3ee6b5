package slots

import (
	"time"

	"github.com/getahuddle/huddle/pkg/models"
)

// gridStep is the spacing between candidate slot starts.
const gridStep = 30 * time.Minute

// widenBy is the minimum distance from the original range start that the
// widened range end must reach when the date range is relaxed.
const widenBy = 7 * 24 * time.Hour

// Input carries both participants' availability over a bounded horizon.
type Input struct {
	// FreeA and FreeB are each participant's free windows, ascending.
	FreeA []models.TimeSlot
	FreeB []models.TimeSlot
	// Horizon is the full range availability was fetched over.
	Horizon models.TimeSlot
}

// Constraints narrows which candidate slots are acceptable.
type Constraints struct {
	// DurationMinutes is the core event duration.
	DurationMinutes int
	// Buffer is travel padding included in every returned slot.
	Buffer models.TravelBuffer
	// Hours optionally restricts acceptable clock times per weekday.
	Hours models.SchedulableHours
	// Dates optionally bounds the acceptable date range.
	Dates *models.SchedulableDates
	// ExplicitStart, when set, requests one exact event start instant.
	ExplicitStart *time.Time
}

// totalSpan is the full slot length: core duration plus both buffers.
func (c Constraints) totalSpan() time.Duration {
	return time.Duration(c.DurationMinutes)*time.Minute + c.Buffer.Total()
}

// Flags reports what the generator had to concede.
type Flags struct {
	// HasNoCommonTime is set when no slot exists even after every
	// relaxation step.
	HasNoCommonTime bool
	// HasExplicitTimeConflict is set when an explicit instant request
	// collides with existing events but is force-included anyway.
	HasExplicitTimeConflict bool
}

// Generate computes the ordered candidate slots for both parties.
//
// When no candidate survives the caller's constraints, relaxation steps are
// tried strictly in order, each only if the prior produced nothing:
// drop the hour-of-day filter, widen the date range end to at least seven
// days past its original start, then drop the date range entirely.
func Generate(in Input, c Constraints) ([]models.TimeSlot, Flags) {
	common := Intersect(in.FreeA, in.FreeB)

	if c.ExplicitStart != nil {
		return generateExplicit(common, c)
	}

	hours := c.Hours
	if hours.Empty() {
		hours = nil
	}

	// Base attempt: hour filter and date range both applied.
	if got := enumerate(common, c, hours, c.Dates); len(got) > 0 {
		return got, Flags{}
	}

	// Relaxation 1: drop the hour filter, keep the date range.
	if hours != nil {
		if got := enumerate(common, c, nil, c.Dates); len(got) > 0 {
			return got, Flags{}
		}
	}

	// Relaxation 2: widen the date range end.
	if c.Dates != nil {
		widened := *c.Dates
		if min := widened.Start.Add(widenBy); widened.End.Before(min) {
			widened.End = min
		}
		if got := enumerate(common, c, nil, &widened); len(got) > 0 {
			return got, Flags{}
		}
	}

	// Relaxation 3: drop the date range, search the full horizon.
	if got := enumerate(common, c, nil, nil); len(got) > 0 {
		return got, Flags{}
	}

	return nil, Flags{HasNoCommonTime: true}
}

// Enumerate computes candidate slots with the constraints applied as
// given and no relaxation. The alternatives path uses this to stay inside
// the requested date range.
func Enumerate(in Input, c Constraints) []models.TimeSlot {
	common := Intersect(in.FreeA, in.FreeB)
	hours := c.Hours
	if hours.Empty() {
		hours = nil
	}
	return enumerate(common, c, hours, c.Dates)
}

// generateExplicit synthesizes exactly one slot for a single-instant
// request. A conflicting request is still returned as slot zero so the
// caller can surface the conflict alongside alternatives.
func generateExplicit(common []models.TimeSlot, c Constraints) ([]models.TimeSlot, Flags) {
	start := c.ExplicitStart.Add(-time.Duration(c.Buffer.BeforeMinutes) * time.Minute)
	slot := models.TimeSlot{Start: start, End: start.Add(c.totalSpan())}

	for _, w := range common {
		if w.Contains(slot) {
			return []models.TimeSlot{slot}, Flags{}
		}
	}
	return []models.TimeSlot{slot}, Flags{
		HasNoCommonTime:         true,
		HasExplicitTimeConflict: true,
	}
}

// enumerate walks the common free windows and emits every grid-aligned slot
// that satisfies the given hour and date filters.
func enumerate(common []models.TimeSlot, c Constraints, hours models.SchedulableHours, dates *models.SchedulableDates) []models.TimeSlot {
	span := c.totalSpan()
	if span <= 0 {
		return nil
	}

	windows := common
	if dates != nil {
		bounds := models.TimeSlot{
			Start: dayStart(dates.Start),
			End:   dayStart(dates.End).Add(24 * time.Hour),
		}
		windows = clamp(common, bounds)
	}

	var out []models.TimeSlot
	for _, w := range windows {
		for start := gridAlign(w.Start, gridStep); !start.Add(span).After(w.End); start = start.Add(gridStep) {
			slot := models.TimeSlot{Start: start, End: start.Add(span)}
			if hours != nil && !coreWithinHours(slot, c, hours) {
				continue
			}
			out = append(out, slot)
		}
	}
	return out
}

// coreWithinHours checks that the event core, buffers excluded, fits an
// allowed clock window on its weekday.
func coreWithinHours(slot models.TimeSlot, c Constraints, hours models.SchedulableHours) bool {
	coreStart := slot.Start.Add(time.Duration(c.Buffer.BeforeMinutes) * time.Minute)
	coreEnd := coreStart.Add(time.Duration(c.DurationMinutes) * time.Minute)

	windows := hours.ForDay(coreStart.Weekday())
	if len(windows) == 0 {
		return false
	}
	for _, w := range windows {
		ws, ok1 := clockOn(coreStart, w.Start)
		we, ok2 := clockOn(coreStart, w.End)
		if !ok1 || !ok2 {
			continue
		}
		if w.IsInstant() {
			if coreStart.Equal(ws) {
				return true
			}
			continue
		}
		if !coreStart.Before(ws) && !coreEnd.After(we) {
			return true
		}
	}
	return false
}

// clockOn places a "15:04" clock value on the calendar day of ref.
func clockOn(ref time.Time, clock string) (time.Time, bool) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := ref.Date()
	return time.Date(y, m, d, parsed.Hour(), parsed.Minute(), 0, 0, ref.Location()), true
}

// dayStart truncates t to midnight in its own location.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
