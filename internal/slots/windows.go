// Package slots computes candidate meeting times from participant
// availability. Generation is deterministic: identical inputs produce an
// identical, ascending slot list.
package slots

import (
	"sort"
	"time"

	"github.com/getahuddle/huddle/pkg/models"
)

// MergeBusy normalizes a busy list: sorted by start, overlapping and
// touching intervals coalesced.
func MergeBusy(busy []models.TimeSlot) []models.TimeSlot {
	if len(busy) == 0 {
		return nil
	}
	sorted := append([]models.TimeSlot(nil), busy...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	out := []models.TimeSlot{sorted[0]}
	for _, b := range sorted[1:] {
		last := &out[len(out)-1]
		if !b.Start.After(last.End) {
			if b.End.After(last.End) {
				last.End = b.End
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// FreeWindows complements a busy list over the given horizon, returning the
// intervals in which the participant is free.
func FreeWindows(busy []models.TimeSlot, horizon models.TimeSlot) []models.TimeSlot {
	merged := MergeBusy(busy)
	var free []models.TimeSlot
	cursor := horizon.Start
	for _, b := range merged {
		if !b.End.After(horizon.Start) || !b.Start.Before(horizon.End) {
			continue
		}
		start := b.Start
		if start.Before(horizon.Start) {
			start = horizon.Start
		}
		if cursor.Before(start) {
			free = append(free, models.TimeSlot{Start: cursor, End: start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(horizon.End) {
		free = append(free, models.TimeSlot{Start: cursor, End: horizon.End})
	}
	return free
}

// Intersect returns the windows common to both free lists. Inputs must be
// sorted and non-overlapping, which FreeWindows guarantees.
func Intersect(a, b []models.TimeSlot) []models.TimeSlot {
	var out []models.TimeSlot
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if start.Before(end) {
			out = append(out, models.TimeSlot{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// clamp restricts windows to the given bounds, dropping what falls outside.
func clamp(windows []models.TimeSlot, bounds models.TimeSlot) []models.TimeSlot {
	var out []models.TimeSlot
	for _, w := range windows {
		start, end := w.Start, w.End
		if start.Before(bounds.Start) {
			start = bounds.Start
		}
		if end.After(bounds.End) {
			end = bounds.End
		}
		if start.Before(end) {
			out = append(out, models.TimeSlot{Start: start, End: end})
		}
	}
	return out
}

// gridAlign rounds t up to the next grid boundary (half-hour marks).
func gridAlign(t time.Time, step time.Duration) time.Time {
	aligned := t.Truncate(step)
	if aligned.Before(t) {
		aligned = aligned.Add(step)
	}
	return aligned
}
