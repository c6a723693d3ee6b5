package models

import "time"

// TimeSlot is a candidate interval during which an event could be scheduled.
// Slots are computed on demand and never persisted on their own.
type TimeSlot struct {
	// Start is the inclusive start instant of the slot.
	Start time.Time `json:"start"`
	// End is the exclusive end instant of the slot.
	End time.Time `json:"end"`
}

// Duration returns the span of the slot.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps returns true if the two slots share any time.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Contains returns true if o lies entirely within s.
func (s TimeSlot) Contains(o TimeSlot) bool {
	return !o.Start.Before(s.Start) && !o.End.After(s.End)
}

// IsZero returns true if the slot has no start and no end.
func (s TimeSlot) IsZero() bool {
	return s.Start.IsZero() && s.End.IsZero()
}

// SameDay returns true if both slots start on the same calendar day
// in the start time's location.
func (s TimeSlot) SameDay(o TimeSlot) bool {
	y1, m1, d1 := s.Start.Date()
	y2, m2, d2 := o.Start.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
