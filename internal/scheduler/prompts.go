package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/getahuddle/huddle/pkg/models"
)

// Prompt construction is deliberately deterministic: every prompt renders
// from typed structs with no model-dependent content, so tests can assert
// on exact stage inputs while mocking only the completion call.

const slotTimeLayout = "Monday, January 2 at 3:04 PM"

func routingSystem(now time.Time) string {
	var b strings.Builder
	b.WriteString("You route one turn of a two-party scheduling conversation.\n")
	fmt.Fprintf(&b, "Current time: %s.\n", now.Format(time.RFC1123))
	b.WriteString("Call route_turn with a one-sentence acknowledgment and the branch that fits the latest user turn. ")
	b.WriteString("Use handle_event for any request to create, change, or check a concrete event; ")
	b.WriteString("suggest_activities when the user wants ideas; show_more_events to list further options; ")
	b.WriteString("confirm_scheduling for confirmations or anything else.")
	return b.String()
}

func buildTemplateSystem(now time.Time) string {
	var b strings.Builder
	b.WriteString("You turn a scheduling conversation into a structured event template.\n")
	fmt.Fprintf(&b, "Current time: %s. Resolve relative dates against it.\n", now.Format(time.RFC1123))
	b.WriteString("Call build_event_template exactly once. Dates are YYYY-MM-DD, hour windows are 24h HH:MM, ")
	b.WriteString("and explicit_time is RFC3339 when the user named one specific moment. ")
	b.WriteString("Only include constraints the user actually stated.")
	return b.String()
}

func editTemplateSystem(now time.Time, current *models.EventTemplate) string {
	var b strings.Builder
	b.WriteString("You apply the user's latest change to an existing event template.\n")
	fmt.Fprintf(&b, "Current time: %s.\n", now.Format(time.RFC1123))
	b.WriteString("The current template is:\n")
	b.WriteString(renderTemplate(current))
	b.WriteString("\nCall edit_event_template with only the fields the user changed. ")
	b.WriteString("Use relative_shift for vague earlier/later requests without concrete hours.")
	return b.String()
}

func selectionSystem(tmpl *models.EventTemplate, candidates []models.TimeSlot, venues []models.Place) string {
	var b strings.Builder
	b.WriteString("You pick the final time and venue for this event.\n")
	b.WriteString("The event template is:\n")
	b.WriteString(renderTemplate(tmpl))
	b.WriteString("\nCandidate times (pick one slot_index):\n")
	b.WriteString(renderSlots(tmpl, candidates))
	if len(venues) > 0 {
		b.WriteString("\nCandidate venues (pick one venue_index, or -1 for none):\n")
		b.WriteString(renderVenues(venues))
	} else {
		b.WriteString("\nNo venues apply; use venue_index -1.\n")
	}
	b.WriteString("\nCall select_slot_and_venue exactly once with a short rationale for the user.")
	return b.String()
}

func alternativesSystem(tmpl *models.EventTemplate, labels []string, max int) string {
	var b strings.Builder
	b.WriteString("The requested time does not work. Offer alternatives.\n")
	b.WriteString("The event template is:\n")
	b.WriteString(renderTemplate(tmpl))
	fmt.Fprintf(&b, "\nChoose at most %d of these exact options by index; never invent other times:\n", max)
	for i, label := range labels {
		fmt.Fprintf(&b, "  [%d] %s\n", i, label)
	}
	b.WriteString("\nCall choose_alternatives with the chosen indexes and a friendly message presenting them.")
	return b.String()
}

// renderTemplate serializes a template for prompt context. The order is
// fixed so identical templates always render identically.
func renderTemplate(t *models.EventTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  intent: %s\n", t.Intent)
	fmt.Fprintf(&b, "  title: %s\n", t.Title)
	fmt.Fprintf(&b, "  duration: %d minutes\n", t.DurationMinutes)
	fmt.Fprintf(&b, "  event type: %s\n", t.EventType)
	fmt.Fprintf(&b, "  calendar: %s\n", t.CalendarType)
	if t.Dates != nil {
		fmt.Fprintf(&b, "  dates: %s to %s (%s)\n",
			t.Dates.Start.Format("2006-01-02"), t.Dates.End.Format("2006-01-02"), t.Dates.Description)
	}
	if !t.Hours.Empty() {
		b.WriteString("  hours:\n")
		for _, day := range weekdayOrder {
			windows := t.Hours[day]
			if len(windows) == 0 {
				continue
			}
			parts := make([]string, len(windows))
			for i, w := range windows {
				parts[i] = w.Start + "-" + w.End
			}
			fmt.Fprintf(&b, "    %s: %s\n", day, strings.Join(parts, ", "))
		}
	}
	if !t.TravelBuffer.IsZero() {
		fmt.Fprintf(&b, "  travel buffer: %d min before, %d min after\n",
			t.TravelBuffer.BeforeMinutes, t.TravelBuffer.AfterMinutes)
	}
	if t.ExplicitStart != nil {
		fmt.Fprintf(&b, "  explicit time: %s\n", t.ExplicitStart.Format(time.RFC1123))
	}
	if t.VenueQuery != "" {
		fmt.Fprintf(&b, "  venue: %s\n", t.VenueQuery)
	}
	return b.String()
}

// weekdayOrder fixes the render order of schedulable hours.
var weekdayOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// renderSlots lists candidate slots by their event-core times; the buffer
// is an implementation detail the model never reasons about.
func renderSlots(tmpl *models.EventTemplate, candidates []models.TimeSlot) string {
	var b strings.Builder
	for i, slot := range candidates {
		core := coreOf(tmpl, slot)
		fmt.Fprintf(&b, "  [%d] %s to %s\n", i,
			core.Start.Format(slotTimeLayout), core.End.Format("3:04 PM"))
	}
	return b.String()
}

func renderVenues(venues []models.Place) string {
	var b strings.Builder
	for i, v := range venues {
		fmt.Fprintf(&b, "  [%d] %s, %s", i, v.Name, v.Address)
		if v.Rating > 0 {
			fmt.Fprintf(&b, " (rated %.1f)", v.Rating)
		}
		if v.DistanceFromMidpointKm > 0 {
			fmt.Fprintf(&b, ", %.1f km from midpoint", v.DistanceFromMidpointKm)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// slotLabel is the user-facing label for an alternative time.
func slotLabel(tmpl *models.EventTemplate, slot models.TimeSlot) string {
	core := coreOf(tmpl, slot)
	return core.Start.Format(slotTimeLayout)
}

// coreOf strips the travel buffer off a candidate slot, recovering the
// event's own start and end.
func coreOf(tmpl *models.EventTemplate, slot models.TimeSlot) models.TimeSlot {
	start := slot.Start.Add(time.Duration(tmpl.TravelBuffer.BeforeMinutes) * time.Minute)
	return models.TimeSlot{
		Start: start,
		End:   start.Add(time.Duration(tmpl.DurationMinutes) * time.Minute),
	}
}
