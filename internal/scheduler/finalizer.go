package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/getahuddle/huddle/internal/ics"
	"github.com/getahuddle/huddle/internal/llm"
	"github.com/getahuddle/huddle/pkg/models"
)

// finalize commits to one slot and venue. The model selects; the business
// rules afterwards are not up to it: the leisure correction may move the
// slot, the travel-buffer explanation is appended deterministically, and
// the event times always exclude the buffer while the calendar block
// includes it.
//
// forceSlotZero pins the selection to slot zero, used when an explicit
// instant was force-included despite a conflict.
func (s *Scheduler) finalize(ctx context.Context, turns []models.ConversationTurn, tmpl *models.EventTemplate, candidates []models.TimeSlot, venues []models.Place, forceSlotZero bool) (*models.FinalEvent, error) {
	resp, err := s.llm.Invoke(ctx, llm.Request{
		System: selectionSystem(tmpl, candidates, venues),
		Turns:  turns,
		Tool:   llm.SelectSlotAndVenueTool(),
		Effort: llm.EffortStandard,
	})
	if err != nil {
		return nil, fmt.Errorf("selection call: %w", err)
	}

	result, err := llm.DecodeToolResult(llm.ToolSelectSlotAndVenue, resp.ToolInput)
	if err != nil {
		return nil, fmt.Errorf("selection arguments: %w", err)
	}
	selection := result.(llm.SlotVenueSelection)
	if selection.SlotIndex >= len(candidates) {
		return nil, fmt.Errorf("selection slot index %d out of range (%d candidates)",
			selection.SlotIndex, len(candidates))
	}

	slotIdx := selection.SlotIndex
	if forceSlotZero {
		slotIdx = 0
	}
	slotIdx = s.correctLeisureSlot(tmpl, candidates, slotIdx)

	venueIdx := selection.VenueIndex
	if venueIdx >= len(venues) {
		s.logger.Log("selection venue index %d out of range (%d venues), dropping venue", venueIdx, len(venues))
		venueIdx = -1
	}

	core := coreOf(tmpl, candidates[slotIdx])
	event := &models.FinalEvent{
		StartTime:    core.Start,
		EndTime:      core.End,
		Title:        tmpl.Title,
		TravelBuffer: tmpl.TravelBuffer,
		Rationale:    joinRationale(selection.Rationale, bufferExplanation(tmpl.TravelBuffer)),
	}
	if venueIdx >= 0 {
		venue := venues[venueIdx]
		event.VenueName = venue.Name
		event.Location = strings.TrimSuffix(venue.Name+", "+venue.Address, ", ")
	}
	event.Description = event.Rationale
	event.ApplyTravelBuffer()

	links, err := ics.Links(event)
	if err != nil {
		// Links are a convenience; the event itself is still good.
		s.logger.Log("calendar link generation failed: %v", err)
	} else {
		event.CalendarURLs = links
	}
	return event, nil
}

func joinRationale(rationale, bufferNote string) string {
	rationale = strings.TrimSpace(rationale)
	if bufferNote == "" {
		return rationale
	}
	if rationale == "" {
		return bufferNote
	}
	return rationale + " " + bufferNote
}
