package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/getahuddle/huddle/internal/availability"
	"github.com/getahuddle/huddle/internal/llm"
	"github.com/getahuddle/huddle/internal/slots"
	"github.com/getahuddle/huddle/pkg/models"
)

// widenAlternatives mirrors the slot generator's date widening: when the
// requested range holds nothing, the end extends to at least seven days
// past the original start before the alternatives search gives up.
const widenAlternatives = 7 * 24 * time.Hour

// generateAlternatives produces the alternatives-path message: up to
// Policy.MaxAlternatives times the parties could meet instead. Only the
// requested date range is honored (widened once if empty); the hour filter
// and explicit instant are deliberately dropped since they are what failed.
// No FinalEvent is produced on this path.
func (s *Scheduler) generateAlternatives(ctx context.Context, turns []models.ConversationTurn, pair availability.Pair, tmpl *models.EventTemplate) (string, error) {
	constraints := slots.Constraints{
		DurationMinutes: tmpl.DurationMinutes,
		Buffer:          tmpl.TravelBuffer,
		Dates:           tmpl.Dates,
	}
	in := slots.Input{FreeA: pair.FreeA(), FreeB: pair.FreeB(), Horizon: pair.Horizon}

	candidates := slots.Enumerate(in, constraints)
	if len(candidates) == 0 && tmpl.Dates != nil {
		widened := *tmpl.Dates
		if min := widened.Start.Add(widenAlternatives); widened.End.Before(min) {
			widened.End = min
		}
		wc := constraints
		wc.Dates = &widened
		candidates = slots.Enumerate(in, wc)
	}
	if len(candidates) == 0 {
		return "", ErrNoSlotCandidates
	}

	picks := s.pickAlternatives(tmpl, candidates)
	labels := make([]string, len(picks))
	for i, slot := range picks {
		labels[i] = slotLabel(tmpl, slot)
	}

	// The model only orders and phrases options from this fixed list; it
	// can never introduce a time that is not in the whitelist.
	message, ok := s.phraseAlternatives(ctx, turns, tmpl, labels)
	if !ok {
		message = fallbackAlternativesMessage(labels)
	}
	return message, nil
}

// pickAlternatives selects which candidates to offer: distinct calendar
// days when the policy asks for it, with leisure templates biased toward
// evenings and weekends.
func (s *Scheduler) pickAlternatives(tmpl *models.EventTemplate, candidates []models.TimeSlot) []models.TimeSlot {
	ranked := make([]models.TimeSlot, len(candidates))
	copy(ranked, candidates)

	if tmpl.IsLeisure() {
		sort.SliceStable(ranked, func(i, j int) bool {
			pi, pj := s.leisureFriendly(tmpl, ranked[i]), s.leisureFriendly(tmpl, ranked[j])
			if pi != pj {
				return pi
			}
			return ranked[i].Start.Before(ranked[j].Start)
		})
	}

	pol := s.Policy()
	max := pol.MaxAlternatives
	var picks []models.TimeSlot
	seenDays := map[string]bool{}
	for _, slot := range ranked {
		day := coreOf(tmpl, slot).Start.Format("2006-01-02")
		if pol.PreferDistinctDays && seenDays[day] {
			continue
		}
		seenDays[day] = true
		picks = append(picks, slot)
		if len(picks) == max {
			return picks
		}
	}
	// Not enough distinct days; fill from the remainder in order.
	for _, slot := range ranked {
		if len(picks) == max {
			break
		}
		if !containsSlot(picks, slot) {
			picks = append(picks, slot)
		}
	}
	return picks
}

// leisureFriendly reports whether a slot suits a leisure event: a weekend
// day, or a weekday evening past the configured hour.
func (s *Scheduler) leisureFriendly(tmpl *models.EventTemplate, slot models.TimeSlot) bool {
	core := coreOf(tmpl, slot)
	switch core.Start.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return core.Start.Hour() >= s.Policy().LeisureEveningStartHour
	}
}

// phraseAlternatives asks the model to order and present the whitelisted
// labels. Any failure falls back to a deterministic message; this call is
// presentation only and never fatal.
func (s *Scheduler) phraseAlternatives(ctx context.Context, turns []models.ConversationTurn, tmpl *models.EventTemplate, labels []string) (string, bool) {
	resp, err := s.llm.Invoke(ctx, llm.Request{
		System: alternativesSystem(tmpl, labels, s.Policy().MaxAlternatives),
		Turns:  turns,
		Tool:   llm.ChooseAlternativesTool(),
		Effort: llm.EffortStandard,
	})
	if err != nil {
		s.logger.Log("alternatives call failed, using fallback message: %v", err)
		return "", false
	}
	result, err := llm.DecodeToolResult(llm.ToolChooseAlternatives, resp.ToolInput)
	if err != nil {
		s.logger.Log("alternatives decode failed, using fallback message: %v", err)
		return "", false
	}
	pick := result.(llm.AlternativePick)
	for _, idx := range pick.Indexes {
		if idx < 0 || idx >= len(labels) {
			s.logger.Log("alternatives pick index %d out of range, using fallback message", idx)
			return "", false
		}
	}
	if pick.Message == "" {
		return "", false
	}
	return pick.Message, true
}

// fallbackAlternativesMessage renders the picks without model help.
func fallbackAlternativesMessage(labels []string) string {
	var b strings.Builder
	b.WriteString("That time doesn't work for both of you. Here's what would:\n")
	for i, label := range labels {
		fmt.Fprintf(&b, "%d. %s\n", i+1, label)
	}
	return strings.TrimRight(b.String(), "\n")
}

func containsSlot(list []models.TimeSlot, s models.TimeSlot) bool {
	for _, x := range list {
		if x.Start.Equal(s.Start) && x.End.Equal(s.End) {
			return true
		}
	}
	return false
}
