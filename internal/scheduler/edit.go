package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/getahuddle/huddle/internal/cache"
	"github.com/getahuddle/huddle/internal/llm"
	"github.com/getahuddle/huddle/pkg/models"
)

// editTemplate runs the edit mode of the template stage: the cached
// template for the pair is loaded, the model produces a structured diff,
// and the diff is applied in place. A missing cache entry is fatal; an
// edit is never silently treated as a fresh generate.
func (s *Scheduler) editTemplate(ctx context.Context, turns []models.ConversationTurn, pairKey string) (*models.EventTemplate, *models.CacheEntry, bool, error) {
	var entry models.CacheEntry
	found, err := cache.GetJSON(ctx, s.cache, pairKey, &entry)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load cached template: %w", err)
	}
	if !found || entry.Template == nil {
		return nil, nil, false, ErrNoCachedTemplate
	}

	resp, err := s.llm.Invoke(ctx, llm.Request{
		System: editTemplateSystem(s.now(), entry.Template),
		Turns:  turns,
		Tool:   llm.EditTemplateTool(),
		Effort: llm.EffortStandard,
	})
	if err != nil {
		return nil, nil, false, fmt.Errorf("edit call: %w", err)
	}

	result, err := llm.DecodeToolResult(llm.ToolEditTemplate, resp.ToolInput)
	if err != nil {
		return nil, nil, false, fmt.Errorf("edit arguments: %w", err)
	}

	tmpl := entry.Template.Clone()
	venuesInvalidated := applyPatch(tmpl, result.(llm.TemplatePatch))
	return tmpl, &entry, venuesInvalidated, nil
}

// applyPatch mutates tmpl with the decoded diff and reports whether the
// cached venue list became stale.
func applyPatch(tmpl *models.EventTemplate, p llm.TemplatePatch) (venuesInvalidated bool) {
	if p.Title != nil {
		tmpl.Title = titleCase(*p.Title)
	}
	if p.DurationMinutes != nil && *p.DurationMinutes > 0 {
		tmpl.DurationMinutes = *p.DurationMinutes
	}
	if p.EventType != nil && *p.EventType != tmpl.EventType {
		// A venue-type change forces a re-search; everything else in
		// the template is retained.
		tmpl.EventType = *p.EventType
		venuesInvalidated = true
	}
	if p.VenueQuery != nil && *p.VenueQuery != tmpl.VenueQuery {
		tmpl.VenueQuery = *p.VenueQuery
		venuesInvalidated = true
	}

	if p.DateStart != nil || p.DateEnd != nil || p.DateDescription != nil {
		if tmpl.Dates == nil {
			tmpl.Dates = &models.SchedulableDates{}
		}
		if p.DateStart != nil {
			tmpl.Dates.Start = *p.DateStart
			if tmpl.Dates.End.Before(tmpl.Dates.Start) {
				tmpl.Dates.End = tmpl.Dates.Start
			}
		}
		if p.DateEnd != nil {
			tmpl.Dates.End = *p.DateEnd
		}
		if p.DateDescription != nil {
			tmpl.Dates.Description = *p.DateDescription
		}
	}

	if p.BufferBefore != nil {
		tmpl.TravelBuffer.BeforeMinutes = *p.BufferBefore
	}
	if p.BufferAfter != nil {
		tmpl.TravelBuffer.AfterMinutes = *p.BufferAfter
	}

	switch {
	case p.ExplicitTime != nil:
		tmpl.ExplicitStart = p.ExplicitTime
		tmpl.HasExplicitTimeRequest = true
		tmpl.Hours = nil
	case !p.Hours.Empty():
		tmpl.Hours = p.Hours
		tmpl.ExplicitStart = nil
		tmpl.HasExplicitTimeRequest = false
		applyInstantWindow(tmpl)
	case p.RelativeShift != "":
		// A vague earlier/later request without concrete hours clears
		// any stale hour narrowing so the full date range is searched.
		tmpl.Hours = nil
		tmpl.ExplicitStart = nil
		tmpl.HasExplicitTimeRequest = false
	}

	return venuesInvalidated
}

// applyInstantWindow detects an hour window whose start equals its end.
// Such a window names one exact instant; when the date range pins a single
// day the instant is synthesized so slot generation includes the buffer
// arithmetic around it.
func applyInstantWindow(tmpl *models.EventTemplate) {
	for _, windows := range tmpl.Hours {
		for _, w := range windows {
			if !w.IsInstant() {
				continue
			}
			tmpl.HasExplicitTimeRequest = true
			if tmpl.Dates == nil || !tmpl.Dates.Start.Equal(tmpl.Dates.End) {
				return
			}
			clock, err := time.Parse("15:04", w.Start)
			if err != nil {
				return
			}
			y, m, d := tmpl.Dates.Start.Date()
			ts := time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, tmpl.Dates.Start.Location())
			tmpl.ExplicitStart = &ts
			return
		}
	}
}
