package llm

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/getahuddle/huddle/pkg/models"
)

// ToolResult is the tagged union of every tool's decoded arguments.
// Call sites type-switch over the concrete variants.
type ToolResult interface {
	isToolResult()
}

// IntentDecision is the decoded route_turn result.
type IntentDecision struct {
	Acknowledgment string
	Intent         models.RoutingIntent
}

// TemplateDraft is the decoded build_event_template result.
type TemplateDraft struct {
	Template *models.EventTemplate
}

// TemplatePatch is the decoded edit_event_template result. Nil fields were
// not mentioned by the user and must stay unchanged.
type TemplatePatch struct {
	Title           *string
	DurationMinutes *int
	EventType       *string
	DateStart       *time.Time
	DateEnd         *time.Time
	DateDescription *string
	Hours           models.SchedulableHours
	RelativeShift   string
	ExplicitTime    *time.Time
	BufferBefore    *int
	BufferAfter     *int
	VenueQuery      *string
}

// SlotVenueSelection is the decoded select_slot_and_venue result.
type SlotVenueSelection struct {
	SlotIndex  int
	VenueIndex int
	Rationale  string
}

// AlternativePick is the decoded choose_alternatives result.
type AlternativePick struct {
	Indexes []int
	Message string
}

func (IntentDecision) isToolResult()     {}
func (TemplateDraft) isToolResult()      {}
func (TemplatePatch) isToolResult()      {}
func (SlotVenueSelection) isToolResult() {}
func (AlternativePick) isToolResult()    {}

// DecodeToolResult validates raw tool-call arguments into the typed result
// for the named tool.
func DecodeToolResult(name string, raw json.RawMessage) (ToolResult, error) {
	switch name {
	case ToolRouteTurn:
		return decodeIntent(raw)
	case ToolBuildTemplate:
		return decodeTemplate(raw)
	case ToolEditTemplate:
		return decodePatch(raw)
	case ToolSelectSlotAndVenue:
		return decodeSelection(raw)
	case ToolChooseAlternatives:
		return decodeAlternatives(raw)
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func decodeIntent(raw json.RawMessage) (IntentDecision, error) {
	var args struct {
		Acknowledgment string `json:"acknowledgment"`
		Intent         string `json:"intent"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return IntentDecision{}, fmt.Errorf("decode route_turn: %w", err)
	}
	intent := models.RoutingIntent(args.Intent)
	if !intent.Valid() {
		return IntentDecision{}, fmt.Errorf("route_turn returned unknown intent %q", args.Intent)
	}
	return IntentDecision{Acknowledgment: args.Acknowledgment, Intent: intent}, nil
}

// templateArgs is the wire shape shared by the build tool.
type templateArgs struct {
	Intent          string                  `json:"intent"`
	Title           string                  `json:"title"`
	DurationMinutes int                     `json:"duration_minutes"`
	EventType       string                  `json:"event_type"`
	CalendarType    string                  `json:"calendar_type"`
	DateStart       string                  `json:"date_start"`
	DateEnd         string                  `json:"date_end"`
	DateDescription string                  `json:"date_description"`
	Hours           models.SchedulableHours `json:"hours"`
	ExplicitTime    string                  `json:"explicit_time"`
	BufferBefore    int                     `json:"travel_buffer_before"`
	BufferAfter     int                     `json:"travel_buffer_after"`
	VenueQuery      string                  `json:"venue_query"`
}

func decodeTemplate(raw json.RawMessage) (TemplateDraft, error) {
	var args templateArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return TemplateDraft{}, fmt.Errorf("decode build_event_template: %w", err)
	}
	if args.DurationMinutes <= 0 {
		return TemplateDraft{}, fmt.Errorf("build_event_template: duration %d is not positive", args.DurationMinutes)
	}
	calType := models.CalendarType(args.CalendarType)
	if !calType.Valid() {
		return TemplateDraft{}, fmt.Errorf("build_event_template: unknown calendar type %q", args.CalendarType)
	}

	t := &models.EventTemplate{
		Intent:          args.Intent,
		Title:           args.Title,
		DurationMinutes: args.DurationMinutes,
		EventType:       args.EventType,
		CalendarType:    calType,
		Hours:           args.Hours,
		TravelBuffer: models.TravelBuffer{
			BeforeMinutes: args.BufferBefore,
			AfterMinutes:  args.BufferAfter,
		},
		VenueQuery: args.VenueQuery,
	}

	if args.DateStart != "" {
		start, err := parseDay(args.DateStart)
		if err != nil {
			return TemplateDraft{}, fmt.Errorf("build_event_template: %w", err)
		}
		end := start
		if args.DateEnd != "" {
			if end, err = parseDay(args.DateEnd); err != nil {
				return TemplateDraft{}, fmt.Errorf("build_event_template: %w", err)
			}
		}
		t.Dates = &models.SchedulableDates{Start: start, End: end, Description: args.DateDescription}
	}
	if args.ExplicitTime != "" {
		ts, err := time.Parse(time.RFC3339, args.ExplicitTime)
		if err != nil {
			return TemplateDraft{}, fmt.Errorf("build_event_template: bad explicit_time: %w", err)
		}
		t.ExplicitStart = &ts
		t.HasExplicitTimeRequest = true
	}
	return TemplateDraft{Template: t}, nil
}

func decodePatch(raw json.RawMessage) (TemplatePatch, error) {
	var args struct {
		Title           *string                 `json:"title"`
		DurationMinutes *int                    `json:"duration_minutes"`
		EventType       *string                 `json:"event_type"`
		DateStart       *string                 `json:"date_start"`
		DateEnd         *string                 `json:"date_end"`
		DateDescription *string                 `json:"date_description"`
		Hours           models.SchedulableHours `json:"hours"`
		RelativeShift   string                  `json:"relative_shift"`
		ExplicitTime    *string                 `json:"explicit_time"`
		BufferBefore    *int                    `json:"travel_buffer_before"`
		BufferAfter     *int                    `json:"travel_buffer_after"`
		VenueQuery      *string                 `json:"venue_query"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return TemplatePatch{}, fmt.Errorf("decode edit_event_template: %w", err)
	}
	if args.RelativeShift != "" && args.RelativeShift != "earlier" && args.RelativeShift != "later" {
		return TemplatePatch{}, fmt.Errorf("edit_event_template: unknown relative_shift %q", args.RelativeShift)
	}

	p := TemplatePatch{
		Title:           args.Title,
		DurationMinutes: args.DurationMinutes,
		EventType:       args.EventType,
		DateDescription: args.DateDescription,
		Hours:           args.Hours,
		RelativeShift:   args.RelativeShift,
		BufferBefore:    args.BufferBefore,
		BufferAfter:     args.BufferAfter,
		VenueQuery:      args.VenueQuery,
	}
	if args.DateStart != nil {
		d, err := parseDay(*args.DateStart)
		if err != nil {
			return TemplatePatch{}, fmt.Errorf("edit_event_template: %w", err)
		}
		p.DateStart = &d
	}
	if args.DateEnd != nil {
		d, err := parseDay(*args.DateEnd)
		if err != nil {
			return TemplatePatch{}, fmt.Errorf("edit_event_template: %w", err)
		}
		p.DateEnd = &d
	}
	if args.ExplicitTime != nil {
		ts, err := time.Parse(time.RFC3339, *args.ExplicitTime)
		if err != nil {
			return TemplatePatch{}, fmt.Errorf("edit_event_template: bad explicit_time: %w", err)
		}
		p.ExplicitTime = &ts
	}
	return p, nil
}

func decodeSelection(raw json.RawMessage) (SlotVenueSelection, error) {
	var args struct {
		SlotIndex  int    `json:"slot_index"`
		VenueIndex *int   `json:"venue_index"`
		Rationale  string `json:"rationale"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return SlotVenueSelection{}, fmt.Errorf("decode select_slot_and_venue: %w", err)
	}
	if args.SlotIndex < 0 {
		return SlotVenueSelection{}, fmt.Errorf("select_slot_and_venue: negative slot index %d", args.SlotIndex)
	}
	venue := -1
	if args.VenueIndex != nil {
		venue = *args.VenueIndex
	}
	return SlotVenueSelection{SlotIndex: args.SlotIndex, VenueIndex: venue, Rationale: args.Rationale}, nil
}

func decodeAlternatives(raw json.RawMessage) (AlternativePick, error) {
	var args struct {
		Choices []int  `json:"choices"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return AlternativePick{}, fmt.Errorf("decode choose_alternatives: %w", err)
	}
	return AlternativePick{Indexes: args.Choices, Message: args.Message}, nil
}

// parseDay parses a YYYY-MM-DD day in UTC.
func parseDay(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return d, nil
}
