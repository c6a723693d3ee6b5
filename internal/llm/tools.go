package llm

import (
	"github.com/anthropics/anthropic-sdk-go"
)

// Tool names used across the pipeline. Each stage forces exactly one.
const (
	ToolRouteTurn          = "route_turn"
	ToolBuildTemplate      = "build_event_template"
	ToolEditTemplate       = "edit_event_template"
	ToolSelectSlotAndVenue = "select_slot_and_venue"
	ToolChooseAlternatives = "choose_alternatives"
)

// hourWindowsSchema describes the day -> clock-window map shared by the
// build and edit tools.
func hourWindowsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Map of lowercase weekday name to acceptable clock windows. A window with start == end means one exact time.",
		"additionalProperties": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"start": map[string]interface{}{"type": "string", "description": "24h clock time, e.g. 18:00"},
					"end":   map[string]interface{}{"type": "string", "description": "24h clock time, e.g. 21:00"},
				},
				"required": []string{"start", "end"},
			},
		},
	}
}

// RouteTurnTool returns the intent classifier tool. It is deliberately
// tiny: one acknowledgment sentence and one branch.
func RouteTurnTool() *ToolSpec {
	return &ToolSpec{
		Name:        ToolRouteTurn,
		Description: "Classify the latest turn of a scheduling conversation and write a one-sentence acknowledgment to show the user immediately.",
		Schema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"acknowledgment": map[string]interface{}{
					"type":        "string",
					"description": "One short sentence telling the user what is about to happen",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"handle_event", "suggest_activities", "show_more_events", "confirm_scheduling"},
					"description": "Which pipeline branch handles this turn",
				},
			},
			Required: []string{"acknowledgment", "intent"},
		},
	}
}

// BuildTemplateTool returns the template-generation tool.
func BuildTemplateTool() *ToolSpec {
	return &ToolSpec{
		Name:        ToolBuildTemplate,
		Description: "Extract a structured event template from the conversation. Only include constraints the user actually stated.",
		Schema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Short summary of what the parties want to do",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Calendar event title",
				},
				"duration_minutes": map[string]interface{}{
					"type":        "integer",
					"description": "Core event duration in minutes, travel excluded",
				},
				"event_type": map[string]interface{}{
					"type":        "string",
					"description": "Venue category: restaurant, cafe, bar, park, activity, or meeting",
				},
				"calendar_type": map[string]interface{}{
					"type": "string",
					"enum": []string{"work", "personal"},
				},
				"date_start": map[string]interface{}{
					"type":        "string",
					"description": "First acceptable day, YYYY-MM-DD, omit when the user gave no range",
				},
				"date_end": map[string]interface{}{
					"type":        "string",
					"description": "Last acceptable day, YYYY-MM-DD",
				},
				"date_description": map[string]interface{}{
					"type":        "string",
					"description": "The user's own phrasing of the range, e.g. next week",
				},
				"hours": hourWindowsSchema(),
				"explicit_time": map[string]interface{}{
					"type":        "string",
					"description": "RFC3339 instant when the user asked for one exact time",
				},
				"travel_buffer_before": map[string]interface{}{
					"type":        "integer",
					"description": "Minutes of travel time before the event",
				},
				"travel_buffer_after": map[string]interface{}{
					"type":        "integer",
					"description": "Minutes of travel time after the event",
				},
				"venue_query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text venue hint, e.g. sushi near the river",
				},
			},
			Required: []string{"intent", "title", "duration_minutes", "event_type", "calendar_type"},
		},
	}
}

// EditTemplateTool returns the template-edit tool. Arguments form a
// structured diff; omitted fields stay unchanged.
func EditTemplateTool() *ToolSpec {
	return &ToolSpec{
		Name:        ToolEditTemplate,
		Description: "Describe only what the user wants changed about the existing event template. Omit everything that stays the same.",
		Schema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"title":            map[string]interface{}{"type": "string"},
				"duration_minutes": map[string]interface{}{"type": "integer"},
				"event_type": map[string]interface{}{
					"type":        "string",
					"description": "New venue category; setting this triggers a fresh venue search",
				},
				"date_start":       map[string]interface{}{"type": "string", "description": "YYYY-MM-DD"},
				"date_end":         map[string]interface{}{"type": "string", "description": "YYYY-MM-DD"},
				"date_description": map[string]interface{}{"type": "string"},
				"hours":            hourWindowsSchema(),
				"relative_shift": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"earlier", "later"},
					"description": "Set when the user asked for earlier/later without naming hours",
				},
				"explicit_time": map[string]interface{}{
					"type":        "string",
					"description": "RFC3339 instant when the edit pins one exact time",
				},
				"travel_buffer_before": map[string]interface{}{"type": "integer"},
				"travel_buffer_after":  map[string]interface{}{"type": "integer"},
				"venue_query":          map[string]interface{}{"type": "string"},
			},
			Required: []string{},
		},
	}
}

// SelectSlotAndVenueTool returns the finalizer tool.
func SelectSlotAndVenueTool() *ToolSpec {
	return &ToolSpec{
		Name:        ToolSelectSlotAndVenue,
		Description: "Choose exactly one candidate slot index and one venue index from the numbered lists provided, and explain the choice in one or two sentences.",
		Schema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"slot_index": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based index into the candidate slot list",
				},
				"venue_index": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based index into the venue list, -1 when no venue applies",
				},
				"rationale": map[string]interface{}{
					"type":        "string",
					"description": "Why this slot and venue suit both parties",
				},
			},
			Required: []string{"slot_index", "rationale"},
		},
	}
}

// ChooseAlternativesTool returns the alternative-labeling tool. The model
// orders and labels within the provided whitelist; it never invents times.
func ChooseAlternativesTool() *ToolSpec {
	return &ToolSpec{
		Name:        ToolChooseAlternatives,
		Description: "Pick up to three of the numbered candidate times, best first, and write one friendly message presenting them. Refer to candidates only by their index.",
		Schema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"choices": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer"},
					"description": "Zero-based indexes into the candidate list, at most three",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Message presenting the chosen alternatives",
				},
			},
			Required: []string{"choices", "message"},
		},
	}
}
