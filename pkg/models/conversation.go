package models

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser is a turn written by one of the scheduling parties.
	RoleUser Role = "user"
	// RoleAssistant is a turn written by the assistant.
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one entry of the negotiation history. The history is
// owned by the caller and passed in as context; the core never persists it.
type ConversationTurn struct {
	// Role is who authored the turn.
	Role Role `json:"role"`
	// Text is the free-text content of the turn.
	Text string `json:"text"`
}

// RoutingIntent is the branch selected by the intent classifier stage.
type RoutingIntent string

const (
	// RoutingHandleEvent routes to template construction and finalization.
	RoutingHandleEvent RoutingIntent = "handle_event"
	// RoutingSuggestActivities routes to activity suggestions.
	RoutingSuggestActivities RoutingIntent = "suggest_activities"
	// RoutingShowMoreEvents routes to listing further candidate events.
	RoutingShowMoreEvents RoutingIntent = "show_more_events"
	// RoutingConfirmScheduling is the safe no-op branch. Unparsable
	// classifier output defaults here.
	RoutingConfirmScheduling RoutingIntent = "confirm_scheduling"
)

// Valid returns true if the intent is a known value.
func (r RoutingIntent) Valid() bool {
	switch r {
	case RoutingHandleEvent, RoutingSuggestActivities, RoutingShowMoreEvents, RoutingConfirmScheduling:
		return true
	default:
		return false
	}
}

// CalendarType distinguishes which of a participant's calendars is consulted.
type CalendarType string

const (
	// CalendarWork is the participant's work calendar.
	CalendarWork CalendarType = "work"
	// CalendarPersonal is the participant's personal calendar.
	CalendarPersonal CalendarType = "personal"
)

// Valid returns true if the calendar type is a known value.
func (c CalendarType) Valid() bool {
	return c == CalendarWork || c == CalendarPersonal
}
