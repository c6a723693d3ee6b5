package scheduler

import (
	"context"

	"github.com/getahuddle/huddle/internal/llm"
	"github.com/getahuddle/huddle/pkg/models"
)

// defaultAcknowledgment is used when the classifier's own text is unusable.
const defaultAcknowledgment = "On it - give me a moment."

// classifyIntent runs the fast routing call. It must stay cheap: its only
// job is branch selection plus the immediate acknowledgment, so it runs at
// minimal effort. Unparsable output routes to the safe no-op branch rather
// than failing the request.
func (s *Scheduler) classifyIntent(ctx context.Context, turns []models.ConversationTurn) llm.IntentDecision {
	fallback := llm.IntentDecision{
		Acknowledgment: defaultAcknowledgment,
		Intent:         models.RoutingConfirmScheduling,
	}

	resp, err := s.llm.Invoke(ctx, llm.Request{
		System: routingSystem(s.now()),
		Turns:  turns,
		Tool:   llm.RouteTurnTool(),
		Effort: llm.EffortMinimal,
	})
	if err != nil {
		s.logger.Log("intent classification failed, defaulting to confirm_scheduling: %v", err)
		return fallback
	}

	result, err := llm.DecodeToolResult(llm.ToolRouteTurn, resp.ToolInput)
	if err != nil {
		s.logger.Log("intent decode failed, defaulting to confirm_scheduling: %v", err)
		return fallback
	}
	decision := result.(llm.IntentDecision)
	if decision.Acknowledgment == "" {
		decision.Acknowledgment = defaultAcknowledgment
	}
	return decision
}
