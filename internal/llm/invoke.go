package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/getahuddle/huddle/pkg/models"
)

// Effort bounds how much work a single call is allowed to do. The intent
// classifier runs minimal so the acknowledgment reaches the caller fast.
type Effort string

const (
	// EffortMinimal is for latency-sensitive routing calls.
	EffortMinimal Effort = "minimal"
	// EffortStandard is for template building and selection calls.
	EffortStandard Effort = "standard"
)

// maxTokensFor maps an effort level to an output budget.
func maxTokensFor(e Effort) int64 {
	if e == EffortMinimal {
		return 512
	}
	return 2048
}

// ToolSpec describes the single tool a call is forced to answer with.
type ToolSpec struct {
	Name        string
	Description string
	Schema      anthropic.ToolInputSchemaParam
}

// Request is one completion request. When Tool is set, the model must
// respond with that tool's arguments; otherwise free text is returned.
type Request struct {
	System string
	Turns  []models.ConversationTurn
	Tool   *ToolSpec
	Effort Effort
}

// Response carries the model's answer. Exactly one of Text and ToolInput
// is meaningful: ToolInput is non-nil iff the request forced a tool.
type Response struct {
	Text      string
	ToolInput json.RawMessage
}

// Invoker is the completion-service dependency of the scheduling pipeline.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// Invoke performs one blocking completion call.
func (c *Client) Invoke(ctx context.Context, req Request) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokensFor(req.Effort),
		Messages:  toMessages(req.Turns),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Tool != nil {
		params.Tools = []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        req.Tool.Name,
				Description: anthropic.String(req.Tool.Description),
				InputSchema: req.Tool.Schema,
			},
		}}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.Tool.Name},
		}
	}

	resp, err := c.sdk().Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("completion call: %w", err)
	}
	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var out Response
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Text += variant.Text
		case anthropic.ToolUseBlock:
			out.ToolInput = variant.Input
		}
	}

	if req.Tool != nil && out.ToolInput == nil {
		return out, fmt.Errorf("model returned no %s tool call", req.Tool.Name)
	}
	return out, nil
}

// toMessages converts conversation turns to SDK message params.
func toMessages(turns []models.ConversationTurn) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		if t.Role == models.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
	}
	return msgs
}
