package scheduler

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/getahuddle/huddle/internal/llm"
	"github.com/getahuddle/huddle/pkg/models"
)

// buildTemplate runs the generate mode of the template stage: one forced
// tool call validated into a fresh EventTemplate.
func (s *Scheduler) buildTemplate(ctx context.Context, turns []models.ConversationTurn) (*models.EventTemplate, error) {
	resp, err := s.llm.Invoke(ctx, llm.Request{
		System: buildTemplateSystem(s.now()),
		Turns:  turns,
		Tool:   llm.BuildTemplateTool(),
		Effort: llm.EffortStandard,
	})
	if err != nil {
		return nil, fmt.Errorf("template call: %w", err)
	}

	result, err := llm.DecodeToolResult(llm.ToolBuildTemplate, resp.ToolInput)
	if err != nil {
		return nil, fmt.Errorf("template arguments: %w", err)
	}
	tmpl := result.(llm.TemplateDraft).Template
	tmpl.Title = titleCase(tmpl.Title)
	return tmpl, nil
}

// titleCase normalizes a title word-by-word: first letter upper, rest
// preserved so acronyms survive.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
