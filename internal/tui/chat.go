// Package tui provides the interactive chat interface for huddle.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/getahuddle/huddle/internal/scheduler"
	"github.com/getahuddle/huddle/internal/stream"
	"github.com/getahuddle/huddle/pkg/models"
)

// envelopeMsg wraps one pipeline envelope for the update loop.
type envelopeMsg struct {
	env stream.Envelope
}

// runDoneMsg signals that the pipeline closed its stream.
type runDoneMsg struct{}

// ChatConfig wires the chat to a scheduler.
type ChatConfig struct {
	Sched        *scheduler.Scheduler
	ParticipantA string
	ParticipantB string
}

// Chat is the interactive scheduling conversation.
type Chat struct {
	cfg     ChatConfig
	input   *InputField
	history []models.ConversationTurn
	lines   []string
	busy    bool
	width   int
	sink    *stream.ChannelSink
}

// NewChat creates the chat model.
func NewChat(cfg ChatConfig) *Chat {
	return &Chat{
		cfg:   cfg,
		input: NewInputField(),
		lines: []string{mutedStyle.Render("Tell me what you'd like to schedule.")},
		width: 80,
	}
}

// Init implements tea.Model.
func (c *Chat) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return c, tea.Quit
		}
		if c.busy {
			return c, nil
		}

	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.input.SetWidth(msg.Width)
		return c, nil

	case MessageSubmittedMsg:
		return c, c.startRun(msg.Text)

	case envelopeMsg:
		c.appendEnvelope(msg.env)
		return c, c.waitForEnvelope()

	case runDoneMsg:
		c.busy = false
		c.sink = nil
		return c, c.input.Focus()
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// startRun launches the pipeline for the submitted turn and begins
// draining its envelope channel.
func (c *Chat) startRun(text string) tea.Cmd {
	c.history = append(c.history, models.ConversationTurn{Role: models.RoleUser, Text: text})
	c.lines = append(c.lines, userStyle.Render("you: ")+text)
	c.busy = true
	c.input.Blur()

	sink := stream.NewChannelSink(32)
	c.sink = sink
	turns := make([]models.ConversationTurn, len(c.history))
	copy(turns, c.history)

	go c.cfg.Sched.Run(context.Background(), scheduler.Request{
		ParticipantA: c.cfg.ParticipantA,
		ParticipantB: c.cfg.ParticipantB,
		Turns:        turns,
	}, stream.NewEmitter(sink))

	return c.waitForEnvelope()
}

// waitForEnvelope blocks on the stream until the next envelope or close.
func (c *Chat) waitForEnvelope() tea.Cmd {
	sink := c.sink
	if sink == nil {
		return nil
	}
	return func() tea.Msg {
		env, ok := <-sink.Envelopes()
		if !ok {
			return runDoneMsg{}
		}
		return envelopeMsg{env: env}
	}
}

// appendEnvelope renders one envelope into the transcript.
func (c *Chat) appendEnvelope(env stream.Envelope) {
	switch env.Type {
	case stream.TypeAcknowledgment:
		c.lines = append(c.lines, assistantStyle.Render("huddle: ")+env.Message)
	case stream.TypeProgress:
		c.lines = append(c.lines, mutedStyle.Render("  "+env.Message))
	case stream.TypeContent:
		c.record(env.Message)
		c.lines = append(c.lines, assistantStyle.Render("huddle: ")+env.Message)
	case stream.TypeEvent:
		if env.Event != nil {
			c.lines = append(c.lines, eventStyle.Render(renderEvent(env.Event)))
		}
	case stream.TypeEnhancementPending:
		c.lines = append(c.lines, mutedStyle.Render(
			fmt.Sprintf("  still looking for more places (id %s)", env.EnrichmentID)))
	case stream.TypeError:
		c.record(env.Message)
		c.lines = append(c.lines, errorStyle.Render("huddle: "+env.Message))
	}
}

// record keeps the assistant's reply in the conversation history so the
// next turn carries full context.
func (c *Chat) record(text string) {
	if text == "" {
		return
	}
	c.history = append(c.history, models.ConversationTurn{Role: models.RoleAssistant, Text: text})
}

// View implements tea.Model.
func (c *Chat) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("huddle"))
	b.WriteString("\n\n")
	for _, line := range c.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if c.busy {
		b.WriteString(mutedStyle.Render("thinking..."))
	} else {
		b.WriteString(c.input.View())
	}
	b.WriteString("\n")
	return b.String()
}

// renderEvent formats a finalized event for the transcript.
func renderEvent(event *models.FinalEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", event.Title)
	fmt.Fprintf(&b, "  %s to %s\n",
		event.StartTime.Format("Monday, January 2 at 3:04 PM"),
		event.EndTime.Format("3:04 PM"))
	if event.Location != "" {
		fmt.Fprintf(&b, "  at %s\n", event.Location)
	}
	if event.TravelBuffer.BeforeMinutes > 0 || event.TravelBuffer.AfterMinutes > 0 {
		fmt.Fprintf(&b, "  calendar block %s to %s\n",
			event.CalendarBlockStart.Format("3:04 PM"),
			event.CalendarBlockEnd.Format("3:04 PM"))
	}
	return strings.TrimRight(b.String(), "\n")
}
