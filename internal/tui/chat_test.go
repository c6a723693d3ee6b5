package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/getahuddle/huddle/internal/stream"
	"github.com/getahuddle/huddle/pkg/models"
)

func TestAppendEnvelopeBuildsTranscript(t *testing.T) {
	c := NewChat(ChatConfig{ParticipantA: "ana", ParticipantB: "ben"})
	before := len(c.lines)

	c.appendEnvelope(stream.Envelope{Type: stream.TypeAcknowledgment, Message: "On it."})
	c.appendEnvelope(stream.Envelope{Type: stream.TypeProgress, Message: "Checking both calendars..."})
	c.appendEnvelope(stream.Envelope{Type: stream.TypeContent, Message: "How about Friday?"})

	if got := len(c.lines) - before; got != 3 {
		t.Fatalf("expected 3 transcript lines, got %d", got)
	}
	if !strings.Contains(c.lines[len(c.lines)-1], "How about Friday?") {
		t.Errorf("content line missing message: %q", c.lines[len(c.lines)-1])
	}
	if len(c.history) != 1 || c.history[0].Role != models.RoleAssistant {
		t.Errorf("content envelope should be recorded as assistant turn, history = %+v", c.history)
	}
}

func TestAppendEnvelopeProgressNotRecorded(t *testing.T) {
	c := NewChat(ChatConfig{})
	c.appendEnvelope(stream.Envelope{Type: stream.TypeProgress, Message: "Looking for a good spot..."})
	if len(c.history) != 0 {
		t.Errorf("progress envelopes must not enter the history, got %+v", c.history)
	}
}

func TestRenderEventShowsBlockAndVenue(t *testing.T) {
	start := time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC)
	ev := &models.FinalEvent{
		Title:        "Dinner At Luigi's",
		StartTime:    start,
		EndTime:      start.Add(90 * time.Minute),
		Location:     "Luigi's, 12 Mott St",
		TravelBuffer: models.TravelBuffer{BeforeMinutes: 30, AfterMinutes: 15},
	}
	ev.ApplyTravelBuffer()

	out := renderEvent(ev)
	for _, want := range []string{"Dinner At Luigi's", "Luigi's, 12 Mott St", "5:30 PM", "7:45 PM"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered event missing %q:\n%s", want, out)
		}
	}
}

func TestInputFieldSubmitEmitsMessage(t *testing.T) {
	f := NewInputField()
	f.input.SetValue("  dinner friday  ")

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from submit")
	}
	msg, ok := cmd().(MessageSubmittedMsg)
	if !ok {
		t.Fatalf("expected MessageSubmittedMsg, got %T", cmd())
	}
	if msg.Text != "dinner friday" {
		t.Errorf("expected trimmed text, got %q", msg.Text)
	}
	if f.input.Value() != "" {
		t.Errorf("input should reset after submit, got %q", f.input.Value())
	}
}

func TestInputFieldIgnoresEmptySubmit(t *testing.T) {
	f := NewInputField()
	f.input.SetValue("   ")
	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank input must not submit")
	}
}

func TestWaitForEnvelopeSignalsClose(t *testing.T) {
	c := NewChat(ChatConfig{})
	sink := stream.NewChannelSink(1)
	c.sink = sink

	if err := sink.Send(stream.Envelope{Type: stream.TypeContent, Message: "hi"}); err != nil {
		t.Fatal(err)
	}
	if msg := c.waitForEnvelope()(); msg.(envelopeMsg).env.Message != "hi" {
		t.Errorf("unexpected envelope msg: %+v", msg)
	}

	sink.Close()
	if _, ok := c.waitForEnvelope()().(runDoneMsg); !ok {
		t.Error("closed channel should produce runDoneMsg")
	}
}
