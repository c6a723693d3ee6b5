package stream

import (
	"sync"
	"time"

	"github.com/getahuddle/huddle/pkg/models"
)

// Emitter enforces the per-request stream guarantees on top of a Sink:
// envelopes go out in call order, at most one error envelope is ever
// emitted, and the stream closes exactly once. A second Close, and any
// emit after Close, is a no-op.
type Emitter struct {
	mu      sync.Mutex
	sink    Sink
	closed  bool
	errored bool
	now     func() time.Time
}

// NewEmitter wraps the sink.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, now: time.Now}
}

// Acknowledge emits the immediate acknowledgment envelope.
func (e *Emitter) Acknowledge(msg string) {
	e.send(Envelope{Type: TypeAcknowledgment, Message: msg})
}

// Progress emits an advisory progress update.
func (e *Emitter) Progress(msg string) {
	e.send(Envelope{Type: TypeProgress, Message: msg})
}

// Content emits the assistant's message for this turn.
func (e *Emitter) Content(msg string) {
	e.send(Envelope{Type: TypeContent, Message: msg})
}

// Event emits the finalized calendar event.
func (e *Emitter) Event(ev *models.FinalEvent) {
	e.send(Envelope{Type: TypeEvent, Event: ev})
}

// EnhancementPending signals that a background search will complete after
// this stream closes, identified by id in the cache.
func (e *Emitter) EnhancementPending(id string) {
	e.send(Envelope{Type: TypeEnhancementPending, EnrichmentID: id})
}

// Fail emits the single error envelope. Later Fail calls are dropped so a
// cascade of stage failures cannot produce a second one.
func (e *Emitter) Fail(msg string) {
	e.mu.Lock()
	if e.closed || e.errored {
		e.mu.Unlock()
		return
	}
	e.errored = true
	env := Envelope{Type: TypeError, Message: msg, Timestamp: e.now()}
	e.sink.Send(env)
	e.mu.Unlock()
}

// Close closes the underlying sink exactly once.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.sink.Close()
}

// Closed reports whether the stream has been closed.
func (e *Emitter) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Emitter) send(env Envelope) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	env.Timestamp = e.now()
	e.sink.Send(env)
}
