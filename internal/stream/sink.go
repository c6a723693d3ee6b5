package stream

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"
)

// Sink is where envelopes go: an HTTP response, a terminal, or an
// in-process channel.
type Sink interface {
	Send(Envelope) error
	Close() error
}

// Flusher is implemented by sinks that can push buffered bytes to the
// consumer; WriterSink flushes after every envelope when available.
type Flusher interface {
	Flush()
}

// WriterSink serializes envelopes as line-delimited JSON.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
	w   io.Writer
}

// NewWriterSink wraps w. If w implements Flusher, every envelope is
// flushed as it is written.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w), w: w}
}

// Send writes one envelope as a JSON line.
func (s *WriterSink) Send(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(env); err != nil {
		return err
	}
	if f, ok := s.w.(Flusher); ok {
		f.Flush()
	}
	return nil
}

// Close is a no-op; the writer's lifetime belongs to the caller.
func (s *WriterSink) Close() error {
	return nil
}

// ChannelSink delivers envelopes over a buffered channel, for in-process
// consumers such as the interactive TUI.
type ChannelSink struct {
	ch      chan Envelope
	done    chan struct{}
	sending sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	dropped uint64
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{
		ch:   make(chan Envelope, bufferSize),
		done: make(chan struct{}),
	}
}

// Envelopes returns the read side of the channel.
func (s *ChannelSink) Envelopes() <-chan Envelope {
	return s.ch
}

// Send delivers the envelope, waiting briefly when the consumer is slow
// and dropping the envelope if it stays slow. Sends after Close are
// no-ops. The blocking wait happens outside the lock so a slow consumer
// never stalls Close or other senders.
func (s *ChannelSink) Send(env Envelope) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.sending.Add(1)
	s.mu.Unlock()
	defer s.sending.Done()

	select {
	case s.ch <- env:
		return nil
	case <-s.done:
		return nil
	case <-time.After(100 * time.Millisecond):
		s.mu.Lock()
		s.dropped++
		dropped := s.dropped
		s.mu.Unlock()
		log.Printf("[stream] WARNING: envelope channel full, dropped %s (total dropped: %d)", env.Type, dropped)
	}
	return nil
}

// Dropped returns how many envelopes were discarded.
func (s *ChannelSink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close unblocks in-flight Sends, waits for them to return, then closes
// the channel. Further Sends are no-ops.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.sending.Wait()
	close(s.ch)
	return nil
}
