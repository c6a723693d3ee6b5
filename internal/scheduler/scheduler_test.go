package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/getahuddle/huddle/internal/availability"
	"github.com/getahuddle/huddle/internal/cache"
	"github.com/getahuddle/huddle/internal/llm"
	"github.com/getahuddle/huddle/internal/stream"
	"github.com/getahuddle/huddle/internal/venues"
	"github.com/getahuddle/huddle/pkg/models"
)

// monday anchors every test clock; 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return monday }

// fakeInvoker replays scripted tool responses keyed by tool name.
type fakeInvoker struct {
	mu        sync.Mutex
	responses map[string][]string
}

func (f *fakeInvoker) script(tool, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.responses == nil {
		f.responses = make(map[string][]string)
	}
	f.responses[tool] = append(f.responses[tool], raw)
}

func (f *fakeInvoker) Invoke(_ context.Context, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Tool == nil {
		return llm.Response{}, fmt.Errorf("expected a forced tool call")
	}
	queue := f.responses[req.Tool.Name]
	if len(queue) == 0 {
		return llm.Response{}, fmt.Errorf("no scripted response for %s", req.Tool.Name)
	}
	raw := queue[0]
	f.responses[req.Tool.Name] = queue[1:]
	return llm.Response{ToolInput: json.RawMessage(raw)}, nil
}

// fakeSearcher returns fixed places and records its requests.
type fakeSearcher struct {
	mu       sync.Mutex
	places   []models.Place
	err      error
	requests []venues.SearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req venues.SearchRequest) ([]models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Place, len(f.places))
	copy(out, f.places)
	return out, nil
}

// collectSink records every envelope for assertions.
type collectSink struct {
	mu        sync.Mutex
	envelopes []stream.Envelope
	closes    int
}

func (c *collectSink) Send(env stream.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.envelopes = append(c.envelopes, env)
	return nil
}

func (c *collectSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *collectSink) ofType(t stream.Type) []stream.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []stream.Envelope
	for _, env := range c.envelopes {
		if env.Type == t {
			out = append(out, env)
		}
	}
	return out
}

// weekdayBusiness builds busy intervals leaving only Mon-Fri 9-17 free
// over the given number of days from monday.
func weekdayBusiness(days int) []models.TimeSlot {
	var busy []models.TimeSlot
	for d := 0; d < days; d++ {
		day := monday.AddDate(0, 0, d)
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			busy = append(busy, models.TimeSlot{Start: day, End: day.AddDate(0, 0, 1)})
		default:
			busy = append(busy, models.TimeSlot{Start: day, End: day.Add(9 * time.Hour)})
			busy = append(busy, models.TimeSlot{Start: day.Add(17 * time.Hour), End: day.AddDate(0, 0, 1)})
		}
	}
	return busy
}

func newTestScheduler(t *testing.T, inv *fakeInvoker, source availability.Source, searcher venues.Searcher, store cache.Store) *Scheduler {
	t.Helper()
	if store == nil {
		store = cache.NewMemoryStore()
	}
	s, err := New(Config{
		LLM:          inv,
		Availability: source,
		Venues:       searcher,
		Cache:        store,
		Now:          fixedNow,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func turns(text string) []models.ConversationTurn {
	return []models.ConversationTurn{{Role: models.RoleUser, Text: text}}
}

const routeHandleEvent = `{"acknowledgment":"Let me set that up.","intent":"handle_event"}`

func TestRunHappyPathEmitsContentAndEvent(t *testing.T) {
	inv := &fakeInvoker{}
	inv.script(llm.ToolRouteTurn, routeHandleEvent)
	inv.script(llm.ToolBuildTemplate, `{
		"intent":"dinner together","title":"dinner at luigi's","duration_minutes":90,
		"event_type":"restaurant","calendar_type":"personal",
		"travel_buffer_before":30,"travel_buffer_after":15,"venue_query":"italian restaurant"}`)
	inv.script(llm.ToolSelectSlotAndVenue, `{"slot_index":0,"venue_index":0,"rationale":"Earliest time you are both free."}`)

	searcher := &fakeSearcher{places: []models.Place{
		{Name: "Luigi's", Address: "12 Canal St"},
		{Name: "Trattoria Roma", Address: "4 Elm St"},
	}}
	source := &availability.StaticSource{Now: fixedNow, HorizonDays: 7}
	store := cache.NewMemoryStore()
	s := newTestScheduler(t, inv, source, searcher, store)

	sink := &collectSink{}
	s.Run(context.Background(), Request{
		ParticipantA: "ana", ParticipantB: "ben",
		Turns: turns("dinner this week?"),
	}, stream.NewEmitter(sink))

	if got := sink.ofType(stream.TypeAcknowledgment); len(got) != 1 {
		t.Fatalf("expected 1 acknowledgment, got %d", len(got))
	}
	if got := sink.ofType(stream.TypeError); len(got) != 0 {
		t.Fatalf("unexpected error envelope: %s", got[0].Message)
	}
	events := sink.ofType(stream.TypeEvent)
	if len(events) != 1 {
		t.Fatalf("expected 1 event envelope, got %d", len(events))
	}
	event := events[0].Event
	if event.Title != "Dinner At Luigi's" {
		t.Errorf("title not normalized: %q", event.Title)
	}
	if event.VenueName != "Luigi's" {
		t.Errorf("expected venue Luigi's, got %q", event.VenueName)
	}
	if event.EndTime.Sub(event.StartTime) != 90*time.Minute {
		t.Errorf("event core should be 90m, got %s", event.EndTime.Sub(event.StartTime))
	}
	block := event.CalendarBlock()
	if block.Start != event.StartTime.Add(-30*time.Minute) || block.End != event.EndTime.Add(15*time.Minute) {
		t.Error("calendar block does not extend by the travel buffer")
	}
	if sink.closes != 1 {
		t.Errorf("expected exactly one close, got %d", sink.closes)
	}

	var entry models.CacheEntry
	found, err := cache.GetJSON(context.Background(), store, PairKey("ana", "ben"), &entry)
	if err != nil || !found {
		t.Fatalf("expected cached entry after success (found=%v err=%v)", found, err)
	}
	if entry.Template == nil || entry.PreviousResult == nil || len(entry.Places) != 2 {
		t.Error("cache entry missing template, result, or places")
	}
}

func TestRunEditWithoutCacheIsFatal(t *testing.T) {
	inv := &fakeInvoker{}
	inv.script(llm.ToolRouteTurn, routeHandleEvent)

	s := newTestScheduler(t, inv, &availability.StaticSource{Now: fixedNow}, nil, nil)

	sink := &collectSink{}
	s.Run(context.Background(), Request{
		ParticipantA: "ana", ParticipantB: "ben",
		Turns: turns("make it an hour later"),
		Edit:  true,
	}, stream.NewEmitter(sink))

	errs := sink.ofType(stream.TypeError)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error envelope, got %d", len(errs))
	}
	if errs[0].Message != genericFailureMessage {
		t.Errorf("error message should be generic, got %q", errs[0].Message)
	}
	if got := sink.ofType(stream.TypeEvent); len(got) != 0 {
		t.Error("no event may be emitted on the fatal edit path")
	}
	if sink.closes != 1 {
		t.Errorf("expected exactly one close, got %d", sink.closes)
	}
}

func TestRunExplicitSaturdayConflictOffersAlternatives(t *testing.T) {
	inv := &fakeInvoker{}
	inv.script(llm.ToolRouteTurn, routeHandleEvent)
	inv.script(llm.ToolBuildTemplate, fmt.Sprintf(`{
		"intent":"coffee","title":"coffee","duration_minutes":60,
		"event_type":"cafe","calendar_type":"personal",
		"explicit_time":%q}`, monday.AddDate(0, 0, 5).Add(15*time.Hour).Format(time.RFC3339)))
	inv.script(llm.ToolChooseAlternatives, `{"choices":[0,1,2],"message":"Saturday is out, but these work: option one, two, or three."}`)

	busy := weekdayBusiness(7)
	source := &availability.StaticSource{
		Now:         fixedNow,
		HorizonDays: 7,
		Busy:        map[string][]models.TimeSlot{"ana": busy, "ben": busy},
	}
	s := newTestScheduler(t, inv, source, nil, nil)

	sink := &collectSink{}
	s.Run(context.Background(), Request{
		ParticipantA: "ana", ParticipantB: "ben",
		Turns: turns("coffee saturday at 3pm"),
	}, stream.NewEmitter(sink))

	if got := sink.ofType(stream.TypeError); len(got) != 0 {
		t.Fatalf("unexpected error envelope: %s", got[0].Message)
	}
	if got := sink.ofType(stream.TypeEvent); len(got) != 0 {
		t.Fatal("conflict without override must not produce an event")
	}
	contents := sink.ofType(stream.TypeContent)
	if len(contents) != 1 {
		t.Fatalf("expected 1 content envelope, got %d", len(contents))
	}
	if contents[0].Message == "" {
		t.Error("alternatives message is empty")
	}
}

func TestRunExplicitConflictWithOverrideBooksRequestedTime(t *testing.T) {
	requested := monday.AddDate(0, 0, 5).Add(15 * time.Hour) // Saturday 3pm

	inv := &fakeInvoker{}
	inv.script(llm.ToolRouteTurn, routeHandleEvent)
	inv.script(llm.ToolBuildTemplate, fmt.Sprintf(`{
		"intent":"coffee","title":"coffee","duration_minutes":60,
		"event_type":"meeting","calendar_type":"work",
		"explicit_time":%q}`, requested.Format(time.RFC3339)))
	inv.script(llm.ToolSelectSlotAndVenue, `{"slot_index":0,"venue_index":-1,"rationale":"Booked at your requested time."}`)

	busy := weekdayBusiness(7)
	source := &availability.StaticSource{
		Now:         fixedNow,
		HorizonDays: 7,
		Busy:        map[string][]models.TimeSlot{"ana": busy, "ben": busy},
	}
	s := newTestScheduler(t, inv, source, nil, nil)

	sink := &collectSink{}
	s.Run(context.Background(), Request{
		ParticipantA: "ana", ParticipantB: "ben",
		Turns:         turns("book it anyway"),
		AllowConflict: true,
	}, stream.NewEmitter(sink))

	events := sink.ofType(stream.TypeEvent)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d (errors: %v)", len(events), sink.ofType(stream.TypeError))
	}
	if !events[0].Event.StartTime.Equal(requested) {
		t.Errorf("expected event at %s, got %s", requested, events[0].Event.StartTime)
	}
}

func TestRunThinVenueResultStartsEnrichment(t *testing.T) {
	inv := &fakeInvoker{}
	inv.script(llm.ToolRouteTurn, routeHandleEvent)
	inv.script(llm.ToolBuildTemplate, `{
		"intent":"drinks","title":"drinks","duration_minutes":60,
		"event_type":"bar","calendar_type":"personal"}`)
	inv.script(llm.ToolSelectSlotAndVenue, `{"slot_index":0,"venue_index":0,"rationale":"First free evening."}`)

	searcher := &fakeSearcher{places: []models.Place{{Name: "The Anchor", Address: "9 Dock Rd"}}}
	store := cache.NewMemoryStore()
	s := newTestScheduler(t, inv, &availability.StaticSource{Now: fixedNow, HorizonDays: 3}, searcher, store)

	sink := &collectSink{}
	s.Run(context.Background(), Request{
		ParticipantA: "ana", ParticipantB: "ben",
		Turns: turns("drinks sometime"),
	}, stream.NewEmitter(sink))

	pending := sink.ofType(stream.TypeEnhancementPending)
	if len(pending) != 1 {
		t.Fatalf("expected 1 enhancement_pending envelope, got %d", len(pending))
	}
	id := pending[0].EnrichmentID
	if id == "" {
		t.Fatal("enrichment id is empty")
	}

	s.Background().Wait()

	var enriched []models.Place
	found, err := cache.GetJSON(context.Background(), store, EnrichmentKey(id), &enriched)
	if err != nil || !found {
		t.Fatalf("enrichment result not cached (found=%v err=%v)", found, err)
	}
	if len(enriched) != 1 || enriched[0].Name != "The Anchor" {
		t.Errorf("unexpected enrichment result: %+v", enriched)
	}
}

func TestRunUnparsableRoutingDefaultsToConfirm(t *testing.T) {
	inv := &fakeInvoker{}
	inv.script(llm.ToolRouteTurn, `{"acknowledgment":"","intent":"launch_rocket"}`)

	s := newTestScheduler(t, inv, &availability.StaticSource{Now: fixedNow}, nil, nil)

	sink := &collectSink{}
	s.Run(context.Background(), Request{
		ParticipantA: "ana", ParticipantB: "ben",
		Turns: turns("thanks!"),
	}, stream.NewEmitter(sink))

	if got := sink.ofType(stream.TypeError); len(got) != 0 {
		t.Fatalf("routing garbage must not fail the request: %s", got[0].Message)
	}
	acks := sink.ofType(stream.TypeAcknowledgment)
	if len(acks) != 1 || acks[0].Message != defaultAcknowledgment {
		t.Errorf("expected default acknowledgment, got %+v", acks)
	}
	if got := sink.ofType(stream.TypeContent); len(got) != 1 {
		t.Fatalf("expected the confirm branch's content envelope, got %d", len(got))
	}
}

func TestRunVenueSearchFailureIsNonFatal(t *testing.T) {
	inv := &fakeInvoker{}
	inv.script(llm.ToolRouteTurn, routeHandleEvent)
	inv.script(llm.ToolBuildTemplate, `{
		"intent":"lunch","title":"lunch","duration_minutes":60,
		"event_type":"restaurant","calendar_type":"personal"}`)
	inv.script(llm.ToolSelectSlotAndVenue, `{"slot_index":0,"venue_index":-1,"rationale":"First opening that fits."}`)

	searcher := &fakeSearcher{err: fmt.Errorf("places quota exhausted")}
	s := newTestScheduler(t, inv, &availability.StaticSource{Now: fixedNow, HorizonDays: 3}, searcher, nil)

	sink := &collectSink{}
	s.Run(context.Background(), Request{
		ParticipantA: "ana", ParticipantB: "ben",
		Turns: turns("lunch soon"),
	}, stream.NewEmitter(sink))

	if got := sink.ofType(stream.TypeError); len(got) != 0 {
		t.Fatalf("venue failure must not fail the request: %s", got[0].Message)
	}
	events := sink.ofType(stream.TypeEvent)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Event.VenueName != "" {
		t.Error("event should have no venue after a failed search")
	}
}

func TestPairKeyIsOrderInsensitive(t *testing.T) {
	if PairKey("ana", "ben") != PairKey("ben", "ana") {
		t.Error("pair key must not depend on participant order")
	}
	if PairKey("ana", "ben") == PairKey("ana", "carol") {
		t.Error("different pairs must get different keys")
	}
}
