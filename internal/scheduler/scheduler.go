// Package scheduler runs the multi-stage pipeline that turns a scheduling
// conversation plus both parties' availability into a finalized event or a
// set of alternative times. Stages run strictly in sequence per request;
// the only concurrency is the optional fire-and-forget enrichment search.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getahuddle/huddle/internal/availability"
	"github.com/getahuddle/huddle/internal/cache"
	"github.com/getahuddle/huddle/internal/llm"
	"github.com/getahuddle/huddle/internal/slots"
	"github.com/getahuddle/huddle/internal/stream"
	"github.com/getahuddle/huddle/internal/venues"
	"github.com/getahuddle/huddle/pkg/models"
)

// maxVenuesShown caps how many venues a suggestions turn lists at once;
// the rest wait for a show-more turn.
const maxVenuesShown = 3

// Config wires the pipeline's collaborators.
type Config struct {
	// LLM is the completion service behind every reasoning stage.
	LLM llm.Invoker
	// Availability answers free/busy queries.
	Availability availability.Source
	// Venues finds candidate places; nil disables venue search.
	Venues venues.Searcher
	// Cache stores cross-turn context and enrichment results.
	Cache cache.Store
	// Policy tunes the alternatives path; unset fields fall back to the
	// built-in defaults.
	Policy Policy
	// Logger receives server-side diagnostics; nil means no-op.
	Logger *DebugLogger
	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// Scheduler executes scheduling requests against a fixed set of
// collaborators. One Scheduler serves many concurrent requests; all
// mutable cross-request state lives in the cache.
type Scheduler struct {
	llm        llm.Invoker
	avail      availability.Source
	venues     venues.Searcher
	cache      cache.Store
	logger     *DebugLogger
	background *Registry
	now        func() time.Time

	// policy is guarded so a config reload can swap it while requests run.
	policyMu sync.RWMutex
	policy   Policy
}

// New validates the configuration and builds a Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("scheduler requires a completion service")
	}
	if cfg.Availability == nil {
		return nil, fmt.Errorf("scheduler requires an availability source")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("scheduler requires a cache store")
	}
	policy := cfg.Policy.withDefaults()
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		llm:        cfg.LLM,
		avail:      cfg.Availability,
		venues:     cfg.Venues,
		cache:      cfg.Cache,
		policy:     policy,
		logger:     logger,
		background: NewRegistry(logger),
		now:        now,
	}, nil
}

// Background exposes the enrichment registry, mainly so shutdown paths
// and tests can wait for in-flight tasks.
func (s *Scheduler) Background() *Registry {
	return s.background
}

// Policy returns the active alternatives policy.
func (s *Scheduler) Policy() Policy {
	s.policyMu.RLock()
	defer s.policyMu.RUnlock()
	return s.policy
}

// SetPolicy swaps the active policy, filling unset fields from the
// defaults. Requests already in flight keep the policy they started with
// for any value they have read.
func (s *Scheduler) SetPolicy(p Policy) {
	s.policyMu.Lock()
	s.policy = p.withDefaults()
	s.policyMu.Unlock()
}

// Request is one inbound scheduling turn.
type Request struct {
	// ParticipantA and ParticipantB identify the two parties.
	ParticipantA string
	ParticipantB string
	// Turns is the conversation so far, latest turn last.
	Turns []models.ConversationTurn
	// LocationA and LocationB bias venue search toward the midpoint
	// between the parties when both are set.
	LocationA *models.Coordinates
	LocationB *models.Coordinates
	// Edit marks this turn as an edit of the pair's cached template.
	// An edit with no cached template fails; it is never treated as a
	// request to build a fresh one.
	Edit bool
	// AllowConflict books an explicitly requested time even when it
	// collides with existing events; otherwise alternatives are offered.
	AllowConflict bool
}

// Run executes the pipeline for one request, emitting progress and the
// outcome on the given emitter. Whatever happens, at most one error
// envelope is sent and the stream is closed exactly once.
func (s *Scheduler) Run(ctx context.Context, req Request, emitter *stream.Emitter) {
	defer emitter.Close()
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Log("pipeline panic for %s/%s: %v", req.ParticipantA, req.ParticipantB, rec)
			emitter.Fail(genericFailureMessage)
		}
	}()

	if err := s.run(ctx, req, emitter); err != nil {
		s.logger.Log("pipeline failed for %s/%s: %v", req.ParticipantA, req.ParticipantB, err)
		emitter.Fail(genericFailureMessage)
	}
}

func (s *Scheduler) run(ctx context.Context, req Request, emitter *stream.Emitter) error {
	if req.ParticipantA == "" || req.ParticipantB == "" {
		return fmt.Errorf("both participants are required")
	}
	if len(req.Turns) == 0 {
		return fmt.Errorf("conversation is empty")
	}

	decision := s.classifyIntent(ctx, req.Turns)
	emitter.Acknowledge(decision.Acknowledgment)

	switch decision.Intent {
	case models.RoutingHandleEvent:
		return s.handleEvent(ctx, req, emitter)
	case models.RoutingSuggestActivities:
		return s.suggestActivities(ctx, req, emitter)
	case models.RoutingShowMoreEvents:
		return s.showMoreEvents(ctx, req, emitter)
	default:
		return s.confirmScheduling(ctx, req, emitter)
	}
}

// handleEvent is the main path: template, availability, slots, venues,
// then either a finalized event or alternatives.
func (s *Scheduler) handleEvent(ctx context.Context, req Request, emitter *stream.Emitter) error {
	pairKey := PairKey(req.ParticipantA, req.ParticipantB)

	tmpl, cached, venuesInvalidated, err := s.resolveTemplate(ctx, req, pairKey)
	if err != nil {
		return err
	}

	emitter.Progress("Checking both calendars...")
	pair, err := s.avail.FreeBusy(ctx, req.ParticipantA, req.ParticipantB, tmpl.CalendarType)
	if err != nil {
		return fmt.Errorf("availability: %w", err)
	}

	candidates, flags := slots.Generate(
		slots.Input{FreeA: pair.FreeA(), FreeB: pair.FreeB(), Horizon: pair.Horizon},
		slots.Constraints{
			DurationMinutes: tmpl.DurationMinutes,
			Buffer:          tmpl.TravelBuffer,
			Hours:           tmpl.Hours,
			Dates:           tmpl.Dates,
			ExplicitStart:   tmpl.ExplicitStart,
		},
	)
	s.logger.Log("generated %d candidates for %s (noCommonTime=%v explicitConflict=%v)",
		len(candidates), pairKey, flags.HasNoCommonTime, flags.HasExplicitTimeConflict)

	if flags.HasNoCommonTime && !(flags.HasExplicitTimeConflict && req.AllowConflict) {
		message, err := s.generateAlternatives(ctx, req.Turns, pair, tmpl)
		if err != nil {
			return fmt.Errorf("alternatives: %w", err)
		}
		emitter.Content(message)
		s.writeCache(ctx, pairKey, models.CacheEntry{Template: tmpl, Places: cachedPlaces(cached)})
		return nil
	}

	places := s.resolveVenues(ctx, req, tmpl, cached, venuesInvalidated, emitter)

	emitter.Progress("Locking in the best option...")
	event, err := s.finalize(ctx, req.Turns, tmpl, candidates, places, flags.HasExplicitTimeConflict)
	if err != nil {
		return err
	}

	emitter.Content(event.Rationale)
	emitter.Event(event)
	s.writeCache(ctx, pairKey, models.CacheEntry{
		Template:       tmpl,
		Places:         places,
		PreviousResult: event,
	})
	return nil
}

// resolveTemplate picks generate or edit mode. A turn explicitly marked
// as an edit always runs edit mode, failing when nothing is cached. An
// unmarked turn for a pair with a live cached template is also treated as
// an edit; otherwise a fresh template is built.
func (s *Scheduler) resolveTemplate(ctx context.Context, req Request, pairKey string) (*models.EventTemplate, *models.CacheEntry, bool, error) {
	if req.Edit {
		return s.editTemplate(ctx, req.Turns, pairKey)
	}

	var probe models.CacheEntry
	found, err := cache.GetJSON(ctx, s.cache, pairKey, &probe)
	if err != nil {
		s.logger.Log("cache probe for %s failed: %v", pairKey, err)
	}
	if found && probe.Template != nil {
		return s.editTemplate(ctx, req.Turns, pairKey)
	}

	tmpl, err := s.buildTemplate(ctx, req.Turns)
	if err != nil {
		return nil, nil, false, err
	}
	return tmpl, nil, false, nil
}

// resolveVenues returns the venue list for finalization: cached venues if
// still valid, otherwise a fresh search. Search failures are non-fatal;
// an empty list is the safe default. A thin fresh result additionally
// kicks off a background enrichment search.
func (s *Scheduler) resolveVenues(ctx context.Context, req Request, tmpl *models.EventTemplate, cached *models.CacheEntry, invalidated bool, emitter *stream.Emitter) []models.Place {
	if !tmpl.NeedsVenue() || s.venues == nil {
		return nil
	}
	if cached != nil && len(cached.Places) > 0 && !invalidated {
		return cached.Places
	}

	emitter.Progress("Looking for a good spot...")
	searchReq := venues.SearchRequest{Query: venueQuery(tmpl), Midpoint: midpointOf(req)}
	places, err := s.venues.Search(ctx, searchReq)
	if err != nil {
		s.logger.Log("venue search failed, continuing without venues: %v", err)
		places = nil
	}

	if len(places) < s.Policy().MinVenuesBeforeAlternatives {
		id := s.startEnrichment(searchReq)
		emitter.EnhancementPending(id)
	}
	return places
}

// startEnrichment launches a detached second venue search. Its result is
// written only to the cache under the enrichment id; the request's stream
// may be long closed by the time it lands.
func (s *Scheduler) startEnrichment(searchReq venues.SearchRequest) string {
	wider := searchReq
	wider.MaxResults = 2 * venues.DefaultMaxResults
	wider.RadiusMeters = 2 * venues.DefaultRadiusMeters

	return s.background.Start(func(ctx context.Context, id string) error {
		places, err := s.venues.Search(ctx, wider)
		if err != nil {
			return fmt.Errorf("enrichment search: %w", err)
		}
		return cache.SetJSON(ctx, s.cache, EnrichmentKey(id), places, cacheTTL)
	})
}

// suggestActivities builds a template for the vague request and answers
// with venue ideas instead of booking anything.
func (s *Scheduler) suggestActivities(ctx context.Context, req Request, emitter *stream.Emitter) error {
	tmpl, err := s.buildTemplate(ctx, req.Turns)
	if err != nil {
		return err
	}

	places := s.resolveVenues(ctx, req, tmpl, nil, false, emitter)
	if len(places) == 0 {
		emitter.Content("I couldn't find anything matching that nearby. Want to try a different kind of place?")
		return nil
	}

	shown := places
	if len(shown) > maxVenuesShown {
		shown = shown[:maxVenuesShown]
	}
	emitter.Content("Here are some ideas:\n" + renderVenues(shown))
	s.writeCache(ctx, PairKey(req.ParticipantA, req.ParticipantB), models.CacheEntry{Template: tmpl, Places: places})
	return nil
}

// showMoreEvents lists the cached venues beyond the ones already shown.
func (s *Scheduler) showMoreEvents(ctx context.Context, req Request, emitter *stream.Emitter) error {
	var entry models.CacheEntry
	found, err := cache.GetJSON(ctx, s.cache, PairKey(req.ParticipantA, req.ParticipantB), &entry)
	if err != nil {
		return fmt.Errorf("load cached places: %w", err)
	}
	if !found || len(entry.Places) <= maxVenuesShown {
		emitter.Content("That's everything I found. Want me to search for something else?")
		return nil
	}
	emitter.Content("A few more options:\n" + renderVenues(entry.Places[maxVenuesShown:]))
	return nil
}

// confirmScheduling is the safe no-op branch: nothing is mutated, the
// acknowledgment plus a short confirmation is the whole answer.
func (s *Scheduler) confirmScheduling(ctx context.Context, req Request, emitter *stream.Emitter) error {
	var entry models.CacheEntry
	found, err := cache.GetJSON(ctx, s.cache, PairKey(req.ParticipantA, req.ParticipantB), &entry)
	if err != nil {
		s.logger.Log("cache read on confirm failed: %v", err)
	}
	if found && entry.PreviousResult != nil {
		emitter.Content(fmt.Sprintf("You're all set: %s on %s.",
			entry.PreviousResult.Title,
			entry.PreviousResult.StartTime.Format(slotTimeLayout)))
		return nil
	}
	emitter.Content("Sounds good! Tell me what you'd like to schedule and I'll take it from there.")
	return nil
}

// writeCache persists cross-turn context. Cache write failures are logged
// and swallowed; losing continuity is better than failing the turn.
func (s *Scheduler) writeCache(ctx context.Context, pairKey string, entry models.CacheEntry) {
	if err := cache.SetJSON(ctx, s.cache, pairKey, entry, cacheTTL); err != nil {
		s.logger.Log("cache write for %s failed: %v", pairKey, err)
	}
}

func cachedPlaces(entry *models.CacheEntry) []models.Place {
	if entry == nil {
		return nil
	}
	return entry.Places
}

func venueQuery(tmpl *models.EventTemplate) string {
	if tmpl.VenueQuery != "" {
		return tmpl.VenueQuery
	}
	return tmpl.EventType
}

func midpointOf(req Request) *models.Coordinates {
	if req.LocationA == nil || req.LocationB == nil {
		return nil
	}
	mid := venues.Midpoint(*req.LocationA, *req.LocationB)
	return &mid
}
