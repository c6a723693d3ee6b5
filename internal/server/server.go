// Package server exposes the scheduling pipeline over HTTP. The schedule
// endpoint streams line-delimited JSON envelopes as the pipeline runs.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/getahuddle/huddle/internal/cache"
	"github.com/getahuddle/huddle/internal/scheduler"
	"github.com/getahuddle/huddle/internal/stream"
	"github.com/getahuddle/huddle/pkg/models"
)

const maxJSONBodyBytes = 1 << 20 // 1 MiB

// Server serves the scheduling API.
type Server struct {
	Sched *scheduler.Scheduler
	Cache cache.Store
}

// Routes builds the handler tree with middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/schedule", s.handleSchedule)
	mux.HandleFunc("/v1/enrichment/", s.handleEnrichment)

	return s.loggingMiddleware(s.recoverMiddleware(mux))
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic: %v", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// scheduleRequest is the wire shape of one scheduling turn.
type scheduleRequest struct {
	ParticipantA  string                    `json:"participant_a"`
	ParticipantB  string                    `json:"participant_b"`
	Turns         []models.ConversationTurn `json:"turns"`
	LocationA     *models.Coordinates       `json:"location_a,omitempty"`
	LocationB     *models.Coordinates       `json:"location_b,omitempty"`
	Edit          bool                      `json:"edit,omitempty"`
	AllowConflict bool                      `json:"allow_conflict,omitempty"`
}

// handleSchedule runs the pipeline and streams envelopes as NDJSON. The
// connection stays open until the pipeline closes its stream.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if !requireJSONPost(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	req, err := decodeScheduleRequest(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	sink := stream.NewWriterSink(streamWriter(w))
	s.Sched.Run(r.Context(), scheduler.Request{
		ParticipantA:  req.ParticipantA,
		ParticipantB:  req.ParticipantB,
		Turns:         req.Turns,
		LocationA:     req.LocationA,
		LocationB:     req.LocationB,
		Edit:          req.Edit,
		AllowConflict: req.AllowConflict,
	}, stream.NewEmitter(sink))
}

// handleEnrichment returns the cached result of a background search, or
// 404 while it has not landed (or has expired).
func (s *Server) handleEnrichment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/enrichment/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "enrichment id is required", http.StatusBadRequest)
		return
	}

	var places []models.Place
	found, err := cache.GetJSON(r.Context(), s.Cache, scheduler.EnrichmentKey(id), &places)
	if err != nil {
		log.Printf("enrichment lookup failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "not ready", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": places})
}

func decodeScheduleRequest(body io.Reader) (scheduleRequest, error) {
	var req scheduleRequest

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return scheduleRequest{}, fmt.Errorf("invalid JSON body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return scheduleRequest{}, fmt.Errorf("body must contain a single JSON object")
	}

	if req.ParticipantA == "" || req.ParticipantB == "" {
		return scheduleRequest{}, fmt.Errorf("participant_a and participant_b are required")
	}
	if len(req.Turns) == 0 {
		return scheduleRequest{}, fmt.Errorf("turns is required")
	}
	for i, turn := range req.Turns {
		if strings.TrimSpace(turn.Text) == "" {
			return scheduleRequest{}, fmt.Errorf("turns[%d] requires text", i)
		}
		if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
			return scheduleRequest{}, fmt.Errorf("turns[%d] has unknown role %q", i, turn.Role)
		}
	}
	return req, nil
}

func requireJSONPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "application/json") {
		http.Error(w, "content-type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// statusWriter records the status code for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// flushingWriter pushes each envelope to the client as it is written.
type flushingWriter struct {
	w io.Writer
	f http.Flusher
}

func (fw *flushingWriter) Write(p []byte) (int, error) {
	return fw.w.Write(p)
}

func (fw *flushingWriter) Flush() {
	if fw.f != nil {
		fw.f.Flush()
	}
}

// streamWriter wraps the response so the sink can flush per envelope.
func streamWriter(w http.ResponseWriter) io.Writer {
	f, _ := w.(http.Flusher)
	return &flushingWriter{w: w, f: f}
}
