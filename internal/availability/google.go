package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/getahuddle/huddle/pkg/models"
)

// GoogleSource reads free/busy data from the Google Calendar API.
// Participants map to calendar ids through the configured lookup; work and
// personal calendars may differ per participant.
type GoogleSource struct {
	service *calendar.Service
	// CalendarIDs maps "participant/calendarType" to a calendar id.
	// A participant with no entry falls back to their id as the
	// calendar id, which matches Google's primary-calendar convention.
	CalendarIDs map[string]string
	// HorizonDays bounds the query; DefaultHorizonDays when zero.
	HorizonDays int
}

// NewGoogleSource builds a source from OAuth client credentials and a
// stored token file, the same flow the auth command produces.
func NewGoogleSource(ctx context.Context, clientID, clientSecret, tokenFile string) (*GoogleSource, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("google client id and secret are required")
	}
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarReadonlyScope},
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
	}
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("load google token: %w", err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleSource{service: service}, nil
}

// FreeBusy issues one freebusy query covering both participants.
func (g *GoogleSource) FreeBusy(ctx context.Context, participantA, participantB string, calendarType models.CalendarType) (Pair, error) {
	days := g.HorizonDays
	if days <= 0 {
		days = DefaultHorizonDays
	}
	start := time.Now().Truncate(time.Hour)
	end := start.AddDate(0, 0, days)

	calA := g.calendarID(participantA, calendarType)
	calB := g.calendarID(participantB, calendarType)

	resp, err := g.service.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items: []*calendar.FreeBusyRequestItem{
			{Id: calA},
			{Id: calB},
		},
	}).Context(ctx).Do()
	if err != nil {
		return Pair{}, fmt.Errorf("freebusy query: %w", err)
	}

	pair := Pair{Horizon: models.TimeSlot{Start: start, End: end}}
	pair.BusyA, err = busyPeriods(resp, calA)
	if err != nil {
		return Pair{}, err
	}
	pair.BusyB, err = busyPeriods(resp, calB)
	if err != nil {
		return Pair{}, err
	}
	return pair, nil
}

func (g *GoogleSource) calendarID(participant string, calendarType models.CalendarType) string {
	if id, ok := g.CalendarIDs[participant+"/"+string(calendarType)]; ok {
		return id
	}
	return participant
}

func busyPeriods(resp *calendar.FreeBusyResponse, calendarID string) ([]models.TimeSlot, error) {
	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, fmt.Errorf("freebusy response missing calendar %q", calendarID)
	}
	var busy []models.TimeSlot
	for _, p := range cal.Busy {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("bad busy start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("bad busy end %q: %w", p.End, err)
		}
		busy = append(busy, models.TimeSlot{Start: start, End: end})
	}
	return busy, nil
}

// tokenFromFile reads a stored OAuth token.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return token, nil
}
