package availability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/getahuddle/huddle/internal/slots"
	"github.com/getahuddle/huddle/pkg/models"
)

// basicAuthTransport adds Basic Auth and a stable User-Agent to each request.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "huddle/1.0")
	return t.Transport.RoundTrip(req)
}

// CalDAVSource reads busy intervals from a CalDAV server. It covers
// providers without a freebusy API by querying VEVENTs in the horizon
// and treating each as busy time.
type CalDAVSource struct {
	client *caldav.Client
	// CalendarPaths maps "participant/calendarType" to a calendar
	// collection path on the server.
	CalendarPaths map[string]string
	// HorizonDays bounds the query; DefaultHorizonDays when zero.
	HorizonDays int
}

// NewCalDAVSource connects to a CalDAV endpoint with basic auth and
// discovers calendar collections for the given participants.
func NewCalDAVSource(ctx context.Context, endpoint, username, password string) (*CalDAVSource, error) {
	transport := &basicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	client, err := caldav.NewClient(&http.Client{Transport: transport}, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}
	return &CalDAVSource{client: client, CalendarPaths: map[string]string{}}, nil
}

// FreeBusy queries both participants' calendars for events inside the
// horizon and returns their busy intervals.
func (s *CalDAVSource) FreeBusy(ctx context.Context, participantA, participantB string, calendarType models.CalendarType) (Pair, error) {
	days := s.HorizonDays
	if days <= 0 {
		days = DefaultHorizonDays
	}
	start := time.Now().Truncate(time.Hour)
	end := start.AddDate(0, 0, days)

	pathA, err := s.calendarPath(participantA, calendarType)
	if err != nil {
		return Pair{}, err
	}
	pathB, err := s.calendarPath(participantB, calendarType)
	if err != nil {
		return Pair{}, err
	}

	pair := Pair{Horizon: models.TimeSlot{Start: start, End: end}}
	pair.BusyA, err = s.queryBusy(ctx, pathA, start, end)
	if err != nil {
		return Pair{}, fmt.Errorf("query %s: %w", participantA, err)
	}
	pair.BusyB, err = s.queryBusy(ctx, pathB, start, end)
	if err != nil {
		return Pair{}, fmt.Errorf("query %s: %w", participantB, err)
	}
	return pair, nil
}

func (s *CalDAVSource) calendarPath(participant string, calendarType models.CalendarType) (string, error) {
	if p, ok := s.CalendarPaths[participant+"/"+string(calendarType)]; ok {
		return p, nil
	}
	return "", fmt.Errorf("no caldav calendar configured for %s (%s)", participant, calendarType)
}

func (s *CalDAVSource) queryBusy(ctx context.Context, calendarPath string, start, end time.Time) ([]models.TimeSlot, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{
				Name:  ical.CompEvent,
				Props: []string{ical.PropDateTimeStart, ical.PropDateTimeEnd, ical.PropSummary},
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: start,
				End:   end,
			}},
		},
	}

	objects, err := s.client.QueryCalendar(ctx, calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("calendar query: %w", err)
	}

	var busy []models.TimeSlot
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, event := range obj.Data.Events() {
			eventStart, err := event.DateTimeStart(time.Local)
			if err != nil {
				continue
			}
			eventEnd, err := event.DateTimeEnd(time.Local)
			if err != nil || !eventEnd.After(eventStart) {
				continue
			}
			busy = append(busy, models.TimeSlot{Start: eventStart, End: eventEnd})
		}
	}
	return slots.MergeBusy(busy), nil
}
