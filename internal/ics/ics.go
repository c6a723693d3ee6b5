// Package ics renders finalized events as iCalendar documents and
// add-to-calendar links. External calendars receive the buffer-inclusive
// calendar block, not the bare event times.
package ics

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/getahuddle/huddle/pkg/models"
)

const productID = "-//huddle//EN"

// googleTimeLayout is the compact UTC form Google Calendar URLs expect.
const googleTimeLayout = "20060102T150405Z"

// Render encodes the event's calendar block as an iCalendar document.
func Render(event *models.FinalEvent) ([]byte, error) {
	block := event.CalendarBlock()

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uuid.New().String())
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, block.Start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, block.End)
	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, ve)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode icalendar: %w", err)
	}
	return buf.Bytes(), nil
}

// Links builds the add-to-calendar URLs for the event.
func Links(event *models.FinalEvent) (models.CalendarLinks, error) {
	body, err := Render(event)
	if err != nil {
		return models.CalendarLinks{}, err
	}
	return models.CalendarLinks{
		Google:  googleLink(event),
		Outlook: outlookLink(event),
		ICS:     "data:text/calendar;base64," + base64.StdEncoding.EncodeToString(body),
	}, nil
}

func googleLink(event *models.FinalEvent) string {
	block := event.CalendarBlock()
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", event.Title)
	q.Set("dates", block.Start.UTC().Format(googleTimeLayout)+"/"+block.End.UTC().Format(googleTimeLayout))
	if event.Description != "" {
		q.Set("details", event.Description)
	}
	if event.Location != "" {
		q.Set("location", event.Location)
	}
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}

func outlookLink(event *models.FinalEvent) string {
	block := event.CalendarBlock()
	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("subject", event.Title)
	q.Set("startdt", block.Start.UTC().Format(time.RFC3339))
	q.Set("enddt", block.End.UTC().Format(time.RFC3339))
	if event.Description != "" {
		q.Set("body", event.Description)
	}
	if event.Location != "" {
		q.Set("location", event.Location)
	}
	return "https://outlook.live.com/calendar/0/deeplink/compose?" + q.Encode()
}
