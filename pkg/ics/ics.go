// Package ics converts between iCalendar payloads and the planner's event
// and block types: parsing imported calendars, expanding weekly recurring
// blocks into concrete events, and serializing a generated schedule.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/playblocks/playblocks-api-go/pkg/models"
)

const productID = "-//PlayBlocks//playblocks-api-go//EN"

// Parse reads an ICS payload and returns the events it contains. Individual
// malformed VEVENTs are skipped; the payload as a whole must parse.
func Parse(body []byte) ([]models.ExistingEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := make([]models.ExistingEvent, 0)
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ve.GetEndAt()
		if err != nil {
			continue
		}
		if !end.After(start) {
			continue
		}

		ev := models.ExistingEvent{
			ID:     uuid.NewString(),
			Title:  "Untitled",
			Start:  start,
			End:    end,
			Source: "imported",
		}
		if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
			ev.ID = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
			ev.Title = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
			ev.Location = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
			ev.Description = p.Value
		}
		events = append(events, ev)
	}

	return events, nil
}

// Export serializes scheduled blocks as a VCALENDAR. Returns "" when there
// is nothing to export.
func Export(blocks []models.ScheduledBlock) string {
	if len(blocks) == 0 {
		return ""
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	now := time.Now().UTC()
	for _, block := range blocks {
		uid := block.ID
		if uid == "" {
			uid = uuid.NewString()
		}
		title := block.Title
		if title == "" {
			title = "Focus Block"
		}

		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(now)
		ev.SetStartAt(block.Start.UTC())
		ev.SetEndAt(block.End.UTC())
		ev.SetSummary(strings.ReplaceAll(title, "\n", " "))
		if block.TaskID != "" {
			ev.SetDescription("Task " + block.TaskID)
		}
	}

	return cal.Serialize()
}

var rruleWeekdays = []rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// ExpandRecurring turns weekly recurring blocks into concrete events within
// [rangeStart, rangeEnd], applying each block's before/after buffers. Blocks
// with unparseable times or inverted windows are skipped.
func ExpandRecurring(blocks []models.RecurringBlock, rangeStart, rangeEnd time.Time) []models.ExistingEvent {
	events := make([]models.ExistingEvent, 0)

	for _, block := range blocks {
		if block.DayOfWeek < 0 || block.DayOfWeek > 6 {
			continue
		}
		sh, sm, ok := parseClock(block.StartTime)
		if !ok {
			continue
		}
		eh, em, ok := parseClock(block.EndTime)
		if !ok {
			continue
		}

		dtstart := time.Date(rangeStart.Year(), rangeStart.Month(), rangeStart.Day(),
			sh, sm, 0, 0, rangeStart.Location())

		r, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   dtstart,
			Byweekday: []rrule.Weekday{rruleWeekdays[block.DayOfWeek]},
		})
		if err != nil {
			continue
		}

		for _, occ := range r.Between(dtstart.Add(-time.Minute), rangeEnd, true) {
			start := occ.Add(-time.Duration(block.BufferBefore) * time.Minute)
			end := time.Date(occ.Year(), occ.Month(), occ.Day(), eh, em, 0, 0, occ.Location()).
				Add(time.Duration(block.BufferAfter) * time.Minute)
			if !end.After(start) {
				continue
			}

			events = append(events, models.ExistingEvent{
				ID:     block.ID + "-" + occ.Format(time.RFC3339),
				Title:  block.Title,
				Start:  start,
				End:    end,
				Source: "recurring",
			})
		}
	}

	return events
}

// parseClock splits an HH:MM string into its hour and minute components.
func parseClock(s string) (int, int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
