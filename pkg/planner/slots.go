package planner

import (
	"sort"
	"time"

	"github.com/playblocks/playblocks-api-go/pkg/models"
)

// minSlotMinutes is the shortest gap worth offering for placement. Anything
// smaller is discarded and never reaches the placer.
const minSlotMinutes = 30

// fullDayEndMinutes is the widened window end (23:59) used when working
// hours are not enforced.
const fullDayEndMinutes = 23*60 + 59

// BuildSlots walks the calendar days from rangeStart to rangeEnd inclusive
// and returns the ordered free intervals left over after subtracting
// existing events from each day's working window.
//
// When the working window wraps past midnight (start > end, e.g. 21:00-02:00)
// the day contributes two sub-windows, evening first, both anchored to that
// calendar day's bookkeeping.
func BuildSlots(rangeStart, rangeEnd time.Time, prefs Preferences, events []models.ExistingEvent) []models.Slot {
	sorted := make([]models.ExistingEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var slots []models.Slot

	day := startOfDay(rangeStart)
	for !day.After(rangeEnd) {
		if prefs.PreferredDays[day.Weekday()] {
			for _, win := range dayWindows(day, prefs) {
				slots = append(slots, subtractEvents(day, win, sorted)...)
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return slots
}

type window struct {
	start time.Time
	end   time.Time
}

// dayWindows computes the working sub-windows for one calendar day.
func dayWindows(day time.Time, prefs Preferences) []window {
	startMin := prefs.WorkStartMinutes
	endMin := prefs.WorkEndMinutes
	if !prefs.EnforceWorkingHours {
		startMin = 0
		endMin = fullDayEndMinutes
	}

	if startMin <= endMin {
		return []window{{
			start: day.Add(time.Duration(startMin) * time.Minute),
			end:   day.Add(time.Duration(endMin) * time.Minute),
		}}
	}

	// Overnight wrap: an evening window up to midnight plus a morning
	// window from midnight, both belonging to this day.
	return []window{
		{start: day.Add(time.Duration(startMin) * time.Minute), end: day.Add(24 * time.Hour)},
		{start: day, end: day.Add(time.Duration(endMin) * time.Minute)},
	}
}

// subtractEvents carves a sub-window around the events dated on the given
// calendar day. Matching is by calendar date, not interval overlap: an event
// on this date blocks the window even if it technically sits outside it.
// That keeps "don't double book this day" semantics for events that fall
// outside working hours.
func subtractEvents(day time.Time, win window, events []models.ExistingEvent) []models.Slot {
	var out []models.Slot

	availableStart := win.start
	for _, ev := range events {
		if !sameDate(ev.Start, day) {
			continue
		}
		if availableStart.Before(ev.Start) {
			if s, ok := makeSlot(availableStart, ev.Start); ok {
				out = append(out, s)
			}
		}
		if ev.End.After(availableStart) {
			availableStart = ev.End
		}
	}

	if availableStart.Before(win.end) {
		if s, ok := makeSlot(availableStart, win.end); ok {
			out = append(out, s)
		}
	}

	return out
}

// makeSlot builds a slot for [start, end) if it clears the minimum length.
func makeSlot(start, end time.Time) (models.Slot, bool) {
	minutes := int(end.Sub(start).Minutes())
	if minutes < minSlotMinutes {
		return models.Slot{}, false
	}
	return models.Slot{Start: start, End: end, Duration: minutes}, true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(t, day time.Time) bool {
	t = t.In(day.Location())
	return t.Year() == day.Year() && t.Month() == day.Month() && t.Day() == day.Day()
}
