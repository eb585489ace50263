package planner

import (
	"strconv"
	"strings"
	"time"
)

// Scheduling modes.
const (
	ModeStrict = "strict"
	ModeFlexi  = "flexi"
)

// flexiAllowance is how far past the daily cap flexi mode may go.
const flexiAllowance = 1.2

// PreferencesInput is the raw preference document as supplied by callers.
// Zero/absent fields fall back to defaults during Normalize; pointer fields
// distinguish "not set" from an explicit zero.
type PreferencesInput struct {
	Mode                string  `json:"mode,omitempty"`
	WorkHoursStart      string  `json:"workHoursStart,omitempty"`
	WorkHoursEnd        string  `json:"workHoursEnd,omitempty"`
	EnforceWorkingHours *bool   `json:"enforceWorkingHours,omitempty"`
	MaxHoursPerDay      float64 `json:"maxHoursPerDay,omitempty"`
	BreakMinutes        *int    `json:"breakMinutes,omitempty"`
	PreferredDays       []int   `json:"preferredDays,omitempty"`
}

// Preferences is the normalized scheduling policy the planner operates on.
// All defaulting happens once in Normalize, never inside the algorithms.
type Preferences struct {
	Mode                string
	WorkStartMinutes    int // minutes after midnight
	WorkEndMinutes      int
	EnforceWorkingHours bool
	MaxHoursPerDay      float64
	BreakMinutes        int
	PreferredDays       map[time.Weekday]bool
}

// DefaultPreferences returns the policy used when a caller supplies nothing:
// flexi mode, 09:00-17:00, 8h/day, 15-minute breaks, Mon-Fri.
func DefaultPreferences() Preferences {
	return PreferencesInput{}.Normalize()
}

// Normalize resolves the raw document into a Preferences value, applying
// defaults for anything absent or unparseable.
func (in PreferencesInput) Normalize() Preferences {
	p := Preferences{
		Mode:                ModeFlexi,
		WorkStartMinutes:    9 * 60,
		WorkEndMinutes:      17 * 60,
		EnforceWorkingHours: true,
		MaxHoursPerDay:      8,
		BreakMinutes:        15,
	}

	if in.Mode == ModeStrict {
		p.Mode = ModeStrict
	}
	if m, ok := parseClock(in.WorkHoursStart); ok {
		p.WorkStartMinutes = m
	}
	if m, ok := parseClock(in.WorkHoursEnd); ok {
		p.WorkEndMinutes = m
	}
	if in.EnforceWorkingHours != nil {
		p.EnforceWorkingHours = *in.EnforceWorkingHours
	}
	if in.MaxHoursPerDay > 0 {
		p.MaxHoursPerDay = in.MaxHoursPerDay
	}
	if in.BreakMinutes != nil && *in.BreakMinutes >= 0 {
		p.BreakMinutes = *in.BreakMinutes
	}

	days := in.PreferredDays
	if len(days) == 0 {
		days = []int{1, 2, 3, 4, 5}
	}
	p.PreferredDays = make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			p.PreferredDays[time.Weekday(d)] = true
		}
	}

	return p
}

// DailyCapHours is the effective per-day ceiling: the configured maximum in
// strict mode, or 20% over it in flexi mode.
func (p Preferences) DailyCapHours() float64 {
	if p.Mode == ModeStrict {
		return p.MaxHoursPerDay
	}
	return p.MaxHoursPerDay * flexiAllowance
}

// parseClock parses an HH:MM string into minutes after midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
