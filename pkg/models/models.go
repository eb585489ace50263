package models

import "time"

// Task is a unit of work to be placed on the calendar.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Duration    int        `json:"duration"` // minutes; defaulted to 60 when missing
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    string     `json:"priority,omitempty"`
}

// ExistingEvent is a committed calendar occupant (imported event or an
// expanded recurring block). The planner never reschedules these.
type ExistingEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Source      string    `json:"source,omitempty"` // "imported" | "recurring"
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

// RecurringBlock is a weekly commitment (e.g., a standing class) that gets
// expanded into concrete ExistingEvents over a planning range.
type RecurringBlock struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DayOfWeek    int    `json:"dayOfWeek"` // 0 (Sun) - 6 (Sat)
	StartTime    string `json:"startTime"` // HH:MM
	EndTime      string `json:"endTime"`   // HH:MM
	BufferBefore int    `json:"bufferBefore,omitempty"` // minutes
	BufferAfter  int    `json:"bufferAfter,omitempty"`  // minutes
}

// Slot is a free time interval offered for placement. Duration is kept in
// minutes and recomputed whenever Start advances.
type Slot struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration"`
}

// Block types for ScheduledBlock.
const (
	BlockTypeTask  = "task"
	BlockTypeBreak = "break"
)

// ScheduledBlock is a committed interval in the generated plan, either a
// task chunk or a break between chunks.
type ScheduledBlock struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Duration    int       `json:"duration"` // minutes
	Type        string    `json:"type"`     // "task" or "break"
	TaskID      string    `json:"taskId,omitempty"`
	Task        *Task     `json:"task,omitempty"`
	BeforeTask  string    `json:"beforeTask,omitempty"`
	AfterTask   string    `json:"afterTask,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// UnscheduledTask is a task that could not be fully placed, with the
// minutes still outstanding after any partial chunks were scheduled.
type UnscheduledTask struct {
	Task
	Remaining int `json:"remaining"`
}
