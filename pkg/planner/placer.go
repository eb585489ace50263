package planner

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/playblocks/playblocks-api-go/pkg/models"
)

const (
	// maxChunkMinutes caps a single scheduled block; larger tasks split
	// across multiple chunks, slots, and days.
	maxChunkMinutes = 90
	// minChunkMinutes is the smallest piece of usable slot time worth
	// scheduling a chunk into.
	minChunkMinutes = 15
	// minBreakMinutes is the floor below which no break blocks are emitted.
	minBreakMinutes = 5
	// defaultTaskMinutes is used when a task carries no usable duration.
	defaultTaskMinutes = 60

	dateKeyLayout = "2006-01-02"
)

// PlanResult is the full output of a placement run.
type PlanResult struct {
	ScheduledBlocks  []models.ScheduledBlock  `json:"scheduledBlocks"`
	UnscheduledTasks []models.UnscheduledTask `json:"unscheduledTasks"`
	DailyHours       map[string]float64       `json:"dailyHours"`
}

// PlaceTasks greedily assigns tasks to free slots. Tasks are taken in
// deadline-then-duration order; each task is split into chunks of at most 90
// minutes, with a break block after every chunk when breaks are enabled.
// Placement never fails: whatever cannot be placed is reported in
// UnscheduledTasks with the minutes still outstanding.
//
// The caller's slot slice is not modified; consumed slot state is tracked on
// an internal copy so later tasks can reuse the remainder of a slot an
// earlier task started.
func PlaceTasks(tasks []models.Task, slots []models.Slot, prefs Preferences) PlanResult {
	result := PlanResult{
		ScheduledBlocks:  []models.ScheduledBlock{},
		UnscheduledTasks: []models.UnscheduledTask{},
		DailyHours:       map[string]float64{},
	}

	sortedTasks := sortTasks(tasks)

	work := make([]models.Slot, len(slots))
	copy(work, slots)
	sort.Slice(work, func(i, j int) bool { return work[i].Start.Before(work[j].Start) })

	dailyCap := prefs.DailyCapHours()

	for _, task := range sortedTasks {
		task := normalizeTask(task)
		remaining := task.Duration

		for i := range work {
			if remaining <= 0 {
				break
			}

			slot := work[i]
			usable := slot.Duration - prefs.BreakMinutes
			if usable < minChunkMinutes {
				continue
			}

			chunk := remaining
			if usable < chunk {
				chunk = usable
			}
			if chunk > maxChunkMinutes {
				chunk = maxChunkMinutes
			}

			dateKey := slot.Start.Format(dateKeyLayout)
			if result.DailyHours[dateKey]+float64(chunk)/60 > dailyCap {
				continue
			}
			if task.Deadline != nil && slot.Start.After(*task.Deadline) {
				continue
			}

			chunkEnd := slot.Start.Add(time.Duration(chunk) * time.Minute)
			taskCopy := task
			result.ScheduledBlocks = append(result.ScheduledBlocks, models.ScheduledBlock{
				ID:       uuid.NewString(),
				Title:    task.Title,
				Start:    slot.Start,
				End:      chunkEnd,
				Duration: chunk,
				Type:     models.BlockTypeTask,
				TaskID:   task.ID,
				Task:     &taskCopy,
			})

			if prefs.BreakMinutes >= minBreakMinutes && slot.Duration >= chunk+prefs.BreakMinutes {
				result.ScheduledBlocks = append(result.ScheduledBlocks, models.ScheduledBlock{
					ID:         uuid.NewString(),
					Title:      "Break",
					Start:      chunkEnd,
					End:        chunkEnd.Add(time.Duration(prefs.BreakMinutes) * time.Minute),
					Duration:   prefs.BreakMinutes,
					Type:       models.BlockTypeBreak,
					BeforeTask: task.Title,
				})
			}

			result.DailyHours[dateKey] += float64(chunk) / 60
			work[i] = shrinkSlot(slot, chunkEnd.Add(time.Duration(prefs.BreakMinutes)*time.Minute))
			remaining -= chunk
		}

		if remaining > 0 {
			result.UnscheduledTasks = append(result.UnscheduledTasks, models.UnscheduledTask{
				Task:      task,
				Remaining: remaining,
			})
		}
	}

	annotateBreaks(result.ScheduledBlocks)
	return result
}

// sortTasks orders tasks for placement: deadlined tasks first (earliest
// deadline wins), then deadline-free tasks longest first. Priority labels do
// not affect the order.
func sortTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Deadline != nil && b.Deadline != nil:
			return a.Deadline.Before(*b.Deadline)
		case a.Deadline != nil:
			return true
		case b.Deadline != nil:
			return false
		default:
			return taskMinutes(a) > taskMinutes(b)
		}
	})
	return out
}

// normalizeTask applies the permissive per-task defaults: generated ID,
// placeholder title, 60-minute duration.
func normalizeTask(t models.Task) models.Task {
	if t.ID == "" {
		t.ID = "task-" + uuid.NewString()
	}
	if t.Title == "" {
		t.Title = "Untitled Task"
	}
	t.Duration = taskMinutes(t)
	return t
}

func taskMinutes(t models.Task) int {
	if t.Duration <= 0 {
		return defaultTaskMinutes
	}
	return t.Duration
}

// shrinkSlot advances a slot's start past a consumed chunk and break,
// recomputing the duration (clamped at zero).
func shrinkSlot(s models.Slot, newStart time.Time) models.Slot {
	s.Start = newStart
	minutes := int(s.End.Sub(newStart).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	s.Duration = minutes
	return s
}

// annotateBreaks fills each break block's AfterTask with the title of the
// next task block in output order. Context only, never a constraint.
func annotateBreaks(blocks []models.ScheduledBlock) {
	for i := range blocks {
		if blocks[i].Type != models.BlockTypeBreak {
			continue
		}
		for j := i + 1; j < len(blocks); j++ {
			if blocks[j].Type == models.BlockTypeTask {
				blocks[i].AfterTask = blocks[j].Title
				break
			}
		}
	}
}
