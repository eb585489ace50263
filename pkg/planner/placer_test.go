package planner

import (
	"testing"
	"time"

	"github.com/playblocks/playblocks-api-go/pkg/models"
)

func daySlot(day time.Time, startHour, endHour int) models.Slot {
	start := at(day, startHour, 0)
	end := at(day, endHour, 0)
	return models.Slot{Start: start, End: end, Duration: int(end.Sub(start).Minutes())}
}

func taskBlocks(blocks []models.ScheduledBlock) []models.ScheduledBlock {
	var out []models.ScheduledBlock
	for _, b := range blocks {
		if b.Type == models.BlockTypeTask {
			out = append(out, b)
		}
	}
	return out
}

func placedMinutes(blocks []models.ScheduledBlock, taskID string) int {
	total := 0
	for _, b := range blocks {
		if b.Type == models.BlockTypeTask && b.TaskID == taskID {
			total += b.Duration
		}
	}
	return total
}

func TestPlaceTasks_SingleTaskWithBreak(t *testing.T) {
	prefs := DefaultPreferences()
	tasks := []models.Task{{ID: "t1", Title: "Essay", Duration: 60}}
	slots := []models.Slot{daySlot(monday, 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	if len(result.UnscheduledTasks) != 0 {
		t.Fatalf("Expected no unscheduled tasks, got %d", len(result.UnscheduledTasks))
	}
	if len(result.ScheduledBlocks) != 2 {
		t.Fatalf("Expected 1 task block + 1 break block, got %d", len(result.ScheduledBlocks))
	}

	work := result.ScheduledBlocks[0]
	if work.Type != models.BlockTypeTask || !work.Start.Equal(at(monday, 9, 0)) || !work.End.Equal(at(monday, 10, 0)) {
		t.Errorf("Expected task block 09:00-10:00, got %s %v-%v", work.Type, work.Start, work.End)
	}

	br := result.ScheduledBlocks[1]
	if br.Type != models.BlockTypeBreak || !br.Start.Equal(at(monday, 10, 0)) || !br.End.Equal(at(monday, 10, 15)) {
		t.Errorf("Expected break block 10:00-10:15, got %s %v-%v", br.Type, br.Start, br.End)
	}
	if br.BeforeTask != "Essay" {
		t.Errorf("Expected break to follow Essay, got %q", br.BeforeTask)
	}

	if result.DailyHours[monday.Format("2006-01-02")] != 1.0 {
		t.Errorf("Expected 1.0 hours recorded, got %f", result.DailyHours[monday.Format("2006-01-02")])
	}
}

func TestPlaceTasks_LargeTaskChunksAcrossDays(t *testing.T) {
	prefs := DefaultPreferences()
	deadline := at(monday.AddDate(0, 0, 2), 23, 59)
	tasks := []models.Task{{ID: "big", Title: "Project", Duration: 500, Deadline: &deadline}}
	slots := []models.Slot{
		daySlot(monday, 9, 17),
		daySlot(monday.AddDate(0, 0, 1), 9, 17),
	}

	result := PlaceTasks(tasks, slots, prefs)

	// One chunk per slot per scan: two day-slots yield two 90-minute
	// chunks, the rest is reported back.
	placed := placedMinutes(result.ScheduledBlocks, "big")
	if placed != 180 {
		t.Errorf("Expected 180 minutes placed, got %d", placed)
	}
	if len(result.UnscheduledTasks) != 1 {
		t.Fatalf("Expected leftover reported, got %d unscheduled", len(result.UnscheduledTasks))
	}
	if placed+result.UnscheduledTasks[0].Remaining != 500 {
		t.Errorf("Conservation violated: %d + %d != 500", placed, result.UnscheduledTasks[0].Remaining)
	}

	days := map[string]bool{}
	for _, b := range taskBlocks(result.ScheduledBlocks) {
		if b.Duration > 90 {
			t.Errorf("Chunk exceeds 90-minute cap: %d", b.Duration)
		}
		if b.Start.After(deadline) {
			t.Errorf("Chunk starts after deadline: %v", b.Start)
		}
		days[b.Start.Format("2006-01-02")] = true
	}
	if len(days) < 2 {
		t.Errorf("Expected chunks spread over at least 2 days, got %d", len(days))
	}
}

func TestPlaceTasks_InsufficientCapacityReportsRemainder(t *testing.T) {
	prefs := PreferencesInput{Mode: ModeStrict, MaxHoursPerDay: 2}.Normalize()
	tasks := []models.Task{{ID: "big", Title: "Thesis", Duration: 500}}
	slots := []models.Slot{daySlot(monday, 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	if len(result.UnscheduledTasks) != 1 {
		t.Fatalf("Expected 1 unscheduled task, got %d", len(result.UnscheduledTasks))
	}
	placed := placedMinutes(result.ScheduledBlocks, "big")
	remaining := result.UnscheduledTasks[0].Remaining
	if placed+remaining != 500 {
		t.Errorf("Conservation violated: placed %d + remaining %d != 500", placed, remaining)
	}
	if placed > 120 {
		t.Errorf("Strict 2h cap exceeded: %d minutes placed", placed)
	}
	if remaining <= 0 {
		t.Errorf("Expected positive remainder, got %d", remaining)
	}
}

func TestPlaceTasks_LongerTaskFirstWithoutDeadlines(t *testing.T) {
	prefs := DefaultPreferences()
	tasks := []models.Task{
		{ID: "short", Title: "Reading", Duration: 30},
		{ID: "long", Title: "Lab Report", Duration: 120},
	}
	slots := []models.Slot{daySlot(monday, 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	blocks := taskBlocks(result.ScheduledBlocks)
	if len(blocks) == 0 {
		t.Fatal("Expected scheduled blocks")
	}
	if blocks[0].TaskID != "long" {
		t.Errorf("Expected longer task placed first, got %q", blocks[0].TaskID)
	}
}

func TestPlaceTasks_DeadlinedTasksBeforeOthers(t *testing.T) {
	prefs := DefaultPreferences()
	soon := at(monday, 12, 0)
	later := at(monday.AddDate(0, 0, 3), 12, 0)
	tasks := []models.Task{
		{ID: "free", Title: "Free", Duration: 180},
		{ID: "later", Title: "Later", Duration: 60, Deadline: &later},
		{ID: "soon", Title: "Soon", Duration: 60, Deadline: &soon},
	}
	slots := []models.Slot{daySlot(monday, 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	blocks := taskBlocks(result.ScheduledBlocks)
	if len(blocks) < 3 {
		t.Fatalf("Expected at least 3 task blocks, got %d", len(blocks))
	}
	if blocks[0].TaskID != "soon" || blocks[1].TaskID != "later" {
		t.Errorf("Expected deadline order soon,later first; got %q,%q", blocks[0].TaskID, blocks[1].TaskID)
	}
}

func TestPlaceTasks_StrictVsFlexiDailyCap(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, models.Task{ID: string(rune('a' + i)), Title: "Block", Duration: 60})
	}
	slots := []models.Slot{daySlot(monday, 9, 18)}

	strict := PlaceTasks(tasks, slots, PreferencesInput{Mode: ModeStrict, MaxHoursPerDay: 6}.Normalize())
	if len(strict.UnscheduledTasks) != 1 {
		t.Errorf("Strict mode: expected 1 task over the 6h cap, got %d unscheduled", len(strict.UnscheduledTasks))
	}
	if got := strict.DailyHours[monday.Format("2006-01-02")]; got > 6 {
		t.Errorf("Strict mode exceeded cap: %f hours", got)
	}

	flexi := PlaceTasks(tasks, slots, PreferencesInput{Mode: ModeFlexi, MaxHoursPerDay: 6}.Normalize())
	if len(flexi.UnscheduledTasks) != 0 {
		t.Errorf("Flexi mode: expected all 7 hours to fit under 7.2h allowance, got %d unscheduled", len(flexi.UnscheduledTasks))
	}
}

func TestPlaceTasks_SlotShrinkPositionsNextTask(t *testing.T) {
	prefs := DefaultPreferences()
	tasks := []models.Task{
		{ID: "t1", Title: "First", Duration: 60},
		{ID: "t2", Title: "Second", Duration: 60},
	}
	slots := []models.Slot{daySlot(monday, 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	blocks := taskBlocks(result.ScheduledBlocks)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 task blocks, got %d", len(blocks))
	}
	if !blocks[1].Start.Equal(at(monday, 10, 15)) {
		t.Errorf("Expected second task at 10:15 (after chunk + break), got %v", blocks[1].Start)
	}
}

func TestPlaceTasks_NoBreakBlocksWhenBreaksDisabled(t *testing.T) {
	zero := 0
	prefs := PreferencesInput{BreakMinutes: &zero}.Normalize()
	tasks := []models.Task{
		{ID: "t1", Title: "First", Duration: 60},
		{ID: "t2", Title: "Second", Duration: 60},
	}
	slots := []models.Slot{daySlot(monday, 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	for _, b := range result.ScheduledBlocks {
		if b.Type == models.BlockTypeBreak {
			t.Errorf("Expected no break blocks with breaks disabled, got one at %v", b.Start)
		}
	}
	blocks := taskBlocks(result.ScheduledBlocks)
	if len(blocks) != 2 || !blocks[1].Start.Equal(blocks[0].End) {
		t.Errorf("Expected back-to-back task blocks, got %v then %v", blocks[0].End, blocks[1].Start)
	}
}

func TestPlaceTasks_SkipsSlotsTooSmallForAChunk(t *testing.T) {
	prefs := DefaultPreferences()
	tasks := []models.Task{{ID: "t1", Title: "Essay", Duration: 60}}
	// 25 usable minutes minus the 15-minute break leaves under the
	// 15-minute chunk floor.
	start := at(monday, 9, 0)
	slots := []models.Slot{{Start: start, End: start.Add(25 * time.Minute), Duration: 25}}

	result := PlaceTasks(tasks, slots, prefs)

	if len(result.ScheduledBlocks) != 0 {
		t.Errorf("Expected nothing scheduled, got %d blocks", len(result.ScheduledBlocks))
	}
	if len(result.UnscheduledTasks) != 1 || result.UnscheduledTasks[0].Remaining != 60 {
		t.Errorf("Expected task unscheduled with 60 remaining, got %+v", result.UnscheduledTasks)
	}
}

func TestPlaceTasks_DefaultsMissingDurationAndID(t *testing.T) {
	prefs := DefaultPreferences()
	tasks := []models.Task{{Title: "Mystery"}}
	slots := []models.Slot{daySlot(monday, 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	blocks := taskBlocks(result.ScheduledBlocks)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 task block, got %d", len(blocks))
	}
	if blocks[0].Duration != 60 {
		t.Errorf("Expected default 60-minute duration, got %d", blocks[0].Duration)
	}
	if blocks[0].TaskID == "" {
		t.Error("Expected a generated task ID")
	}
}

func TestPlaceTasks_DeadlineBlocksLateSlots(t *testing.T) {
	prefs := DefaultPreferences()
	deadline := at(monday, 12, 0)
	tasks := []models.Task{{ID: "t1", Title: "Quiz prep", Duration: 60, Deadline: &deadline}}
	slots := []models.Slot{daySlot(monday.AddDate(0, 0, 1), 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	if len(result.ScheduledBlocks) != 0 {
		t.Errorf("Expected no placement after deadline, got %d blocks", len(result.ScheduledBlocks))
	}
	if len(result.UnscheduledTasks) != 1 {
		t.Errorf("Expected task reported unscheduled, got %d", len(result.UnscheduledTasks))
	}
}

func TestPlaceTasks_BreakAnnotations(t *testing.T) {
	prefs := DefaultPreferences()
	tasks := []models.Task{
		{ID: "t1", Title: "First", Duration: 60},
		{ID: "t2", Title: "Second", Duration: 60},
	}
	slots := []models.Slot{daySlot(monday, 9, 17)}

	result := PlaceTasks(tasks, slots, prefs)

	var breaks []models.ScheduledBlock
	for _, b := range result.ScheduledBlocks {
		if b.Type == models.BlockTypeBreak {
			breaks = append(breaks, b)
		}
	}
	if len(breaks) != 2 {
		t.Fatalf("Expected 2 break blocks, got %d", len(breaks))
	}
	if breaks[0].AfterTask != "Second" {
		t.Errorf("Expected first break to lead into Second, got %q", breaks[0].AfterTask)
	}
	if breaks[1].AfterTask != "" {
		t.Errorf("Expected trailing break to have no AfterTask, got %q", breaks[1].AfterTask)
	}
}

func TestPlaceTasks_NoOverlappingBlocks(t *testing.T) {
	prefs := DefaultPreferences()
	deadline := at(monday, 17, 0)
	tasks := []models.Task{
		{ID: "a", Title: "A", Duration: 200, Deadline: &deadline},
		{ID: "b", Title: "B", Duration: 120},
		{ID: "c", Title: "C", Duration: 45},
	}
	slots := []models.Slot{
		daySlot(monday, 9, 12),
		daySlot(monday, 13, 17),
		daySlot(monday.AddDate(0, 0, 1), 9, 17),
	}

	result := PlaceTasks(tasks, slots, prefs)

	blocks := result.ScheduledBlocks
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			a, b := blocks[i], blocks[j]
			if a.Start.Before(b.End) && b.Start.Before(a.End) {
				t.Errorf("Blocks overlap: %q %v-%v and %q %v-%v",
					a.Title, a.Start, a.End, b.Title, b.Start, b.End)
			}
		}
	}
}
