package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playblocks/playblocks-api-go/pkg/models"
	"github.com/playblocks/playblocks-api-go/pkg/planner"
)

// EventStore persists imported calendar events.
type EventStore struct {
	DB *gorm.DB
}

// Append upserts events by ID, generating IDs where missing, and returns
// the stored form.
func (s *EventStore) Append(events []models.ExistingEvent) ([]models.ExistingEvent, error) {
	out := make([]models.ExistingEvent, 0, len(events))
	for _, ev := range events {
		if ev.ID == "" {
			ev.ID = "imported-" + uuid.NewString()
		}
		if ev.Source == "" {
			ev.Source = "imported"
		}
		rec := EventRecord{
			ID: ev.ID, Title: ev.Title, Start: ev.Start, End: ev.End,
			Source: ev.Source, Location: ev.Location, Description: ev.Description,
		}
		if err := s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// List returns all stored events ordered by start time.
func (s *EventStore) List() ([]models.ExistingEvent, error) {
	var recs []EventRecord
	if err := s.DB.Order("start asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	events := make([]models.ExistingEvent, 0, len(recs))
	for _, r := range recs {
		events = append(events, models.ExistingEvent{
			ID: r.ID, Title: r.Title, Start: r.Start, End: r.End,
			Source: r.Source, Location: r.Location, Description: r.Description,
		})
	}
	return events, nil
}

// TaskStore persists the task list.
type TaskStore struct {
	DB *gorm.DB
}

// Replace swaps the stored task list, applying permissive defaults
// (generated IDs, 60-minute durations).
func (s *TaskStore) Replace(tasks []models.Task) ([]models.Task, error) {
	if err := s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TaskRecord{}).Error; err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = "task-" + uuid.NewString()
		}
		if t.Duration <= 0 {
			t.Duration = 60
		}
		rec := TaskRecord{
			ID: t.ID, Title: t.Title, Description: t.Description,
			Duration: t.Duration, Deadline: t.Deadline, Priority: t.Priority,
		}
		if err := s.DB.Create(&rec).Error; err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// List returns all stored tasks.
func (s *TaskStore) List() ([]models.Task, error) {
	var recs []TaskRecord
	if err := s.DB.Order("created_at asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(recs))
	for _, r := range recs {
		tasks = append(tasks, models.Task{
			ID: r.ID, Title: r.Title, Description: r.Description,
			Duration: r.Duration, Deadline: r.Deadline, Priority: r.Priority,
		})
	}
	return tasks, nil
}

// RecurringStore persists weekly recurring blocks.
type RecurringStore struct {
	DB *gorm.DB
}

func (s *RecurringStore) Replace(blocks []models.RecurringBlock) ([]models.RecurringBlock, error) {
	if err := s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&RecurringRecord{}).Error; err != nil {
		return nil, err
	}
	out := make([]models.RecurringBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.ID == "" {
			b.ID = "habit-" + uuid.NewString()
		}
		rec := RecurringRecord{
			ID: b.ID, Title: b.Title, DayOfWeek: b.DayOfWeek,
			StartTime: b.StartTime, EndTime: b.EndTime,
			BufferBefore: b.BufferBefore, BufferAfter: b.BufferAfter,
		}
		if err := s.DB.Create(&rec).Error; err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *RecurringStore) List() ([]models.RecurringBlock, error) {
	var recs []RecurringRecord
	if err := s.DB.Find(&recs).Error; err != nil {
		return nil, err
	}
	blocks := make([]models.RecurringBlock, 0, len(recs))
	for _, r := range recs {
		blocks = append(blocks, models.RecurringBlock{
			ID: r.ID, Title: r.Title, DayOfWeek: r.DayOfWeek,
			StartTime: r.StartTime, EndTime: r.EndTime,
			BufferBefore: r.BufferBefore, BufferAfter: r.BufferAfter,
		})
	}
	return blocks, nil
}

// ScheduleStore persists the saved plan.
type ScheduleStore struct {
	DB *gorm.DB
}

func (s *ScheduleStore) Replace(blocks []models.ScheduledBlock) ([]models.ScheduledBlock, error) {
	if err := s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&BlockRecord{}).Error; err != nil {
		return nil, err
	}
	out := make([]models.ScheduledBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.ID == "" {
			b.ID = "scheduled-" + uuid.NewString()
		}
		suggestions := ""
		if len(b.Suggestions) > 0 {
			if data, err := json.Marshal(b.Suggestions); err == nil {
				suggestions = string(data)
			}
		}
		rec := BlockRecord{
			ID: b.ID, Title: b.Title, Start: b.Start, End: b.End,
			Duration: b.Duration, Type: b.Type, TaskID: b.TaskID,
			BeforeTask: b.BeforeTask, AfterTask: b.AfterTask, Suggestions: suggestions,
		}
		if err := s.DB.Create(&rec).Error; err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *ScheduleStore) List() ([]models.ScheduledBlock, error) {
	var recs []BlockRecord
	if err := s.DB.Order("start asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	blocks := make([]models.ScheduledBlock, 0, len(recs))
	for _, r := range recs {
		b := models.ScheduledBlock{
			ID: r.ID, Title: r.Title, Start: r.Start, End: r.End,
			Duration: r.Duration, Type: r.Type, TaskID: r.TaskID,
			BeforeTask: r.BeforeTask, AfterTask: r.AfterTask,
		}
		if r.Suggestions != "" {
			_ = json.Unmarshal([]byte(r.Suggestions), &b.Suggestions)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// PreferenceStore persists the single preference document as raw JSON so
// callers can merge partial updates the way the UI sends them.
type PreferenceStore struct {
	DB *gorm.DB
}

func defaultPreferenceDoc() map[string]any {
	return map[string]any{
		"mode":           "flexi",
		"workHoursStart": "09:00",
		"workHoursEnd":   "17:00",
		"maxHoursPerDay": 8,
		"breakMinutes":   15,
		"preferredDays":  []int{1, 2, 3, 4, 5},
	}
}

// Get returns the stored document, or the defaults when nothing is saved.
func (s *PreferenceStore) Get() (map[string]any, error) {
	var rec PreferenceRecord
	err := s.DB.First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return defaultPreferenceDoc(), nil
	}
	if err != nil {
		return nil, err
	}

	doc := map[string]any{}
	if err := json.Unmarshal([]byte(rec.Data), &doc); err != nil {
		return defaultPreferenceDoc(), nil
	}
	return doc, nil
}

// GetInput decodes the stored document into the planner's input form via a
// JSON round trip, so unknown keys pass through harmlessly.
func (s *PreferenceStore) GetInput() (planner.PreferencesInput, error) {
	doc, err := s.Get()
	if err != nil {
		return planner.PreferencesInput{}, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return planner.PreferencesInput{}, err
	}
	var in planner.PreferencesInput
	if err := json.Unmarshal(data, &in); err != nil {
		return planner.PreferencesInput{}, err
	}
	return in, nil
}

// Update shallow-merges the patch into the stored document.
func (s *PreferenceStore) Update(patch map[string]any) (map[string]any, error) {
	doc, err := s.Get()
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	rec := PreferenceRecord{ID: 1, Data: string(data), UpdatedAt: time.Now()}
	if err := s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		return nil, err
	}
	return doc, nil
}
