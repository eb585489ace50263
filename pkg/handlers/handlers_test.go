package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/playblocks/playblocks-api-go/pkg/database"
)

func setupHandler(t *testing.T) *Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&database.APIKey{}, &database.APIUsage{}, &database.MasterUser{},
		&database.EventRecord{}, &database.TaskRecord{}, &database.RecurringRecord{},
		&database.BlockRecord{}, &database.PreferenceRecord{},
	); err != nil {
		t.Fatalf("could not migrate test database: %v", err)
	}

	return NewHandler(db, nil)
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("could not marshal request body: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	c.Request.Header.Set("Content-Type", "application/json")

	handler(c)
	return w
}

func TestGeneratePlan_PlacesTasks(t *testing.T) {
	h := setupHandler(t)

	resp := postJSON(t, h.GeneratePlan, map[string]any{
		"tasks": []map[string]any{
			{"id": "task-1", "title": "Write report", "duration": 120},
		},
		"startDate": "2025-01-06T00:00:00Z",
		"endDate":   "2025-01-10T00:00:00Z",
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Success         bool `json:"success"`
		ScheduledBlocks []struct {
			Type string `json:"type"`
		} `json:"scheduledBlocks"`
		UnscheduledTasks []any `json:"unscheduledTasks"`
		Stats            struct {
			TotalTasks int `json:"totalTasks"`
			Scheduled  int `json:"scheduled"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}

	if !body.Success {
		t.Error("expected success true")
	}
	if len(body.ScheduledBlocks) == 0 {
		t.Error("expected scheduled blocks")
	}
	if body.Stats.TotalTasks != 1 || body.Stats.Scheduled != 1 {
		t.Errorf("unexpected stats: %+v", body.Stats)
	}
	if len(body.UnscheduledTasks) != 0 {
		t.Errorf("expected no unscheduled tasks, got %d", len(body.UnscheduledTasks))
	}

	// Break blocks carry fallback suggestions when no AI client is configured
	foundBreak := false
	for _, b := range body.ScheduledBlocks {
		if b.Type == "break" {
			foundBreak = true
		}
	}
	if !foundBreak {
		t.Error("expected a break block after a full 90-minute chunk")
	}
}

func TestGeneratePlan_RequiresTasks(t *testing.T) {
	h := setupHandler(t)

	resp := postJSON(t, h.GeneratePlan, map[string]any{"tasks": []any{}})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.Code)
	}
}

func TestGeneratePlan_RejectsInvertedRange(t *testing.T) {
	h := setupHandler(t)

	resp := postJSON(t, h.GeneratePlan, map[string]any{
		"tasks":     []map[string]any{{"title": "Anything", "duration": 30}},
		"startDate": "2025-01-10T00:00:00Z",
		"endDate":   "2025-01-06T00:00:00Z",
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.Code)
	}
}

func TestGeneratePlan_UsesStoredPreferences(t *testing.T) {
	h := setupHandler(t)

	if _, err := h.Preferences.Update(map[string]any{"mode": "strict", "maxHoursPerDay": 2}); err != nil {
		t.Fatalf("could not store preferences: %v", err)
	}

	resp := postJSON(t, h.GeneratePlan, map[string]any{
		"tasks": []map[string]any{
			{"id": "task-1", "title": "Deep work", "duration": 240},
		},
		"startDate": "2025-01-06T00:00:00Z",
		"endDate":   "2025-01-07T00:00:00Z",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		UnscheduledTasks []struct {
			Remaining int `json:"remaining"`
		} `json:"unscheduledTasks"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}

	// 2h/day strict cap fits one 90-minute chunk per day over the 2-day range
	if len(body.UnscheduledTasks) != 1 {
		t.Fatalf("expected 1 unscheduled task, got %d", len(body.UnscheduledTasks))
	}
	if body.UnscheduledTasks[0].Remaining != 60 {
		t.Errorf("expected 60 minutes remaining, got %d", body.UnscheduledTasks[0].Remaining)
	}
}

func TestValidateInput_DuplicateIDs(t *testing.T) {
	h := setupHandler(t)

	resp := postJSON(t, h.ValidateInput, map[string]any{
		"tasks": []map[string]any{
			{"id": "task-1", "title": "First", "duration": 30},
			{"id": "task-1", "title": "Second"},
		},
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Valid    bool     `json:"valid"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if body.Valid {
		t.Error("expected invalid for duplicate task ids")
	}
	if len(body.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", body.Errors)
	}
	// Second task has no duration, so defaulting is flagged
	if len(body.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", body.Warnings)
	}
}

func TestValidateInput_EmptyTasks(t *testing.T) {
	h := setupHandler(t)

	resp := postJSON(t, h.ValidateInput, map[string]any{"tasks": []any{}})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if body.Valid || len(body.Errors) != 1 {
		t.Errorf("expected single validation error, got %+v", body)
	}
}

func TestSaveAndGetTasks(t *testing.T) {
	h := setupHandler(t)

	resp := postJSON(t, h.SaveTasks, map[string]any{
		"tasks": []map[string]any{
			{"title": "Read chapter"},
		},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Tasks []struct {
			ID       string `json:"id"`
			Duration int    `json:"duration"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if len(body.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(body.Tasks))
	}
	if body.Tasks[0].ID == "" {
		t.Error("expected generated task ID")
	}
	if body.Tasks[0].Duration != 60 {
		t.Errorf("expected default duration 60, got %d", body.Tasks[0].Duration)
	}
}

func TestParseTasks_UnavailableWithoutAI(t *testing.T) {
	h := setupHandler(t)

	resp := postJSON(t, h.ParseTasks, map[string]any{"syllabusText": "Week 1: read chapter 1"})
	if resp.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.Code)
	}
}
