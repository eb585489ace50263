package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playblocks/playblocks-api-go/pkg/ai"
	"github.com/playblocks/playblocks-api-go/pkg/ics"
	"github.com/playblocks/playblocks-api-go/pkg/models"
	"github.com/playblocks/playblocks-api-go/pkg/planner"
)

// defaultRangeDays is how far ahead we plan when the caller gives no range.
const defaultRangeDays = 7

// maxSuggestionCalls bounds the generation fan-out per plan request.
const maxSuggestionCalls = 10

type planRequest struct {
	Tasks          []models.Task             `json:"tasks"`
	Preferences    *planner.PreferencesInput `json:"preferences"`
	ExistingEvents []models.ExistingEvent    `json:"existingEvents"`
	StartDate      string                    `json:"startDate"`
	EndDate        string                    `json:"endDate"`
}

// GeneratePlan builds free slots for the requested range and places the
// caller's tasks into them. Anything not supplied in the request body is
// pulled from storage: preferences, imported events and recurring blocks.
func (h *Handler) GeneratePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Tasks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tasks array is required and must not be empty"})
		return
	}

	rangeStart := time.Now()
	if t, err := time.Parse(time.RFC3339, req.StartDate); err == nil {
		rangeStart = t
	}
	rangeEnd := rangeStart.AddDate(0, 0, defaultRangeDays)
	if t, err := time.Parse(time.RFC3339, req.EndDate); err == nil {
		rangeEnd = t
	}
	if rangeEnd.Before(rangeStart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must not be before startDate"})
		return
	}

	prefs, err := h.resolvePreferences(req.Preferences)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load preferences"})
		return
	}

	events := req.ExistingEvents
	if len(events) == 0 {
		stored, err := h.Events.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load events"})
			return
		}
		events = stored

		recurring, err := h.Recurring.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load recurring blocks"})
			return
		}
		events = append(events, ics.ExpandRecurring(recurring, rangeStart, rangeEnd)...)
	}

	slots := planner.BuildSlots(rangeStart, rangeEnd, prefs, events)
	result := planner.PlaceTasks(req.Tasks, slots, prefs)

	h.attachSuggestions(c.Request.Context(), result.ScheduledBlocks)

	h.RecordUsage(c, len(req.Tasks), len(result.ScheduledBlocks))

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"scheduledBlocks":  result.ScheduledBlocks,
		"unscheduledTasks": result.UnscheduledTasks,
		"dailyHours":       result.DailyHours,
		"stats": gin.H{
			"totalTasks":     len(req.Tasks),
			"scheduled":      len(req.Tasks) - len(result.UnscheduledTasks),
			"unscheduled":    len(result.UnscheduledTasks),
			"availableSlots": len(slots),
		},
	})
}

// resolvePreferences normalizes the request's preference document, falling
// back to the stored one when the request carries none.
func (h *Handler) resolvePreferences(in *planner.PreferencesInput) (planner.Preferences, error) {
	if in != nil {
		return in.Normalize(), nil
	}

	input, err := h.Preferences.GetInput()
	if err != nil {
		return planner.Preferences{}, err
	}
	return input.Normalize(), nil
}

// attachSuggestions fills break blocks with activity ideas. Generated
// suggestions are best-effort; every break block ends up with the fallback
// list when generation is unavailable or fails.
func (h *Handler) attachSuggestions(ctx context.Context, blocks []models.ScheduledBlock) {
	breaks := make([]*models.ScheduledBlock, 0)
	for i := range blocks {
		if blocks[i].Type == models.BlockTypeBreak {
			breaks = append(breaks, &blocks[i])
		}
	}
	if len(breaks) == 0 {
		return
	}

	if h.AI != nil {
		genCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		defer cancel()

		var wg sync.WaitGroup
		for i, block := range breaks {
			if i >= maxSuggestionCalls {
				break
			}
			wg.Add(1)
			go func(b *models.ScheduledBlock) {
				defer wg.Done()
				suggestions, err := h.AI.SuggestBreaks(genCtx, b.BeforeTask, b.AfterTask, b.Duration)
				if err == nil && len(suggestions) > 0 {
					b.Suggestions = suggestions
				}
			}(block)
		}
		wg.Wait()
	}

	for _, b := range breaks {
		if len(b.Suggestions) == 0 {
			b.Suggestions = ai.FallbackSuggestions
		}
	}
}

// ValidateInput checks a plan request without scheduling anything. Errors
// block generation; warnings describe defaulting the placer would apply.
func (h *Handler) ValidateInput(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := make([]string, 0)
	warnings := make([]string, 0)

	if len(req.Tasks) == 0 {
		errs = append(errs, "tasks array is required and must not be empty")
	}

	seen := map[string]bool{}
	now := time.Now()
	for _, task := range req.Tasks {
		if task.ID != "" {
			if seen[task.ID] {
				errs = append(errs, "duplicate task id: "+task.ID)
			}
			seen[task.ID] = true
		}
		if task.Duration <= 0 {
			warnings = append(warnings, "task '"+task.Title+"' has no duration; 60 minutes will be assumed")
		}
		if task.Deadline != nil && task.Deadline.Before(now) {
			warnings = append(warnings, "task '"+task.Title+"' has a deadline in the past")
		}
	}

	if req.StartDate != "" {
		if _, err := time.Parse(time.RFC3339, req.StartDate); err != nil {
			errs = append(errs, "startDate is not RFC 3339")
		}
	}
	if req.EndDate != "" {
		if _, err := time.Parse(time.RFC3339, req.EndDate); err != nil {
			errs = append(errs, "endDate is not RFC 3339")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    len(errs) == 0,
		"errors":   errs,
		"warnings": warnings,
	})
}
