package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playblocks/playblocks-api-go/pkg/models"
)

// GetRecurring returns the stored weekly recurring blocks.
func (h *Handler) GetRecurring(c *gin.Context) {
	blocks, err := h.Recurring.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load recurring blocks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recurringBlocks": blocks})
}

// SaveRecurring replaces the stored recurring blocks.
func (h *Handler) SaveRecurring(c *gin.Context) {
	var req struct {
		RecurringBlocks []models.RecurringBlock `json:"recurringBlocks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, b := range req.RecurringBlocks {
		if b.DayOfWeek < 0 || b.DayOfWeek > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dayOfWeek must be between 0 and 6"})
			return
		}
	}

	saved, err := h.Recurring.Replace(req.RecurringBlocks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save recurring blocks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recurringBlocks": saved})
}

// GetSchedule returns the saved plan.
func (h *Handler) GetSchedule(c *gin.Context) {
	blocks, err := h.Schedule.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scheduledBlocks": blocks})
}

// SaveSchedule replaces the saved plan.
func (h *Handler) SaveSchedule(c *gin.Context) {
	var req struct {
		ScheduledBlocks []models.ScheduledBlock `json:"scheduledBlocks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.Schedule.Replace(req.ScheduledBlocks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "scheduledBlocks": saved})
}
