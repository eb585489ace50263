package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playblocks/playblocks-api-go/pkg/ics"
	"github.com/playblocks/playblocks-api-go/pkg/models"
)

// eventRangeDays is the default lookahead when listing events with
// recurring blocks expanded.
const eventRangeDays = 60

// GetEvents returns imported events merged with recurring blocks expanded
// over the requested range (default: the next 60 days).
func (h *Handler) GetEvents(c *gin.Context) {
	rangeStart := time.Now()
	if t, err := time.Parse(time.RFC3339, c.Query("start")); err == nil {
		rangeStart = t
	}
	rangeEnd := rangeStart.AddDate(0, 0, eventRangeDays)
	if t, err := time.Parse(time.RFC3339, c.Query("end")); err == nil {
		rangeEnd = t
	}

	events, err := h.Events.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load events"})
		return
	}

	recurring, err := h.Recurring.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load recurring blocks"})
		return
	}

	events = append(events, ics.ExpandRecurring(recurring, rangeStart, rangeEnd)...)
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// SaveEvents upserts the supplied events into the imported set.
func (h *Handler) SaveEvents(c *gin.Context) {
	var req struct {
		Events []models.ExistingEvent `json:"events"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.Events.Append(req.Events)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": saved})
}

// ImportICS parses an iCalendar payload and stores its events.
func (h *Handler) ImportICS(c *gin.Context) {
	var req struct {
		ICSContent string `json:"icsContent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ICSContent == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "icsContent is required"})
		return
	}

	events, err := ics.Parse([]byte(req.ICSContent))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not parse ICS content"})
		return
	}

	saved, err := h.Events.Append(events)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imported": len(saved),
		"events":   saved,
	})
}

// ExportICS serializes the saved schedule as an iCalendar download.
func (h *Handler) ExportICS(c *gin.Context) {
	blocks, err := h.Schedule.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load schedule"})
		return
	}

	payload := ics.Export(blocks)
	if payload == "" {
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="playblocks.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(payload))
}
