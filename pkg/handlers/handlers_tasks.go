package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/playblocks/playblocks-api-go/pkg/models"
)

// GetTasks returns the stored task list.
func (h *Handler) GetTasks(c *gin.Context) {
	tasks, err := h.Tasks.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// SaveTasks replaces the stored task list with the request body.
func (h *Handler) SaveTasks(c *gin.Context) {
	var req struct {
		Tasks []models.Task `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.Tasks.Replace(req.Tasks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": saved})
}

// ParseTasks extracts tasks from free-form syllabus text and appends them to
// the stored list.
func (h *Handler) ParseTasks(c *gin.Context) {
	var req struct {
		SyllabusText string `json:"syllabusText"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SyllabusText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "syllabusText is required"})
		return
	}
	if h.AI == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task extraction is not configured"})
		return
	}

	drafts, err := h.AI.ExtractTasks(c.Request.Context(), req.SyllabusText)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Task extraction failed", "detail": err.Error()})
		return
	}

	parsed := make([]models.Task, 0, len(drafts))
	for _, d := range drafts {
		parsed = append(parsed, d.ToTask("task-"+uuid.NewString()))
	}

	existing, err := h.Tasks.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load tasks"})
		return
	}

	saved, err := h.Tasks.Replace(append(existing, parsed...))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"parsedTasks": parsed,
		"tasks":       saved,
	})
}
