package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPreferences returns the stored preference document (defaults when
// nothing has been saved yet).
func (h *Handler) GetPreferences(c *gin.Context) {
	doc, err := h.Preferences.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": doc})
}

// UpdatePreferences shallow-merges the request body into the stored
// document and returns the merged result.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	patch := map[string]any{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.Preferences.Update(patch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "preferences": doc})
}
