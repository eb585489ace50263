package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playblocks/playblocks-api-go/pkg/database"
)

// GetMyUsage returns recent usage for the calling API key.
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	var usage []database.APIUsage
	h.DB.Where("key_id = ?", apiKey.ID).Order("date desc").Limit(30).Find(&usage)

	totalRequests := 0
	totalTasks := 0
	totalBlocks := 0
	for _, u := range usage {
		totalRequests += u.RequestCount
		totalTasks += u.TotalTasks
		totalBlocks += u.TotalBlocks
	}

	today := time.Now().Format("2006-01-02")
	todayRequests := 0
	for _, u := range usage {
		if u.Date == today {
			todayRequests = u.RequestCount
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":       apiKey.Name,
		"rate_limit":     apiKey.RateLimit,
		"today_requests": todayRequests,
		"total_requests": totalRequests,
		"total_tasks":    totalTasks,
		"total_blocks":   totalBlocks,
		"daily_usage":    usage,
	})
}
