package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playblocks/playblocks-api-go/pkg/ai"
	"github.com/playblocks/playblocks-api-go/pkg/auth"
	"github.com/playblocks/playblocks-api-go/pkg/database"
	"github.com/playblocks/playblocks-api-go/pkg/handlers"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)

	aiClient, err := ai.NewClient("", os.Getenv("ANTHROPIC_MODEL"))
	if err != nil {
		log.Printf("AI features disabled: %v", err)
	}

	h := handlers.NewHandler(db, aiClient)

	r := gin.Default()

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "PlayBlocks Planner API (Go Version)",
			"version": "1.0.0",
		})
	})

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Planner Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/plan/generate", h.GeneratePlan)
		api.POST("/validate", h.ValidateInput)

		api.GET("/tasks", h.GetTasks)
		api.POST("/tasks", h.SaveTasks)
		api.POST("/tasks/parse", h.ParseTasks)

		api.GET("/events", h.GetEvents)
		api.POST("/events", h.SaveEvents)
		api.POST("/import/ics", h.ImportICS)
		api.GET("/export/ics", h.ExportICS)

		api.GET("/recurring", h.GetRecurring)
		api.POST("/recurring", h.SaveRecurring)

		api.GET("/schedule", h.GetSchedule)
		api.POST("/schedule", h.SaveSchedule)

		api.GET("/preferences", h.GetPreferences)
		api.POST("/preferences", h.UpdatePreferences)

		api.GET("/usage", h.GetMyUsage)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
