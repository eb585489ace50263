package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playblocks/playblocks-api-go/pkg/ai"
	"github.com/playblocks/playblocks-api-go/pkg/auth"
	"github.com/playblocks/playblocks-api-go/pkg/database"
	"github.com/playblocks/playblocks-api-go/pkg/handlers"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	// Initialize DB
	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)

	aiClient, _ := ai.NewClient("", os.Getenv("ANTHROPIC_MODEL"))
	h := handlers.NewHandler(db, aiClient)

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "PlayBlocks Planner API (Go Version on Vercel)",
			"version": "1.0.0",
		})
	})

	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

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
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, r_req *http.Request) {
	r.ServeHTTP(w, r_req)
}
