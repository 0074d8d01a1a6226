package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quizforge/mockexam-backend/internal/config"
	"github.com/quizforge/mockexam-backend/internal/handler"
	"github.com/quizforge/mockexam-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session     *handler.SessionHandler
	QuestionSet *handler.QuestionSetHandler
	History     *handler.HistoryHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── REST API ──────────────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/question-sets", handlers.QuestionSet.ListSets)
		api.POST("/question-sets", handlers.QuestionSet.ImportSet)

		session := api.Group("/session")
		{
			session.POST("/start", handlers.Session.StartSession)
			session.GET("/state", handlers.Session.GetState)
			session.POST("/answer", handlers.Session.SelectAnswer)
			session.DELETE("/answer", handlers.Session.ClearAnswer)
			session.POST("/bookmark", handlers.Session.ToggleBookmark)
			session.POST("/navigate", handlers.Session.Navigate)
			session.POST("/submit", handlers.Session.Submit)
			session.GET("/results", handlers.Session.GetResults)
		}

		api.GET("/history", handlers.History.ListAttempts)
		api.GET("/history/:id", handlers.History.GetAttempt)
	}

	// ─── WebSocket event stream ────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/session/stream", handlers.WS.SessionStream)
	}

	return router
}
