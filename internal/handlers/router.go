package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker func(ctx context.Context) error

type HandlerManager struct {
	authMiddleware   *AuthMiddleware
	authHandler      *AuthHandler
	sessionHandler   *SessionHandler
	deckHandler      *DeckHandler
	cardHandler      *CardHandler
	dashboardHandler *DashboardHandler
	exportHandler    *ExportHandler

	allowedOrigins []string
	healthCheck    HealthChecker
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	allowedOrigins []string,
	healthCheck HealthChecker,
) *HandlerManager {
	return &HandlerManager{
		authMiddleware:   NewAuthMiddleware(logger, serviceManager.Auth()),
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		sessionHandler:   NewSessionHandler(serviceManager.Session(), logger),
		deckHandler:      NewDeckHandler(serviceManager.Deck(), serviceManager.Engagement(), logger),
		cardHandler:      NewCardHandler(serviceManager.Card(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), logger),
		exportHandler:    NewExportHandler(serviceManager.Export(), logger),
		allowedOrigins:   allowedOrigins,
		healthCheck:      healthCheck,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(hm.corsMiddleware())

	router.GET("/health", hm.health)

	v1 := router.Group("/api/v1")

	// Public auth routes
	authPublic := v1.Group("/auth")
	{
		authPublic.POST("/register", hm.authHandler.Register)
		authPublic.POST("/login", hm.authHandler.Login)
		authPublic.POST("/refresh", hm.authHandler.Refresh)
	}

	protected := v1.Group("")
	protected.Use(hm.authMiddleware.RequireAuth())

	protected.GET("/auth/me", hm.authHandler.Me)

	// Test session routes
	tests := protected.Group("/tests")
	{
		tests.POST("/start", hm.sessionHandler.StartTest)
		tests.POST("/submit-answer", hm.sessionHandler.SubmitAnswer)
		tests.POST("/complete", hm.sessionHandler.CompleteTest)

		tests.GET("/sessions/:session_id/results", hm.sessionHandler.GetResults)
		tests.GET("/sessions/:session_id/summary", hm.sessionHandler.GetSummary)
		tests.GET("/sessions/:session_id/export", hm.exportHandler.ExportSession)

		tests.GET("/history", hm.sessionHandler.GetHistory)
		tests.GET("/history/export", hm.exportHandler.ExportHistory)
		tests.GET("/stats", hm.sessionHandler.GetStats)
		tests.GET("/leaderboard", hm.sessionHandler.GetLeaderboard)
		tests.GET("/random-deck", hm.sessionHandler.GetRandomDeck)
	}

	// Deck routes
	decks := protected.Group("/decks")
	{
		decks.POST("", hm.deckHandler.CreateDeck)
		decks.GET("", hm.deckHandler.ListDecks)
		decks.GET("/my", hm.deckHandler.ListMyDecks)
		decks.GET("/public", hm.deckHandler.ListPublicDecks)
		decks.GET("/favorites", hm.deckHandler.ListFavoriteDecks)
		decks.GET("/:id", hm.deckHandler.GetDeck)
		decks.PATCH("/:id", hm.deckHandler.UpdateDeck)
		decks.DELETE("/:id", hm.deckHandler.DeleteDeck)

		decks.POST("/:id/like", hm.deckHandler.LikeDeck)
		decks.DELETE("/:id/like", hm.deckHandler.UnlikeDeck)
		decks.POST("/:id/favorite", hm.deckHandler.FavoriteDeck)
		decks.DELETE("/:id/favorite", hm.deckHandler.UnfavoriteDeck)

		// Card management
		decks.POST("/:id/cards", hm.cardHandler.CreateCard)
		decks.GET("/:id/cards", hm.cardHandler.ListCards)
		decks.GET("/:id/cards/:card_id", hm.cardHandler.GetCard)
		decks.PATCH("/:id/cards/:card_id", hm.cardHandler.UpdateCard)
		decks.DELETE("/:id/cards/:card_id", hm.cardHandler.DeleteCard)
	}

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("", hm.dashboardHandler.GetDashboard)
		dashboard.GET("/discover", hm.dashboardHandler.Discover)
		dashboard.GET("/subjects", hm.dashboardHandler.GetSubjects)
		dashboard.POST("/quick-test", hm.dashboardHandler.QuickTest)
	}
}

func (hm *HandlerManager) corsMiddleware() gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders: []string{headerTotalCount, headerTotalPages, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	if len(hm.allowedOrigins) == 0 || containsWildcard(hm.allowedOrigins) {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = hm.allowedOrigins
		config.AllowCredentials = true
	}

	return cors.New(config)
}

func (hm *HandlerManager) health(c *gin.Context) {
	if hm.healthCheck != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := hm.healthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "flashcard-service",
				"error":   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "flashcard-service",
	})
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
