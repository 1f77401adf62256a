package api

import (
	"github.com/gin-gonic/gin"

	"github.com/askwhyharsh/arlocations/internal/ratelimit"
	"github.com/askwhyharsh/arlocations/pkg/logger"
)

type WebSocketHandler interface {
	HandleWebSocket(c *gin.Context)
}

func SetupRoutes(r *gin.Engine, handler *Handler, wsHandler WebSocketHandler, rlMiddleware *ratelimit.Middleware, log logger.Logger) {
	// Apply global middleware
	r.Use(CORSMiddleware())
	r.Use(RequestTimeMiddleware())
	r.Use(RecoveryMiddleware(log))

	api := r.Group("/api")
	{
		// Health check (no rate limit)
		api.GET("/health", handler.Health)

		limited := api.Group("", rlMiddleware.IPRateLimit())

		session := limited.Group("/session")
		{
			session.POST("/create", handler.CreateSession)
		}

		sessions := limited.Group("/sessions")
		{
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.DeleteSession)
			sessions.POST("/:id/authorization", handler.UpdateAuthorization)
			sessions.GET("/:id/distances", handler.GetDistances)
		}

		location := limited.Group("/location")
		{
			location.POST("/update", handler.UpdateLocation)
		}

		limited.GET("/places", handler.ListPlaces)
		limited.GET("/labels/:id", handler.GetLabel)
	}

	// WebSocket route
	r.GET("/ws", rlMiddleware.IPRateLimit(), rlMiddleware.SessionID(), wsHandler.HandleWebSocket)
}
