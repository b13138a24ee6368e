package handlers

import (
	"weatherbox/internal/logger"
	"weatherbox/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	hub      *Hub
}

// NewHandler constructs a new HTTP handler with dependencies. hub may be nil
// when the live push is disabled.
func NewHandler(services *service.Service, log *logger.Logger, hub *Hub) *Handler {
	return &Handler{services: services, log: log, hub: hub}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// WebSocket live push (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

// Dashboard reads stay open; tagging writes require a token.
func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/current", h.current)
		api.GET("/history", h.history)
		api.GET("/history/pressure", h.pressureHistory)
		api.GET("/history/week", h.weekHistory)
		api.GET("/analysis", h.analysis)
		api.GET("/predictions", h.predictions)
		api.GET("/events", h.listEvents)
		api.POST("/events", h.userIdMiddleware, h.tagEvent)
	}
}
