package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
	"github.com/1gassner/energy-management-mvp-sub002/internal/notify"
	"github.com/1gassner/energy-management-mvp-sub002/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *notify.Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, hub *notify.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: hub, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Health endpoint
	router.GET("/health", h.health)

	api := router.Group("/api/v1")
	{
		api.GET("/alerts", h.listAlerts)
		api.POST("/alerts/:id/resolve", h.resolveAlert)
		api.POST("/alerts/:id/read", h.markAlertRead)
		api.GET("/insights", h.getInsights)
		api.POST("/runs/generate", h.triggerGenerate)
		api.POST("/runs/resolve", h.triggerAutoResolve)
	}

	// WebSocket subscription (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
