package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Операционные маршруты движка уведомлений
	notifications := api.Group("/notifications", APIKeyAuthMiddleware(h.cfg, h.logger))
	{
		notifications.POST("/process-all", h.processAll)
		notifications.POST("/run", h.runNotificationPass)
		notifications.GET("/status", h.getStatus)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
