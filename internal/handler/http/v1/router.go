package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Шаги отправки заявления
	api.POST("/generate-incident-id", h.generateIncidentID)
	api.POST("/upload-media", h.uploadMedia)
	api.POST("/submit-form", h.submitForm)

	// Прокси обратного геокодирования
	api.GET("/geocode", h.geocode)

	api.GET("/reports/:incidentId", h.getReport)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
