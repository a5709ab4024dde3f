package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_notifier/internal/config"
	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

type Handler struct {
	notificationService service.NotificationService
	logger              *logrus.Logger
	validate            *validator.Validate
	cfg                 *config.Config
}

func NewHandler(notificationService service.NotificationService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		notificationService: notificationService,
		logger:              logger,
		validate:            validator.New(),
		cfg:                 cfg,
	}
}

// @Summary Process all recent incidents
// @Description Run a wide notification pass over the last 24 hours using each user's own radius. Requires API key.
// @Tags Notifications
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} PassResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Another pass is in progress"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /notifications/process-all [post]
func (h *Handler) processAll(c *gin.Context) {
	h.runPass(c, models.ScanWide)
}

// @Summary Run a notification pass
// @Description Run a notification pass in the given mode. Requires API key.
// @Tags Notifications
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body RunPassRequest true "Pass mode"
// @Success 200 {object} PassResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Another pass is in progress"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /notifications/run [post]
func (h *Handler) runNotificationPass(c *gin.Context) {
	var input RunPassRequest
	log := h.logger.WithField("method", "runNotificationPass")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.runPass(c, models.ScanMode(input.Mode))
}

func (h *Handler) runPass(c *gin.Context, mode models.ScanMode) {
	log := h.logger.WithField("method", "runPass").WithField("mode", mode)

	result, err := h.notificationService.RunNotificationPass(c.Request.Context(), mode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPassInProgress):
			log.Warn("Notification pass already in progress")
			c.JSON(http.StatusConflict, gin.H{"error": "notification pass already in progress"})
		case errors.Is(err, service.ErrInvalidMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan mode"})
		default:
			log.WithError(err).Error("Failed to run notification pass")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, ModelToPassResponse(result))
}

// @Summary Get notification status
// @Description Get a summary of incidents and notifications over the last 24 hours. Requires API key.
// @Tags Notifications
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatusResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /notifications/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	log := h.logger.WithField("method", "getStatus")

	status, err := h.notificationService.GetStatus(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get status from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelToStatusResponse(status))
}

// @Summary Get application health status
// @Description Get health status of the application and its storage
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.notificationService.Health(c.Request.Context()); err != nil {
		h.logger.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
