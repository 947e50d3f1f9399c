package handler

import (
	"net/http"
	"strconv"

	"github.com/edumitra/edumitra-backend/internal/middleware"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/edumitra/edumitra-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles the device registry and notification history.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterDevice godoc
// POST /api/v1/devices
// Registers (or re-binds) a push token to the current user.
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	var req model.RegisterDeviceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	device, err := h.notificationService.RegisterDevice(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"device": device})
}

// RemoveDevice godoc
// DELETE /api/v1/devices?token=...
func (h *NotificationHandler) RemoveDevice(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.notificationService.RemoveDevice(c.Request.Context(), claims.UserID, token); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Recent godoc
// GET /api/v1/notifications?limit=50
// Lists the institute's latest persisted notifications.
func (h *NotificationHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	inst := middleware.GetInstitute(c)
	items, err := h.notificationService.Recent(c.Request.Context(), inst, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notifications": items})
}
