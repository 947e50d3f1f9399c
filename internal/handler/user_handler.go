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

// UserHandler handles the admin user-management endpoints: listing
// accounts and the approval workflow for self-registrations.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List godoc
// GET /api/v1/admin/users?status=PENDING
// Lists the institute's accounts, optionally filtered by approval status.
func (h *UserHandler) List(c *gin.Context) {
	status := model.UserStatus(c.Query("status"))
	switch status {
	case "", model.UserStatusPending, model.UserStatusApproved, model.UserStatusRejected:
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	page, perPage, offset := parsePagination(c)
	inst := middleware.GetInstitute(c)

	users, total, err := h.userService.List(c.Request.Context(), inst, status, perPage, offset)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users},
		buildPagination(page, perPage, total))
}

// Review godoc
// PATCH /api/v1/admin/users/:user_id/status
// Approves or rejects a pending registration.
func (h *UserHandler) Review(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst := middleware.GetInstitute(c)
	user, err := h.userService.Review(c.Request.Context(), inst, userID, req.Status)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
