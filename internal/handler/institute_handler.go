package handler

import (
	"net/http"

	"github.com/edumitra/edumitra-backend/internal/middleware"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/edumitra/edumitra-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// InstituteHandler exposes the resolved tenant's profile and settings.
type InstituteHandler struct {
	instituteService *service.InstituteService
}

// NewInstituteHandler creates a new InstituteHandler.
func NewInstituteHandler(instituteService *service.InstituteService) *InstituteHandler {
	return &InstituteHandler{instituteService: instituteService}
}

// Get godoc
// GET /api/v1/institute
// Returns the tenant resolved from the subdomain. Public: the client's
// landing page shows the institute name before login.
func (h *InstituteHandler) Get(c *gin.Context) {
	inst := middleware.GetInstitute(c)
	response.Success(c, http.StatusOK, gin.H{"institute": inst})
}

// Update godoc
// PUT /api/v1/admin/institute
func (h *InstituteHandler) Update(c *gin.Context) {
	var req model.UpdateInstituteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst := middleware.GetInstitute(c)
	updated, err := h.instituteService.Update(c.Request.Context(), inst, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"institute": updated})
}
