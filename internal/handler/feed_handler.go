package handler

import (
	"net/http"

	"github.com/edumitra/edumitra-backend/internal/middleware"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/edumitra/edumitra-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FeedHandler handles the institute news/event feed.
type FeedHandler struct {
	feedService *service.FeedService
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// List godoc
// GET /api/v1/feed?kind=NEWS
// Lists feed items newest-first; omit kind to mix news and events.
func (h *FeedHandler) List(c *gin.Context) {
	kind := model.PostKind(c.Query("kind"))
	switch kind {
	case "", model.PostKindNews, model.PostKindEvent:
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	page, perPage, offset := parsePagination(c)
	inst := middleware.GetInstitute(c)

	posts, total, err := h.feedService.List(c.Request.Context(), inst, kind, perPage, offset)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"posts": posts},
		buildPagination(page, perPage, total))
}

// Publish godoc
// POST /api/v1/staff/feed
// Publishes a news or event post and enqueues its push notification.
func (h *FeedHandler) Publish(c *gin.Context) {
	var req model.CreatePostRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	inst := middleware.GetInstitute(c)

	post, err := h.feedService.Publish(c.Request.Context(), inst, claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

// Delete godoc
// DELETE /api/v1/staff/feed/:post_id
func (h *FeedHandler) Delete(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	inst := middleware.GetInstitute(c)
	if err := h.feedService.Remove(c.Request.Context(), inst, postID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
