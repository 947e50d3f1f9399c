package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// parsePagination reads ?page and ?per_page with sane bounds.
func parsePagination(c *gin.Context) (page, perPage, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage, (page - 1) * perPage
}

func buildPagination(page, perPage, total int) *response.Pagination {
	totalPages := (total + perPage - 1) / perPage
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// failService maps a service sentinel error onto the response envelope.
// Unknown errors become a 500 without leaking internals.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound), errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSyllabusNodeNotFound), errors.Is(err, service.ErrBadChapter):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuizAlreadyLive):
		response.Fail(c, http.StatusConflict, response.ErrQuizAlreadyLive)
	case errors.Is(err, service.ErrQuizNotRunning):
		response.Fail(c, http.StatusConflict, response.ErrQuizNotRunning)
	case errors.Is(err, service.ErrQuizEnded):
		response.Fail(c, http.StatusConflict, response.ErrQuizEnded)
	case errors.Is(err, service.ErrQuizNotEnded):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrNotQuizOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizOwner)
	case errors.Is(err, service.ErrNotParticipant):
		response.Fail(c, http.StatusForbidden, response.ErrNotParticipant)
	case errors.Is(err, service.ErrAlreadyAnswered):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyAnswered)
	case errors.Is(err, service.ErrQuestionInactive):
		response.Fail(c, http.StatusConflict, response.ErrQuestionInactive)
	case errors.Is(err, service.ErrNoQuestions), errors.Is(err, service.ErrBadQuestion):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
