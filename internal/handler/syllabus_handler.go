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

// SyllabusHandler exposes the board → standard → subject → chapter tree.
type SyllabusHandler struct {
	syllabusService *service.SyllabusService
}

// NewSyllabusHandler creates a new SyllabusHandler.
func NewSyllabusHandler(syllabusService *service.SyllabusService) *SyllabusHandler {
	return &SyllabusHandler{syllabusService: syllabusService}
}

// Boards godoc
// GET /api/v1/syllabus/boards
func (h *SyllabusHandler) Boards(c *gin.Context) {
	inst := middleware.GetInstitute(c)
	boards, err := h.syllabusService.Boards(c.Request.Context(), inst)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"boards": boards})
}

// Standards godoc
// GET /api/v1/syllabus/boards/:board_id/standards
func (h *SyllabusHandler) Standards(c *gin.Context) {
	boardID, err := strconv.Atoi(c.Param("board_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	inst := middleware.GetInstitute(c)
	standards, err := h.syllabusService.Standards(c.Request.Context(), inst, boardID)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"standards": standards})
}

// Subjects godoc
// GET /api/v1/syllabus/standards/:standard_id/subjects
func (h *SyllabusHandler) Subjects(c *gin.Context) {
	standardID, err := strconv.Atoi(c.Param("standard_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	subjects, err := h.syllabusService.Subjects(c.Request.Context(), standardID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// Chapters godoc
// GET /api/v1/syllabus/subjects/:subject_id/chapters
func (h *SyllabusHandler) Chapters(c *gin.Context) {
	subjectID, err := strconv.Atoi(c.Param("subject_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	chapters, err := h.syllabusService.Chapters(c.Request.Context(), subjectID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chapters": chapters})
}

// Path godoc
// GET /api/v1/syllabus/chapters/:chapter_id/path
// Resolves a chapter to its full display path.
func (h *SyllabusHandler) Path(c *gin.Context) {
	chapterID, err := strconv.Atoi(c.Param("chapter_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	inst := middleware.GetInstitute(c)
	path, err := h.syllabusService.Path(c.Request.Context(), inst, chapterID)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"path": path})
}

// CreateBoard godoc
// POST /api/v1/admin/syllabus/boards
func (h *SyllabusHandler) CreateBoard(c *gin.Context) {
	var req model.CreateBoardRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst := middleware.GetInstitute(c)
	board, err := h.syllabusService.AddBoard(c.Request.Context(), inst, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"board": board})
}

// CreateStandard godoc
// POST /api/v1/admin/syllabus/standards
func (h *SyllabusHandler) CreateStandard(c *gin.Context) {
	var req model.CreateStandardRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst := middleware.GetInstitute(c)
	standard, err := h.syllabusService.AddStandard(c.Request.Context(), inst, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"standard": standard})
}

// CreateSubject godoc
// POST /api/v1/admin/syllabus/subjects
func (h *SyllabusHandler) CreateSubject(c *gin.Context) {
	var req model.CreateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	subject, err := h.syllabusService.AddSubject(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"subject": subject})
}

// CreateChapter godoc
// POST /api/v1/admin/syllabus/chapters
func (h *SyllabusHandler) CreateChapter(c *gin.Context) {
	var req model.CreateChapterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	chapter, err := h.syllabusService.AddChapter(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"chapter": chapter})
}

// DeleteChapter godoc
// DELETE /api/v1/admin/syllabus/chapters/:chapter_id
func (h *SyllabusHandler) DeleteChapter(c *gin.Context) {
	chapterID, err := strconv.Atoi(c.Param("chapter_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	inst := middleware.GetInstitute(c)
	if err := h.syllabusService.RemoveChapter(c.Request.Context(), inst, chapterID); err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
