package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/edumitra/edumitra-backend/internal/middleware"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/edumitra/edumitra-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuizHandler handles quiz authoring and the live-session control surface.
// Authoring routes are staff-only; the live control routes additionally
// enforce ownership inside LiveService.
type QuizHandler struct {
	quizService *service.QuizService
	liveService *service.LiveService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, liveService *service.LiveService) *QuizHandler {
	return &QuizHandler{quizService: quizService, liveService: liveService}
}

func quizID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// Create godoc
// POST /api/v1/staff/quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	inst := middleware.GetInstitute(c)

	quiz, err := h.quizService.Create(c.Request.Context(), inst, claims.UserID, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// List godoc
// GET /api/v1/quizzes?chapter_id=12
func (h *QuizHandler) List(c *gin.Context) {
	chapterID, _ := strconv.Atoi(c.DefaultQuery("chapter_id", "0"))
	page, perPage, offset := parsePagination(c)
	inst := middleware.GetInstitute(c)

	quizzes, total, err := h.quizService.List(c.Request.Context(), inst, chapterID, perPage, offset)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Strip answer keys unless the caller is staff.
	claims := middleware.GetClaims(c)
	if claims == nil || claims.Role == model.RoleStudent {
		for i := range quizzes {
			quizzes[i].Questions = nil
		}
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes},
		buildPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/staff/quizzes/:quiz_id
// Staff view including answer keys.
func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	inst := middleware.GetInstitute(c)
	quiz, err := h.quizService.Get(c.Request.Context(), inst, id)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Update godoc
// PUT /api/v1/staff/quizzes/:quiz_id
func (h *QuizHandler) Update(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst := middleware.GetInstitute(c)
	quiz, err := h.quizService.Update(c.Request.Context(), inst, id, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Delete godoc
// DELETE /api/v1/staff/quizzes/:quiz_id
func (h *QuizHandler) Delete(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	inst := middleware.GetInstitute(c)
	if err := h.quizService.Delete(c.Request.Context(), inst, id); err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Start godoc
// POST /api/v1/staff/quizzes/:quiz_id/start
// NOT_STARTED → RUNNING. Exactly one racing host wins.
func (h *QuizHandler) Start(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	var req model.StartQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	inst := middleware.GetInstitute(c)

	session, err := h.liveService.Start(c.Request.Context(), inst, id, claims.UserID, req.AutoAdvance)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Advance godoc
// POST /api/v1/staff/quizzes/:quiz_id/advance
// Moves to the next question; on the last question this ends the run.
func (h *QuizHandler) Advance(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	inst := middleware.GetInstitute(c)

	snap, err := h.liveService.Advance(c.Request.Context(), inst, id, claims.UserID)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"live": snap})
}

// End godoc
// POST /api/v1/staff/quizzes/:quiz_id/end
// RUNNING → ENDED. Safe to retry; the first end timestamp stands.
func (h *QuizHandler) End(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	inst := middleware.GetInstitute(c)

	snap, err := h.liveService.End(c.Request.Context(), inst, id, claims.UserID)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"live": snap})
}

// Reschedule godoc
// POST /api/v1/staff/quizzes/:quiz_id/reschedule
// Resets an ENDED quiz to NOT_STARTED under a new date.
func (h *QuizHandler) Reschedule(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	var req struct {
		ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst := middleware.GetInstitute(c)
	quiz, err := h.quizService.Reschedule(c.Request.Context(), inst, id, req.ScheduledAt)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// State godoc
// GET /api/v1/quizzes/:quiz_id/live
// Participant-facing snapshot, re-derived from a fresh read.
func (h *QuizHandler) State(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	inst := middleware.GetInstitute(c)
	snap, err := h.liveService.State(c.Request.Context(), inst, id)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"live": snap})
}

// Join godoc
// POST /api/v1/quizzes/:quiz_id/join
// Registers the caller on the participant list. Idempotent.
func (h *QuizHandler) Join(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	inst := middleware.GetInstitute(c)

	if err := h.liveService.Join(c.Request.Context(), inst, id, claims.UserID); err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Submit godoc
// POST /api/v1/quizzes/:quiz_id/responses
// Records the caller's answer to the active question. One-shot.
func (h *QuizHandler) Submit(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	var req model.SubmitResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	inst := middleware.GetInstitute(c)

	resp, err := h.liveService.SubmitResponse(c.Request.Context(), inst, id, claims.UserID, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"response": resp})
}

// Report godoc
// GET /api/v1/quizzes/:quiz_id/report?session_id=...
// Derived leaderboard and per-question breakdown; session_id defaults to
// the latest run.
func (h *QuizHandler) Report(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}

	var sessionID *uuid.UUID
	if raw := c.Query("session_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		sessionID = &parsed
	}

	inst := middleware.GetInstitute(c)
	report, err := h.liveService.Report(c.Request.Context(), inst, id, sessionID)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}
