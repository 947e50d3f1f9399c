package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/middleware"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	refreshInterval   = 5 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 3 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler streams the host's live monitor over SSE: who joined,
// per-question response counts, and every state transition as it happens.
type MonitorHandler struct {
	rdb         *redis.Client
	liveService *service.LiveService
	log         zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, liveService *service.LiveService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:         rdb,
		liveService: liveService,
		log:         log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorSSE godoc
// GET /api/v1/staff/quizzes/:quiz_id/monitor
func (h *MonitorHandler) MonitorSSE(c *gin.Context) {
	claims := middleware.GetClaims(c)
	inst := middleware.GetInstitute(c)
	if claims == nil || inst == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	snap, err := h.liveService.State(c.Request.Context(), inst, quizID)
	if err != nil {
		failService(c, err)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("message", gin.H{"type": "snapshot", "live": snap})
	c.Writer.Flush()
	h.sendRefresh(c, reqCtx, inst, quizID)

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.QuizChannel(inst.Code, quizID.String()))
	defer pubsub.Close()
	ch := pubsub.Channel()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Str("quiz_id", quizID.String()).Msg("Host attached to live monitor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("quiz_id", quizID.String()).Msg("Host disconnected from live monitor SSE")
			return

		case msg := <-ch:
			// Forward the transition event as-is.
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-refreshTicker.C:
			h.sendRefresh(c, reqCtx, inst, quizID)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendRefresh polls response counts and sends a compact refresh event.
// Skipped silently when the quiz has no active session.
func (h *MonitorHandler) sendRefresh(c *gin.Context, parentCtx context.Context, inst *model.Institute, quizID uuid.UUID) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	counts, err := h.liveService.Progress(ctx, inst, quizID)
	if err != nil {
		if err != service.ErrQuizNotRunning {
			h.log.Warn().Err(err).Msg("Failed to fetch response counts for refresh")
		}
		return
	}

	byQuestion := make(map[string]int, len(counts))
	for qid, n := range counts {
		byQuestion[qid.String()] = n
	}

	c.SSEvent("message", gin.H{
		"type":      "refresh",
		"responses": byQuestion,
	})
	c.Writer.Flush()
}
