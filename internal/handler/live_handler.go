package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/middleware"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	ws "github.com/edumitra/edumitra-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// wsConn serializes writes: the Redis forwarder goroutine and the read
// loop both send frames on the same connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) write(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ws.WriteTyped(w.conn, v)
}

func (w *wsConn) writeError(code, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = ws.WriteError(w.conn, code, msg)
}

// LiveHandler streams a quiz's live session to participants over
// WebSocket: one snapshot on connect, then every transition as the host
// (or the auto-advance runner) drives the quiz.
type LiveHandler struct {
	rdb         *redis.Client
	liveService *service.LiveService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(rdb *redis.Client, liveService *service.LiveService, log zerolog.Logger, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		rdb:         rdb,
		liveService: liveService,
		log:         log.With().Str("component", "live_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/quizzes/:quiz_id/stream?token=...
// Joins the caller as a participant and streams live state events.
func (h *LiveHandler) Stream(c *gin.Context) {
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

	// Join before upgrading so a full participant list greets the host's
	// report; re-joins are no-ops.
	if err := h.liveService.Join(c.Request.Context(), inst, quizID, claims.UserID); err != nil {
		failService(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	safe := &wsConn{conn: conn}

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("quiz_id", quizID.String()).
		Logger()
	wsLog.Info().Msg("Participant connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial snapshot, then deltas from the quiz channel.
	snap, err := h.liveService.State(ctx, inst, quizID)
	if err != nil {
		safe.writeError(string(response.ErrNotFound), "quiz unavailable")
		return
	}
	if err := safe.write(snapshotResponse(snap)); err != nil {
		return
	}

	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.QuizChannel(inst.Code, quizID.String()))
	defer pubsub.Close()

	go h.forwardEvents(ctx, pubsub, safe, wsLog)

	for {
		var envelope ws.RequestEnvelope
		raw, err := readRaw(conn, &envelope)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			h.handleAnswer(ctx, safe, inst, quizID, claims.UserID, raw)
		case ws.ActionPing:
			_ = safe.write(ws.PongResponse{Event: ws.EventPong})
		default:
			safe.writeError("", "unknown action: "+string(envelope.Action))
		}
	}
}

// forwardEvents relays the quiz channel to the client until ctx ends.
func (h *LiveHandler) forwardEvents(ctx context.Context, pubsub *redis.PubSub, safe *wsConn, wsLog zerolog.Logger) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event model.LiveStateEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				wsLog.Warn().Err(err).Msg("Bad live event payload")
				continue
			}
			resp := ws.StateResponse{
				Event:         ws.EventState,
				State:         event.State,
				SessionID:     event.SessionID.String(),
				QuestionIndex: event.QuestionIndex,
				Question:      event.Question,
				TimerSeconds:  event.TimerSeconds,
			}
			if err := safe.write(resp); err != nil {
				return
			}
		}
	}
}

func (h *LiveHandler) handleAnswer(ctx context.Context, safe *wsConn, inst *model.Institute, quizID uuid.UUID, userID int, raw []byte) {
	var req ws.AnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		safe.writeError(string(response.ErrInvalidPayload), "malformed answer")
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		safe.writeError(string(response.ErrInvalidID), "invalid question_id format")
		return
	}

	_, err = h.liveService.SubmitResponse(ctx, inst, quizID, userID, &model.SubmitResponseRequest{
		QuestionID:     questionID,
		SelectedOption: req.SelectedOption,
		TimeTakenMS:    req.TimeTakenMS,
	})
	if err != nil {
		safe.writeError(liveErrorCode(err), err.Error())
		return
	}

	_ = safe.write(ws.AnswerAckResponse{Event: ws.EventAnswerAck, QuestionID: req.QuestionID})
}

// readRaw reads one message, keeping the raw bytes so the action-specific
// payload can be decoded after peeking at the envelope.
func readRaw(conn *websocket.Conn, envelope *ws.RequestEnvelope) ([]byte, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, envelope); err != nil {
		return nil, err
	}
	return raw, nil
}

func snapshotResponse(snap *model.LiveSnapshot) ws.StateResponse {
	resp := ws.StateResponse{
		Event:         ws.EventState,
		State:         snap.State,
		QuestionIndex: snap.QuestionIndex,
		Question:      snap.Question,
		TimerSeconds:  snap.TimerSeconds,
	}
	if snap.SessionID != nil {
		resp.SessionID = snap.SessionID.String()
	}
	return resp
}

func liveErrorCode(err error) string {
	switch err {
	case service.ErrQuizNotRunning:
		return string(response.ErrQuizNotRunning)
	case service.ErrNotParticipant:
		return string(response.ErrNotParticipant)
	case service.ErrAlreadyAnswered:
		return string(response.ErrAlreadyAnswered)
	case service.ErrQuestionInactive:
		return string(response.ErrQuestionInactive)
	default:
		return string(response.ErrInternal)
	}
}
