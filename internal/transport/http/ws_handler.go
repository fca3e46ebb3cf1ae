package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/auth"
	"quiz-trainer/internal/domain"
)

type WSHandler struct {
	service  *app.PracticeService
	testSize int
	tokens   *auth.Tokens
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler serves practice sessions over websockets. testSize is used
// for test mode when the client does not send a count.
func NewWSHandler(service *app.PracticeService, testSize int, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service:  service,
		testSize: testSize,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RequireTokens makes the handler identify users by token instead of the
// userId query parameter.
func (h *WSHandler) RequireTokens(tokens *auth.Tokens) {
	h.tokens = tokens
}

func (h *WSHandler) identify(r *http.Request) (string, int, error) {
	if h.tokens == nil {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			return "", http.StatusBadRequest, errors.New("missing userId")
		}
		return userID, http.StatusOK, nil
	}
	userID, err := h.tokens.Verify(bearerToken(r))
	if err != nil {
		return "", http.StatusUnauthorized, err
	}
	return userID, http.StatusOK, nil
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode  string `json:"mode"`
	Count int    `json:"count"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type startedPayload struct {
	Mode     string `json:"mode"`
	Size     int    `json:"size"`
	PoolSize int    `json:"poolSize"`
	Degraded bool   `json:"degraded"`
}

type questionPayload struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one user's session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, status, err := h.identify(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer h.service.Leave(r.Context(), userID)

	send := func(typ string, payload any) bool {
		if err := conn.WriteJSON(outboundMessage[any]{Type: typ, Payload: payload}); err != nil {
			h.logger.Warn("ws write error", "user", userID, "error", err)
			return false
		}
		return true
	}
	sendErr := func(err error) bool {
		return send("error", errorPayload{Message: err.Error()})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		ok := true
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				ok = send("error", errorPayload{Message: "invalid start payload"})
				break
			}
			ok = h.start(r, userID, payload, send, sendErr)
		case "next":
			q, err := h.service.Next(r.Context(), userID)
			ok = h.sendQuestion(r, userID, q, err, send, sendErr)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				ok = send("error", errorPayload{Message: "invalid answer payload"})
				break
			}
			result, err := h.service.Answer(r.Context(), userID, payload.QuestionID, payload.Answer)
			if err != nil {
				ok = sendErr(err)
				break
			}
			ok = send("answerResult", result)
		case "score":
			score, err := h.service.Score(r.Context(), userID)
			if err != nil {
				ok = sendErr(err)
				break
			}
			ok = send("score", score)
		case "reset":
			if err := h.service.Reset(r.Context(), userID); err != nil {
				ok = sendErr(err)
				break
			}
			ok = send("reset", app.Score{})
		case "finish":
			score, err := h.service.Finish(r.Context(), userID)
			if err != nil {
				ok = sendErr(err)
				break
			}
			ok = send("finished", score)
		default:
			ok = send("error", errorPayload{Message: "unsupported message type"})
		}
		if !ok {
			return
		}
	}
}

func (h *WSHandler) start(r *http.Request, userID string, payload startPayload, send func(string, any) bool, sendErr func(error) bool) bool {
	mode, err := app.ParseMode(payload.Mode)
	if err != nil {
		return sendErr(err)
	}
	count := payload.Count
	if count == 0 {
		count = h.testSize
	}
	info, err := h.service.Start(r.Context(), userID, mode, count)
	if err != nil {
		return sendErr(err)
	}
	if !send("started", startedPayload{
		Mode:     string(info.Mode),
		Size:     info.Size,
		PoolSize: info.PoolSize,
		Degraded: info.Degraded,
	}) {
		return false
	}
	if info.First == nil {
		return h.sendQuestion(r, userID, nil, app.ErrSessionExhausted, send, sendErr)
	}
	return send("question", toQuestionPayload(info.First))
}

// sendQuestion reports exhaustion with the running score.
func (h *WSHandler) sendQuestion(r *http.Request, userID string, q *domain.Question, err error, send func(string, any) bool, sendErr func(error) bool) bool {
	if errors.Is(err, app.ErrSessionExhausted) {
		score, err := h.service.Score(r.Context(), userID)
		if err != nil {
			return sendErr(err)
		}
		return send("exhausted", score)
	}
	if err != nil {
		return sendErr(err)
	}
	return send("question", toQuestionPayload(q))
}

func toQuestionPayload(q *domain.Question) questionPayload {
	return questionPayload{ID: q.ID(), Prompt: q.Prompt(), Options: q.Options()}
}
