package conversation

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/peachcleanhq/chat-platform/internal/observability/metrics"
	"github.com/peachcleanhq/chat-platform/pkg/logging"
)

// Handler exposes the web chat endpoint used by the browser widget. The
// request carries either a free-text message or a quick-reply intent, plus
// the client's copy of the session state from the previous response.
type Handler struct {
	service *Service
	metrics *metrics.ChatMetrics
	logger  *logging.Logger
}

func NewHandler(service *Service, m *metrics.ChatMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, metrics: m, logger: logger}
}

type chatRequest struct {
	SessionID string   `json:"sessionId,omitempty"`
	Message   string   `json:"message,omitempty"`
	Intent    string   `json:"intent,omitempty"`
	State     *Session `json:"state,omitempty"`
}

type chatResponse struct {
	Reply         string   `json:"reply"`
	QuickReplies  []string `json:"quickReplies"`
	State         *Session `json:"state"`
	IsPrompt      bool     `json:"isPrompt"`
	IntentHandled bool     `json:"intentHandled"`
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		h.metrics.ObserveTurn("web", "bad_request")
		return
	}
	if req.Message == "" && req.Intent == "" {
		http.Error(w, "message or intent required", http.StatusBadRequest)
		h.metrics.ObserveTurn("web", "bad_request")
		return
	}

	sessionID := req.SessionID
	// The browser widget round-trips state; seed the store with it so a
	// turn continues from what the client last saw.
	if req.State != nil && req.State.ID != "" {
		sessionID = req.State.ID
		if err := h.service.sessions.Save(r.Context(), req.State); err != nil {
			h.logger.Warn("seeding session from client state failed", "session_id", sessionID, "error", err)
		}
	}

	reply, session, err := h.service.HandleTurn(r.Context(), TurnInput{
		SessionID: sessionID,
		Channel:   "web",
		Message:   req.Message,
		Intent:    req.Intent,
	})
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", sessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		h.metrics.ObserveTurn("web", "error")
		return
	}

	resp := chatResponse{
		Reply:         reply.Text,
		QuickReplies:  reply.QuickReplies,
		State:         session,
		IsPrompt:      reply.IsPrompt,
		IntentHandled: reply.IntentHandled,
	}
	if resp.QuickReplies == nil {
		resp.QuickReplies = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode chat response failed", "error", err)
	}
	h.metrics.ObserveTurn("web", "ok")
	h.metrics.ObserveTurnLatency("web", time.Since(start).Seconds())
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
