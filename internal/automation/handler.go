package automation

import (
	"encoding/json"
	"net/http"

	"github.com/peachcleanhq/chat-platform/internal/conversation"
	"github.com/peachcleanhq/chat-platform/pkg/logging"
)

// Handler serves the automation platform's external-request endpoint: the
// platform POSTs the subscriber id and message, and expects the reply back in
// its own message-list schema.
type Handler struct {
	service *conversation.Service
	adapter *Adapter
	logger  *logging.Logger
}

func NewHandler(service *conversation.Service, adapter *Adapter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, adapter: adapter, logger: logger}
}

type turnRequest struct {
	SubscriberID string `json:"subscriber_id"`
	Message      string `json:"message,omitempty"`
	Intent       string `json:"intent,omitempty"`
}

// Turn handles POST /automation/turn.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.SubscriberID == "" {
		http.Error(w, "subscriber_id required", http.StatusBadRequest)
		return
	}

	reply, _, err := h.service.HandleTurn(r.Context(), conversation.TurnInput{
		SessionID: "automation:" + req.SubscriberID,
		Channel:   "automation",
		Message:   req.Message,
		Intent:    req.Intent,
	})
	if err != nil {
		h.logger.Error("automation turn failed", "subscriber_id", req.SubscriberID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.adapter.Convert(reply)); err != nil {
		h.logger.Error("encode automation response failed", "error", err)
	}
}
