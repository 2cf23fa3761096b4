package messenger

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/peachcleanhq/chat-platform/internal/conversation"
	"github.com/peachcleanhq/chat-platform/internal/observability/metrics"
	"github.com/peachcleanhq/chat-platform/pkg/logging"
)

// Sender is the outbound side of the bridge, satisfied by *Client.
type Sender interface {
	SendText(ctx context.Context, recipientID, text string) (*SendResponse, error)
	SendWithQuickReplies(ctx context.Context, recipientID, text string, quickReplies []QuickReply) (*SendResponse, error)
}

// WebhookHandler bridges the messaging platform to the conversation flow:
// it answers the verification handshake, parses inbound events, runs one
// conversation turn per message, and sends the reply back out.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	service     *conversation.Service
	sender      Sender
	metrics     *metrics.ChatMetrics
	logger      *logging.Logger
}

func NewWebhookHandler(verifyToken, appSecret string, service *conversation.Service, sender Sender, m *metrics.ChatMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		service:     service,
		sender:      sender,
		metrics:     m,
		logger:      logger,
	}
}

// HandleVerification handles the GET webhook verification challenge.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}

	h.metrics.ObserveWebhook("verification", "forbidden")
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleInbound handles POST webhook events.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Signature check is only enforced when an app secret is configured.
	if h.appSecret != "" {
		if !VerifySignature(h.appSecret, body, r.Header.Get("X-Hub-Signature-256")) {
			h.metrics.ObserveWebhook("message", "bad_signature")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.metrics.ObserveWebhook("message", "bad_payload")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Respond 200 quickly; the platform retries slow webhooks.
	w.WriteHeader(http.StatusOK)

	for _, msg := range ParseWebhookEvent(event) {
		h.processMessage(r.Context(), msg)
	}
}

func (h *WebhookHandler) processMessage(ctx context.Context, msg InboundMessage) {
	in := conversation.TurnInput{
		SessionID: "messenger:" + msg.SenderID,
		Channel:   "messenger",
	}
	// Postbacks carry named intents (e.g. get_started); quick-reply taps
	// flow through as ordinary message text.
	if msg.IsPostback {
		in.Intent = msg.Payload
	} else {
		in.Message = msg.Text
	}

	reply, _, err := h.service.HandleTurn(ctx, in)
	if err != nil {
		h.logger.Error("messenger turn failed", "sender_id", msg.SenderID, "error", err)
		h.metrics.ObserveWebhook("message", "error")
		return
	}

	if len(reply.QuickReplies) > 0 {
		quick := make([]QuickReply, 0, len(reply.QuickReplies))
		for _, title := range reply.QuickReplies {
			quick = append(quick, QuickReply{ContentType: "text", Title: title, Payload: title})
		}
		_, err = h.sender.SendWithQuickReplies(ctx, msg.SenderID, reply.Text, quick)
	} else {
		_, err = h.sender.SendText(ctx, msg.SenderID, reply.Text)
	}
	if err != nil {
		h.logger.Error("messenger send failed", "sender_id", msg.SenderID, "error", err)
		h.metrics.ObserveWebhook("message", "send_error")
		return
	}
	h.metrics.ObserveWebhook("message", "ok")
}

// ParseWebhookEvent extracts normalized inbound messages from a webhook event.
func ParseWebhookEvent(event WebhookEvent) []InboundMessage {
	var messages []InboundMessage
	for _, entry := range event.Entry {
		for _, m := range entry.Messaging {
			parsed := InboundMessage{
				SenderID:  m.Sender.ID,
				Timestamp: time.UnixMilli(m.Timestamp),
			}

			switch {
			case m.Message != nil:
				parsed.Text = m.Message.Text
				parsed.MessageID = m.Message.MID
				if m.Message.QuickReply != nil {
					parsed.Payload = m.Message.QuickReply.Payload
				}
			case m.Postback != nil:
				parsed.IsPostback = true
				parsed.Text = m.Postback.Title
				parsed.Payload = m.Postback.Payload
			default:
				continue
			}

			messages = append(messages, parsed)
		}
	}
	return messages
}

// VerifySignature verifies the X-Hub-Signature-256 header.
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || signature == "" {
		return false
	}

	const prefix = "sha256="
	if len(signature) <= len(prefix) {
		return false
	}
	sigHex := signature[len(prefix):]

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(sigHex))
}
