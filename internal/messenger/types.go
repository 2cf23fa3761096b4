package messenger

import "time"

// WebhookEvent is the top-level structure delivered by the messaging
// platform's webhook.
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents a single entry in the webhook payload.
type Entry struct {
	ID        string      `json:"id"`
	Time      int64       `json:"time"`
	Messaging []Messaging `json:"messaging"`
}

// Messaging represents a single messaging event.
type Messaging struct {
	Sender    Party     `json:"sender"`
	Recipient Party     `json:"recipient"`
	Timestamp int64     `json:"timestamp"`
	Message   *Message  `json:"message,omitempty"`
	Postback  *Postback `json:"postback,omitempty"`
}

// Party identifies a sender or recipient.
type Party struct {
	ID string `json:"id"`
}

// Message contains inbound message content. QuickReply is set when the
// customer tapped one of our suggested replies.
type Message struct {
	MID        string             `json:"mid"`
	Text       string             `json:"text"`
	QuickReply *InboundQuickReply `json:"quick_reply,omitempty"`
}

// InboundQuickReply carries the payload of a tapped quick reply.
type InboundQuickReply struct {
	Payload string `json:"payload"`
}

// Postback represents a button tap.
type Postback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// SendRequest is the payload for the outbound send API.
type SendRequest struct {
	Recipient Party       `json:"recipient"`
	Message   SendMessage `json:"message"`
}

// SendMessage is outbound message content with optional quick replies.
type SendMessage struct {
	Text         string       `json:"text"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}

// QuickReply is one suggested reply chip under an outbound message.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// SendResponse is the send API's reply.
type SendResponse struct {
	RecipientID string     `json:"recipient_id"`
	MessageID   string     `json:"message_id"`
	Error       *SendError `json:"error,omitempty"`
}

// SendError represents an error returned by the send API.
type SendError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// InboundMessage is the normalized result of parsing a webhook event.
type InboundMessage struct {
	SenderID   string
	Text       string
	Timestamp  time.Time
	IsPostback bool
	Payload    string
	MessageID  string
}
