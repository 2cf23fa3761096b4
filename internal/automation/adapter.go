package automation

import (
	"strings"

	"github.com/peachcleanhq/chat-platform/internal/conversation"
)

// Payload is the chat-automation platform's message-list schema. Every reply
// becomes a single message with optional quick-reply buttons, each carrying a
// stable block identifier the platform uses for routing.
type Payload struct {
	Version  string        `json:"version"`
	Messages []BlockOutput `json:"messages"`
}

type BlockOutput struct {
	Text         string       `json:"text"`
	QuickReplies []BlockReply `json:"quick_replies,omitempty"`
}

type BlockReply struct {
	Title   string `json:"title"`
	BlockID string `json:"block_id"`
}

// Adapter reshapes conversation replies into the automation platform's
// schema. The block prefix namespaces our ids inside the platform's flows.
type Adapter struct {
	blockPrefix string
}

func NewAdapter(blockPrefix string) *Adapter {
	if blockPrefix == "" {
		blockPrefix = "peachclean"
	}
	return &Adapter{blockPrefix: blockPrefix}
}

// Convert maps one reply to the platform payload. Quick-reply block ids are
// derived from the titles so the same chip always routes to the same block.
func (a *Adapter) Convert(reply conversation.Reply) Payload {
	msg := BlockOutput{Text: reply.Text}
	for _, title := range reply.QuickReplies {
		msg.QuickReplies = append(msg.QuickReplies, BlockReply{
			Title:   title,
			BlockID: a.blockPrefix + "_" + NormalizeBlockID(title),
		})
	}
	return Payload{Version: "v2", Messages: []BlockOutput{msg}}
}

// NormalizeBlockID lowercases a title and collapses every run of
// non-alphanumeric characters to a single underscore.
func NormalizeBlockID(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
