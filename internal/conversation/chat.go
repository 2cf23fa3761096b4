package conversation

import "strings"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single transcript entry. Order is significant, most recent last.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryWindow bounds how much transcript the extractor looks at. Older
// messages fall out of the window so a late correction beats an early guess.
const HistoryWindow = 40

// windowMessages returns the last HistoryWindow messages of history.
func windowMessages(history []Message) []Message {
	if len(history) > HistoryWindow {
		return history[len(history)-HistoryWindow:]
	}
	return history
}

// windowText renders the window as "role: content" lines, one per message.
func windowText(history []Message) string {
	msgs := windowMessages(history)
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}
