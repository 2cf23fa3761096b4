package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TranscriptStore persists transcripts to PostgreSQL for long-term history.
// All methods are nil-safe: without a database the store is a no-op, so the
// chat flow works unchanged in environments with no DATABASE_URL.
type TranscriptStore struct {
	db *sql.DB
}

func NewTranscriptStore(db *sql.DB) *TranscriptStore {
	if db == nil {
		return nil
	}
	return &TranscriptStore{db: db}
}

// TranscriptMessage is a persisted transcript entry.
type TranscriptMessage struct {
	ID             uuid.UUID
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// ensureConversation creates the conversation row on first touch and bumps
// updated_at afterwards.
func (s *TranscriptStore) ensureConversation(ctx context.Context, conversationID, channel string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, conversation_id, channel, message_count, user_message_count, assistant_message_count, started_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, $4, $4)
		ON CONFLICT (conversation_id) DO UPDATE SET updated_at = $4
	`, uuid.New(), conversationID, channel, now)
	if err != nil {
		return fmt.Errorf("conversation: ensure conversation: %w", err)
	}
	return nil
}

// Append persists one transcript entry and updates the per-role counters.
func (s *TranscriptStore) Append(ctx context.Context, conversationID string, role, content string) error {
	if s == nil || s.db == nil {
		return nil
	}
	if strings.TrimSpace(conversationID) == "" {
		return fmt.Errorf("conversation: conversation id required")
	}

	channel := channelFromConversationID(conversationID)
	if err := s.ensureConversation(ctx, conversationID, channel); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), conversationID, role, content, now)
	if err != nil {
		return fmt.Errorf("conversation: insert message: %w", err)
	}

	update := `UPDATE conversations SET message_count = message_count + 1, last_message_at = $1, updated_at = $1`
	switch role {
	case RoleUser:
		update += `, user_message_count = user_message_count + 1`
	case RoleAssistant:
		update += `, assistant_message_count = assistant_message_count + 1`
	}
	update += ` WHERE conversation_id = $2`

	_, err = s.db.ExecContext(ctx, update, now, conversationID)
	if err != nil {
		return fmt.Errorf("conversation: update counters: %w", err)
	}
	return nil
}

// Messages retrieves up to limit transcript entries in insertion order.
func (s *TranscriptStore) Messages(ctx context.Context, conversationID string, limit int) ([]TranscriptMessage, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`
	args := []any{conversationID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("conversation: query messages: %w", err)
	}
	defer rows.Close()

	var messages []TranscriptMessage
	for rows.Next() {
		var msg TranscriptMessage
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// channelFromConversationID reads the channel from a "channel:id" session id.
// Plain ids (web widget sessions without a prefix) map to "web".
func channelFromConversationID(conversationID string) string {
	if channel, _, ok := strings.Cut(conversationID, ":"); ok && channel != "" {
		return channel
	}
	return "web"
}
