package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewTranscriptStore(db)

	mock.ExpectExec("INSERT INTO conversations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO conversation_messages").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE conversations SET message_count").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Append(context.Background(), "messenger:12345", RoleUser, "hello")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranscriptStoreAppendRequiresConversationID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = NewTranscriptStore(db).Append(context.Background(), "  ", RoleUser, "hello")
	assert.Error(t, err)
}

func TestTranscriptStoreNilIsNoOp(t *testing.T) {
	var store *TranscriptStore
	assert.NoError(t, store.Append(context.Background(), "c1", RoleUser, "hi"))

	msgs, err := store.Messages(context.Background(), "c1", 10)
	assert.NoError(t, err)
	assert.Nil(t, msgs)
}

func TestTranscriptStoreMessages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewTranscriptStore(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "conversation_id", "role", "content", "created_at"}).
		AddRow(uuid.New(), "c1", RoleUser, "hello", now).
		AddRow(uuid.New(), "c1", RoleAssistant, "hi there", now)
	mock.ExpectQuery("SELECT id, conversation_id, role, content, created_at").
		WithArgs("c1", 10).
		WillReturnRows(rows)

	msgs, err := store.Messages(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hi there", msgs[1].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChannelFromConversationID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"messenger:12345", "messenger"},
		{"automation:abc", "automation"},
		{"plain-web-session", "web"},
		{":odd", "web"},
	}
	for _, tt := range tests {
		if got := channelFromConversationID(tt.id); got != tt.want {
			t.Errorf("channelFromConversationID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
