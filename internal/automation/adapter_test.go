package automation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peachcleanhq/chat-platform/internal/conversation"
)

func TestNormalizeBlockID(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Carpet", "carpet"},
		{"Air Duct", "air_duct"},
		{"8 to 12", "8_to_12"},
		{"What's next?", "what_s_next"},
		{"  spaced  out  ", "spaced_out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeBlockID(tt.title); got != tt.want {
			t.Errorf("NormalizeBlockID(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestAdapterConvert(t *testing.T) {
	adapter := NewAdapter("pc")

	payload := adapter.Convert(conversation.Reply{
		Text:         "Which service can we help you with?",
		QuickReplies: []string{"Carpet", "Air Duct"},
	})

	assert.Equal(t, "v2", payload.Version)
	require.Len(t, payload.Messages, 1)
	msg := payload.Messages[0]
	assert.Equal(t, "Which service can we help you with?", msg.Text)
	require.Len(t, msg.QuickReplies, 2)
	assert.Equal(t, BlockReply{Title: "Carpet", BlockID: "pc_carpet"}, msg.QuickReplies[0])
	assert.Equal(t, BlockReply{Title: "Air Duct", BlockID: "pc_air_duct"}, msg.QuickReplies[1])

	// Same title always yields the same block id.
	again := adapter.Convert(conversation.Reply{Text: "x", QuickReplies: []string{"Air Duct"}})
	assert.Equal(t, "pc_air_duct", again.Messages[0].QuickReplies[0].BlockID)
}

func TestAdapterDefaultPrefix(t *testing.T) {
	payload := NewAdapter("").Convert(conversation.Reply{QuickReplies: []string{"Yes"}})
	assert.Equal(t, "peachclean_yes", payload.Messages[0].QuickReplies[0].BlockID)
}

func TestHandlerTurn(t *testing.T) {
	service := conversation.NewService(conversation.NewMemorySessionStore(), nil, nil, nil, nil)
	h := NewHandler(service, NewAdapter("pc"), nil)

	body, _ := json.Marshal(map[string]string{
		"subscriber_id": "sub-1",
		"intent":        "get_started",
	})
	rec := httptest.NewRecorder()
	h.Turn(rec, httptest.NewRequest(http.MethodPost, "/automation/turn", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Messages, 1)
	assert.NotEmpty(t, payload.Messages[0].Text)
	require.Len(t, payload.Messages[0].QuickReplies, 3)
	assert.Equal(t, "pc_carpet", payload.Messages[0].QuickReplies[0].BlockID)
}

func TestHandlerTurnRequiresSubscriber(t *testing.T) {
	service := conversation.NewService(conversation.NewMemorySessionStore(), nil, nil, nil, nil)
	h := NewHandler(service, NewAdapter("pc"), nil)

	rec := httptest.NewRecorder()
	h.Turn(rec, httptest.NewRequest(http.MethodPost, "/automation/turn", bytes.NewReader([]byte(`{}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
