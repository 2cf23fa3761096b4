package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peachcleanhq/chat-platform/internal/leads"
)

type fakeRecorder struct {
	mu    sync.Mutex
	leads []leads.Lead
	err   error
}

func (f *fakeRecorder) Record(_ context.Context, lead leads.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.leads = append(f.leads, lead)
	return nil
}

type fakeTranscripts struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeTranscripts) Append(_ context.Context, conversationID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, role+": "+content)
	return nil
}

func newTestService(recorder *fakeRecorder) (*Service, *fakeTranscripts) {
	transcripts := &fakeTranscripts{}
	return NewService(NewMemorySessionStore(), recorder, transcripts, nil, nil), transcripts
}

func turn(t *testing.T, s *Service, sessionID, message, intent string) (Reply, *Session) {
	t.Helper()
	reply, session, err := s.HandleTurn(context.Background(), TurnInput{
		SessionID: sessionID,
		Channel:   "web",
		Message:   message,
		Intent:    intent,
	})
	require.NoError(t, err)
	return reply, session
}

func TestHandleTurnFullBookingFlow(t *testing.T) {
	recorder := &fakeRecorder{}
	service, transcripts := newTestService(recorder)

	reply, session := turn(t, service, "s1", "I need carpet cleaning", "")
	assert.True(t, reply.IsPrompt)
	assert.Contains(t, reply.Text, "rooms")
	assert.Equal(t, "carpet", session.Service)

	reply, _ = turn(t, service, "s1", "3 rooms and 1 stairs", "")
	assert.Contains(t, reply.Text, "Total: $200.")
	assert.Contains(t, reply.Text, "your name")

	reply, _ = turn(t, service, "s1", "Jane Smith", "")
	assert.Contains(t, reply.Text, "phone")

	reply, _ = turn(t, service, "s1", "404-555-1234", "")
	assert.Contains(t, reply.Text, "address")

	reply, _ = turn(t, service, "s1", "123 Peachtree St, Atlanta, GA 30303", "")
	assert.Contains(t, reply.Text, "arrival window")
	assert.Equal(t, []string{"8 to 12", "1 to 5"}, reply.QuickReplies)

	reply, _ = turn(t, service, "s1", "8 to 12", "")
	assert.Contains(t, reply.Text, "finalize")

	reply, session = turn(t, service, "s1", "", "finalize")
	assert.True(t, reply.IntentHandled)
	assert.Contains(t, reply.Text, "Thanks Jane!")

	require.Len(t, recorder.leads, 1)
	lead := recorder.leads[0]
	assert.Equal(t, "s1", lead.SessionID)
	assert.Equal(t, "Jane Smith", lead.Name)
	assert.Equal(t, "4045551234", lead.Phone)
	assert.Equal(t, "123 Peachtree St, Atlanta, GA 30303", lead.Address)
	assert.Equal(t, "30303", lead.Zip)
	assert.Equal(t, "8 to 12", lead.ArrivalWindow)
	assert.Equal(t, "Carpet", lead.Service)
	assert.Equal(t, 200.0, lead.TotalPrice)

	assert.Equal(t, "", session.PendingPrompt)
	assert.NotEmpty(t, transcripts.entries)
}

func TestHandleTurnCombinedTotal(t *testing.T) {
	recorder := &fakeRecorder{}
	service, _ := newTestService(recorder)

	turn(t, service, "s1", "carpet please", "")
	reply, _ := turn(t, service, "s1", "3 rooms", "")
	assert.Contains(t, reply.Text, "Total: $150.")
	assert.NotContains(t, reply.Text, "combined")

	turn(t, service, "s1", "also the air ducts", "")
	reply, session := turn(t, service, "s1", "1 basic and 1 deep", "")
	assert.Contains(t, reply.Text, "Total: $700.")
	assert.Contains(t, reply.Text, "New combined total: $850.")
	assert.Equal(t, map[string]int{"carpet": 150, "duct": 700}, session.Quoted)

	// The combined phrasing feeds back through extraction on the next turn.
	_, session = turn(t, service, "s1", "sounds good", "")
	require.NotNil(t, session.Fields.TotalPrice)
	assert.Equal(t, 850.0, *session.Fields.TotalPrice)
}

func TestHandleTurnStartIntent(t *testing.T) {
	service, _ := newTestService(&fakeRecorder{})

	reply, session := turn(t, service, "", "", "get_started")
	assert.True(t, reply.IntentHandled)
	assert.True(t, reply.IsPrompt)
	assert.Equal(t, []string{"Carpet", "Upholstery", "Air Duct"}, reply.QuickReplies)
	assert.NotEmpty(t, session.ID)
}

func TestHandleTurnUnknownIntentReissuesPrompt(t *testing.T) {
	service, _ := newTestService(&fakeRecorder{})

	turn(t, service, "s1", "carpet please", "")
	reply, _ := turn(t, service, "s1", "", "bogus_intent")
	assert.False(t, reply.IntentHandled)
	assert.Contains(t, reply.Text, "rooms")
}

func TestHandleTurnFAQReissuesPrompt(t *testing.T) {
	service, _ := newTestService(&fakeRecorder{})

	turn(t, service, "s1", "carpet please", "")
	reply, _ := turn(t, service, "s1", "what are your hours?", "")
	assert.Contains(t, reply.Text, "Monday through Saturday")
	assert.Contains(t, reply.Text, "rooms")
	assert.True(t, reply.IsPrompt)
}

func TestHandleTurnResetIntent(t *testing.T) {
	service, _ := newTestService(&fakeRecorder{})

	turn(t, service, "s1", "carpet please", "")
	reply, session := turn(t, service, "s1", "", "reset")
	assert.True(t, reply.IntentHandled)
	assert.Equal(t, "", session.Service)
	assert.Empty(t, session.History[:len(session.History)-1])
}

func TestHandleTurnFinalizeTooEarly(t *testing.T) {
	recorder := &fakeRecorder{}
	service, _ := newTestService(recorder)

	turn(t, service, "s1", "carpet please", "")
	reply, _ := turn(t, service, "s1", "", "finalize")
	assert.Contains(t, reply.Text, "Almost there")
	assert.Empty(t, recorder.leads)
}

func TestHandleTurnLeadRecordFailure(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("db down")}
	service, _ := newTestService(recorder)

	turn(t, service, "s1", "carpet please", "")
	turn(t, service, "s1", "3 rooms", "")
	turn(t, service, "s1", "my name is Jane Smith, call 404-555-1234", "")

	reply, _ := turn(t, service, "s1", "", "finalize")
	assert.Contains(t, reply.Text, "went wrong")
}
