package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peachcleanhq/chat-platform/internal/leads"
	"github.com/peachcleanhq/chat-platform/internal/observability/metrics"
	"github.com/peachcleanhq/chat-platform/internal/pricing"
	"github.com/peachcleanhq/chat-platform/pkg/logging"
)

// TurnInput is one inbound customer turn: either a free-text message or a
// named intent from a quick reply, never both.
type TurnInput struct {
	SessionID string
	Channel   string
	Message   string
	Intent    string
}

// Reply is what goes back to the customer after a turn.
type Reply struct {
	Text          string   `json:"reply"`
	QuickReplies  []string `json:"quickReplies,omitempty"`
	IsPrompt      bool     `json:"isPrompt"`
	IntentHandled bool     `json:"intentHandled"`
}

// LeadRecorder receives qualified leads once a customer finalizes a booking.
type LeadRecorder interface {
	Record(ctx context.Context, lead leads.Lead) error
}

// TranscriptAppender persists transcript entries for long-term history.
// Persistence failures never fail a turn.
type TranscriptAppender interface {
	Append(ctx context.Context, conversationID string, role, content string) error
}

// Service runs the rule-based conversation flow: it appends each turn to the
// session transcript, re-extracts fields over the recent window, merges them
// into session state, and decides the next reply and prompt.
type Service struct {
	sessions    SessionStore
	leads       LeadRecorder
	transcripts TranscriptAppender
	metrics     *metrics.ChatMetrics
	logger      *logging.Logger
}

func NewService(sessions SessionStore, recorder LeadRecorder, transcripts TranscriptAppender, m *metrics.ChatMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sessions:    sessions,
		leads:       recorder,
		transcripts: transcripts,
		metrics:     m,
		logger:      logger,
	}
}

const greeting = "Hi! We clean carpets, upholstery and air ducts across metro Atlanta. Which service can we help you with today?"

var serviceQuickReplies = []string{"Carpet", "Upholstery", "Air Duct"}

// quote-input parsing over the current message
var (
	roomsCountRE   = regexp.MustCompile(`(?i)([0-9]+)\s*(?:bed)?rooms?`)
	stairsCountRE  = regexp.MustCompile(`(?i)([0-9]+)\s*(?:flights?\s+of\s+)?stairs?`)
	sectionalRE    = regexp.MustCompile(`(?i)sectional(?:[^.\n]*?([0-9]+)\s*cushions?)?`)
	reclinerRE     = regexp.MustCompile(`(?i)([0-9]+)?\s*recliners?`)
	ductBasicRE    = regexp.MustCompile(`(?i)([0-9]+)\s*basic`)
	ductDeepRE     = regexp.MustCompile(`(?i)([0-9]+)\s*deep`)
	ductFurnaceRE  = regexp.MustCompile(`(?i)([0-9]+)\s*furnaces?`)
	dryerFeetRE    = regexp.MustCompile(`(?i)([0-9]+)\s*(?:ft|feet|foot)`)
	furnaceWordRE  = regexp.MustCompile(`(?i)\bfurnace\b`)
	dryerWordRE    = regexp.MustCompile(`(?i)\bdryer\b`)
	finalizeWordRE = regexp.MustCompile(`(?i)\b(?:finalize|proceed|book it|confirm)\b`)
)

// HandleTurn processes one customer turn and returns the reply plus the
// updated session. It never fails a turn for extraction or pricing reasons;
// only session persistence errors surface.
func (s *Service) HandleTurn(ctx context.Context, in TurnInput) (Reply, *Session, error) {
	session, err := s.loadOrCreate(ctx, in)
	if err != nil {
		return Reply{}, nil, err
	}

	var reply Reply
	if in.Intent != "" {
		reply = s.handleIntent(ctx, session, in.Intent)
	} else {
		s.appendMessage(ctx, session, RoleUser, in.Message)
		session.Fields.Merge(ExtractFields(session.History))
		reply = s.respond(ctx, session, in.Message)
	}

	s.appendMessage(ctx, session, RoleAssistant, reply.Text)
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return Reply{}, nil, fmt.Errorf("conversation: save session: %w", err)
	}
	return reply, session, nil
}

func (s *Service) loadOrCreate(ctx context.Context, in TurnInput) (*Session, error) {
	if in.SessionID != "" {
		session, err := s.sessions.Get(ctx, in.SessionID)
		if err == nil {
			return session, nil
		}
		if err != ErrSessionNotFound {
			return nil, fmt.Errorf("conversation: load session: %w", err)
		}
	}
	id := in.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{ID: id, Channel: in.Channel}, nil
}

func (s *Service) appendMessage(ctx context.Context, session *Session, role, content string) {
	session.History = append(session.History, Message{Role: role, Content: content})
	if s.transcripts == nil {
		return
	}
	if err := s.transcripts.Append(ctx, session.ID, role, content); err != nil {
		s.logger.Warn("transcript append failed", "session_id", session.ID, "error", err)
	}
}

func (s *Service) handleIntent(ctx context.Context, session *Session, intent string) Reply {
	switch strings.ToLower(strings.TrimSpace(intent)) {
	case "start", "get_started":
		session.PendingPrompt = greeting
		return Reply{Text: greeting, QuickReplies: serviceQuickReplies, IsPrompt: true, IntentHandled: true}
	case "pricing":
		return Reply{Text: pricingOverview, IntentHandled: true}
	case "reset":
		*session = Session{ID: session.ID, Channel: session.Channel}
		session.PendingPrompt = greeting
		return Reply{Text: "Starting over. " + greeting, QuickReplies: serviceQuickReplies, IsPrompt: true, IntentHandled: true}
	case "finalize":
		return s.finalize(ctx, session)
	default:
		reply := Reply{Text: "Sorry, I didn't catch that."}
		if session.PendingPrompt != "" {
			reply.Text += " " + session.PendingPrompt
			reply.IsPrompt = true
		}
		return reply
	}
}

const pricingOverview = "Carpet cleaning is $50 per room and $50 per flight of stairs ($150 minimum). " +
	"Sectionals run $50 per cushion ($250 minimum) and recliners are $85 each. " +
	"Air duct cleaning is $200 per basic vent package, $500 for deep cleaning, $200 per furnace, " +
	"and dryer vents are $200 with 8 feet of line included."

func (s *Service) respond(ctx context.Context, session *Session, message string) Reply {
	if svc := serviceTagFromText(message); svc != "" {
		session.Service = svc
	}

	if finalizeWordRE.MatchString(message) {
		return s.finalize(ctx, session)
	}

	if answer := faqAnswer(message); answer != "" {
		reply := Reply{Text: answer}
		if session.PendingPrompt != "" {
			reply.Text += "\n\n" + session.PendingPrompt
			reply.IsPrompt = true
		}
		return reply
	}

	if session.Service != "" {
		if input, ok := parseQuoteInput(session.Service, message); ok {
			return s.quote(session, input)
		}
	}

	return s.nextPrompt(session)
}

// quote prices the current service and, when other services were already
// quoted in this session, rolls them into a combined total. The combined
// phrasing is what the extractor's last-total-wins rule keys on.
func (s *Service) quote(session *Session, input pricing.Input) Reply {
	q, err := pricing.Compute(pricing.Service(session.Service), input)
	if err != nil {
		s.logger.Warn("quote failed", "session_id", session.ID, "service", session.Service, "error", err)
		return s.nextPrompt(session)
	}

	if session.Quoted == nil {
		session.Quoted = make(map[string]int)
	}
	session.Quoted[session.Service] = q.Total
	s.metrics.ObserveQuote(session.Service)

	text := fmt.Sprintf("Here is your %s quote: %s. Total: $%d.", session.Service, q.Breakdown, q.Total)
	if len(session.Quoted) > 1 {
		combined := 0
		for _, total := range session.Quoted {
			combined += total
		}
		text += fmt.Sprintf(" New combined total: $%d.", combined)
	}

	next := s.nextPrompt(session)
	if next.Text != "" {
		text += "\n\n" + next.Text
	}
	return Reply{Text: text, QuickReplies: next.QuickReplies, IsPrompt: next.IsPrompt}
}

// nextPrompt walks the booking slots in fixed order and asks for the first
// missing one. The prompt is remembered so side questions can re-issue it.
func (s *Service) nextPrompt(session *Session) Reply {
	prompt := func(text string, quick ...string) Reply {
		session.PendingPrompt = text
		return Reply{Text: text, QuickReplies: quick, IsPrompt: true}
	}

	switch {
	case session.Service == "":
		return prompt(greeting, serviceQuickReplies...)
	case len(session.Quoted) == 0:
		return prompt(quoteQuestion(session.Service))
	case session.Fields.Name == "":
		return prompt("Great! May I have your name?")
	case session.Fields.Phone == "":
		return prompt("What's the best phone number to reach you?")
	case session.Fields.Address == "":
		return prompt("What's the service address? Street, city, GA and zip, please.")
	case session.Fields.ArrivalWindow == "":
		return prompt("Which arrival window works better for you?", "8 to 12", "1 to 5")
	default:
		session.PendingPrompt = ""
		return Reply{
			Text:         "You're all set. Reply \"finalize\" and we'll lock in your booking.",
			QuickReplies: []string{"Finalize"},
			IsPrompt:     true,
		}
	}
}

func quoteQuestion(service string) string {
	switch service {
	case "carpet":
		return "How many rooms and flights of stairs should we clean? (e.g. \"3 rooms, 1 stairs\")"
	case "upholstery":
		return "What pieces are we cleaning? (e.g. \"sectional with 4 cushions and 2 recliners\")"
	case "duct":
		return "How many basic and deep vent packages, furnaces, and feet of dryer vent? (e.g. \"1 basic, 1 furnace, 10 ft dryer\")"
	default:
		return greeting
	}
}

func (s *Service) finalize(ctx context.Context, session *Session) Reply {
	f := session.Fields
	if f.Name == "" || f.Phone == "" || session.Service == "" {
		next := s.nextPrompt(session)
		next.Text = "Almost there - I need a couple more details first. " + next.Text
		next.IntentHandled = true
		return next
	}

	lead := leads.Lead{
		ID:            uuid.NewString(),
		SessionID:     session.ID,
		Channel:       session.Channel,
		Name:          f.Name,
		Phone:         f.Phone,
		Email:         f.Email,
		Address:       f.Address,
		Zip:           f.Zip,
		Building:      f.Building,
		Pets:          f.Pets,
		OutdoorWater:  f.OutdoorWater,
		Service:       f.SelectedService,
		ArrivalWindow: f.ArrivalWindow,
		PreferredDate: f.Date,
		Notes:         f.Notes,
	}
	if f.TotalPrice != nil {
		lead.TotalPrice = *f.TotalPrice
	}

	if s.leads != nil {
		if err := s.leads.Record(ctx, lead); err != nil {
			s.logger.Error("lead record failed", "session_id", session.ID, "error", err)
			return Reply{
				Text:          "Something went wrong saving your booking - please try again in a moment.",
				IntentHandled: true,
			}
		}
		s.metrics.ObserveLeadRecorded()
	}

	session.PendingPrompt = ""
	text := fmt.Sprintf("Thanks %s! Your booking request is in and we'll confirm by phone shortly.", firstWord(f.Name))
	return Reply{Text: text, IntentHandled: true}
}

// serviceTagFromText maps a service mention to its pricing family tag. First
// category mentioned wins for flow purposes; the extractor tracks the full
// mention set independently.
func serviceTagFromText(text string) string {
	switch {
	case carpetMentionRE.MatchString(text):
		return "carpet"
	case upholsteryMentionRE.MatchString(text):
		return "upholstery"
	case ductMentionRE.MatchString(text):
		return "duct"
	default:
		return ""
	}
}

func faqAnswer(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "hours") || strings.Contains(lower, "open"):
		return "We're out on jobs Monday through Saturday, 8am to 5pm."
	case strings.Contains(lower, "area") || strings.Contains(lower, "where do you"):
		return "We cover the metro Atlanta area and most of north Georgia."
	case strings.Contains(lower, "how much") || strings.Contains(lower, "price list"):
		return pricingOverview
	default:
		return ""
	}
}

// parseQuoteInput mines the message for the counts the given service family
// needs. ok is false when the message carries no usable counts.
func parseQuoteInput(service, message string) (pricing.Input, bool) {
	var in pricing.Input
	switch service {
	case "carpet":
		rooms, okRooms := firstCount(roomsCountRE, message)
		stairs, okStairs := firstCount(stairsCountRE, message)
		if !okRooms && !okStairs {
			return in, false
		}
		in.Rooms = rooms
		in.Stairs = stairs
		return in, true
	case "upholstery":
		for _, m := range sectionalRE.FindAllStringSubmatch(message, -1) {
			cushions := 0
			if m[1] != "" {
				cushions, _ = strconv.Atoi(m[1])
			}
			in.Items = append(in.Items, pricing.UpholsteryItem{Type: "sectional", Cushions: cushions})
		}
		if m := reclinerRE.FindStringSubmatch(message); m != nil {
			count := 1
			if m[1] != "" {
				count, _ = strconv.Atoi(m[1])
			}
			for i := 0; i < count; i++ {
				in.Items = append(in.Items, pricing.UpholsteryItem{Type: "recliner", Cushions: 1})
			}
		}
		return in, len(in.Items) > 0
	case "duct":
		var any bool
		if n, ok := firstCount(ductBasicRE, message); ok {
			in.Basic, any = n, true
		}
		if n, ok := firstCount(ductDeepRE, message); ok {
			in.Deep, any = n, true
		}
		if n, ok := firstCount(ductFurnaceRE, message); ok {
			in.Furnace, any = n, true
		} else if furnaceWordRE.MatchString(message) {
			in.Furnace, any = 1, true
		}
		if dryerWordRE.MatchString(message) {
			if n, ok := firstCount(dryerFeetRE, message); ok {
				in.DryerFeet, any = n, true
			}
		}
		return in, any
	default:
		return in, false
	}
}

func firstCount(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
