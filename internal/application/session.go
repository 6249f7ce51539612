package application

import (
	"context"
	"sync"
	"time"

	"verba/internal/domain"
)

type State int

const (
	StateNoProfile State = iota
	StateProfileSet
	StateTranscribed
	StateDrafted
	StateSent
)

func (s State) String() string {
	switch s {
	case StateNoProfile:
		return "no_profile"
	case StateProfileSet:
		return "profile_set"
	case StateTranscribed:
		return "transcribed"
	case StateDrafted:
		return "drafted"
	case StateSent:
		return "sent"
	default:
		return "unknown"
	}
}

// SentResult records the provider acknowledgment of the last send.
type SentResult struct {
	MessageID  string
	Recipients []string
	Subject    string
	At         time.Time
}

type pendingSend struct {
	state string
	msg   domain.Message
}

// Session is the per-user form state. All mutation goes through the
// Assistant, which holds mu for the whole action so one session runs at
// most one action at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	profile    *domain.Profile
	transcript *string
	draft      *string
	sent       *SentResult
	pending    *pendingSend
}

func NewSession(id string, now time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        id,
		CreatedAt: now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Close cancels any in-flight call bound to the session. A closed session
// must not be reused.
func (s *Session) Close() {
	s.cancel()
}

// Done is closed once the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// bind derives a context that is cancelled when either ctx or the session ends.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (s *Session) state() State {
	switch {
	case s.profile == nil:
		return StateNoProfile
	case s.sent != nil:
		return StateSent
	case s.draft != nil:
		return StateDrafted
	case s.transcript != nil:
		return StateTranscribed
	default:
		return StateProfileSet
	}
}

func (s *Session) clearWork() {
	s.transcript = nil
	s.draft = nil
	s.sent = nil
	s.pending = nil
}

// View is a read-only copy of the session for rendering.
type View struct {
	ID          string
	State       State
	Profile     domain.Profile
	Transcript  string
	Draft       string
	Sent        *SentResult
	PendingSend bool
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{ID: s.ID, State: s.state(), PendingSend: s.pending != nil}
	if s.profile != nil {
		v.Profile = *s.profile
	}
	if s.transcript != nil {
		v.Transcript = *s.transcript
	}
	if s.draft != nil {
		v.Draft = *s.draft
	}
	if s.sent != nil {
		sent := *s.sent
		v.Sent = &sent
	}
	return v
}
