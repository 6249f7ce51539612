package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"verba/internal/application"
)

type entry struct {
	sess     *application.Session
	lastSeen time.Time
}

// Store keeps live sessions in memory. A session idle for longer than ttl
// is discarded on the next lookup or sweep.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*entry
	ttl       time.Duration
	onDiscard func(*application.Session)
	logger    *slog.Logger
	now       func() time.Time
}

// NewStore creates a store. onDiscard runs after a session leaves the
// store, outside the store lock; it may be nil.
func NewStore(ttl time.Duration, onDiscard func(*application.Session), logger *slog.Logger) *Store {
	return &Store{
		sessions:  make(map[string]*entry),
		ttl:       ttl,
		onDiscard: onDiscard,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Store) Create() *application.Session {
	now := s.now()
	sess := application.NewSession(uuid.NewString(), now)

	s.mu.Lock()
	s.sessions[sess.ID] = &entry{sess: sess, lastSeen: now}
	s.mu.Unlock()

	s.logger.Info("session started", "session", sess.ID)
	return sess
}

// Get returns a live session and marks it as seen.
func (s *Store) Get(id string) (*application.Session, bool) {
	now := s.now()

	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	if s.expired(e, now) {
		delete(s.sessions, id)
		s.mu.Unlock()
		s.discard(e.sess, "expired")
		return nil, false
	}
	e.lastSeen = now
	s.mu.Unlock()

	return e.sess, true
}

// Discard ends a session explicitly.
func (s *Store) Discard(id string) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.discard(e.sess, "discarded")
	}
}

// Sweep discards every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	var stale []*application.Session
	s.mu.Lock()
	for id, e := range s.sessions {
		if s.expired(e, now) {
			stale = append(stale, e.sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		s.discard(sess, "expired")
	}
	return len(stale)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.logger.Debug("swept idle sessions", "count", n)
				}
			}
		}
	}()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close discards all sessions.
func (s *Store) Close() {
	s.mu.Lock()
	all := make([]*application.Session, 0, len(s.sessions))
	for _, e := range s.sessions {
		all = append(all, e.sess)
	}
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, sess := range all {
		s.discard(sess, "shutdown")
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl
}

func (s *Store) discard(sess *application.Session, reason string) {
	sess.Close()
	if s.onDiscard != nil {
		s.onDiscard(sess)
	}
	s.logger.Info("session ended", "session", sess.ID, "reason", reason)
}
