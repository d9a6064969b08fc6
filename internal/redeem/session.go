package redeem

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or swept sessions
var ErrSessionNotFound = errors.New("redemption session not found")

// Session is one on-screen redemption code for a venue
type Session struct {
	ID        uuid.UUID
	VenueID   int
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	lastSeen  time.Time
}

// SecondsRemaining is the countdown shown next to the code
func (s Session) SecondsRemaining(now time.Time) int {
	left := s.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// advance replaces the code once the window has elapsed. Windows that passed
// without anyone looking are skipped so the countdown stays aligned.
func (s *Session) advance(now time.Time, interval time.Duration, gen *Generator) bool {
	if now.Before(s.ExpiresAt) {
		return false
	}
	windows := now.Sub(s.IssuedAt) / interval
	s.IssuedAt = s.IssuedAt.Add(windows * interval)
	s.ExpiresAt = s.IssuedAt.Add(interval)
	s.Code = gen.Generate()
	return true
}

// Store keeps sessions in memory; nothing survives a restart
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	gen      *Generator
	interval time.Duration
	idleTTL  time.Duration
	now      func() time.Time
}

// StoreOption customises a Store
type StoreOption func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIdleTTL sets how long an unviewed session is kept
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = ttl }
}

// NewStore creates a session store refreshing codes every interval
func NewStore(gen *Generator, interval time.Duration, opts ...StoreOption) *Store {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Store{
		sessions: make(map[uuid.UUID]*Session),
		gen:      gen,
		interval: interval,
		idleTTL:  30 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's clock reading
func (s *Store) Now() time.Time {
	return s.now()
}

// Issue opens a new session for a venue
func (s *Store) Issue(venueID int) Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.New(),
		VenueID:   venueID,
		Code:      s.gen.Generate(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.interval),
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return *sess
}

// Current returns the session with its code refreshed if the window elapsed
func (s *Store) Current(id uuid.UUID) (Session, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	sess.advance(now, s.interval, s.gen)
	sess.lastSeen = now
	return *sess, nil
}

// Close drops a session when the member dismisses the code view
func (s *Store) Close(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Sweep removes sessions nobody looked at for longer than the idle TTL
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.idleTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunSweeper sweeps every interval until ctx is cancelled
func (s *Store) RunSweeper(ctx context.Context, every time.Duration, onSweep func(removed int)) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
