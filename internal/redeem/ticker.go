package redeem

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTick is the countdown refresh rate
const DefaultTick = time.Second

// Tick is one countdown update
type Tick struct {
	Code             string    `json:"code"`
	SecondsRemaining int       `json:"seconds_remaining"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Watch emits the current code immediately and then on every tick. The
// channel is closed when ctx is cancelled or the session disappears.
func (s *Store) Watch(ctx context.Context, id uuid.UUID, every time.Duration) (<-chan Tick, error) {
	if _, err := s.Current(id); err != nil {
		return nil, err
	}
	if every <= 0 {
		every = DefaultTick
	}

	out := make(chan Tick)
	go func() {
		defer close(out)
		t := time.NewTicker(every)
		defer t.Stop()

		for {
			sess, err := s.Current(id)
			if err != nil {
				return
			}
			tick := Tick{
				Code:             sess.Code,
				SecondsRemaining: sess.SecondsRemaining(s.now()),
				ExpiresAt:        sess.ExpiresAt,
			}
			select {
			case <-ctx.Done():
				return
			case out <- tick:
			}
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
	return out, nil
}
