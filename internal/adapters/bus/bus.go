// Package bus adapts the external event bus that delivers live-broadcast
// start notifications. The in-memory implementation bridges the process-local
// side of that bus onto a channel; delivery is at-least-once, so consumers
// must tolerate duplicates.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgrady/gridiron/internal/domain/types"
	"github.com/mgrady/gridiron/pkg/metrics"
)

// Default buffer for pending notifications.
const defaultBufferSize = 256

// BroadcastStart announces a live broadcast beginning for a week, which
// implicitly locks that week's contest.
type BroadcastStart struct {
	// MessageID identifies one delivery attempt; duplicates share it.
	MessageID string         `json:"message_id"`
	Guild     types.GuildID  `json:"guild"`
	League    types.LeagueID `json:"league"`
	Season    types.Season   `json:"season"`
	Week      types.Week     `json:"week"`
	At        time.Time      `json:"at"`
}

// Key returns the contest key the notification addresses.
func (b BroadcastStart) Key() types.ContestKey {
	return types.ContestKey{Guild: b.Guild, League: b.League, Season: b.Season, Week: b.Week}
}

// NewBroadcastStart builds a notification with a fresh message id.
func NewBroadcastStart(key types.ContestKey, at time.Time) BroadcastStart {
	return BroadcastStart{
		MessageID: uuid.NewString(),
		Guild:     key.Guild,
		League:    key.League,
		Season:    key.Season,
		Week:      key.Week,
		At:        at,
	}
}

// Bus provides non-blocking publish and channel-based subscribe semantics.
type Bus interface {
	// Publish delivers a notification. Returns false if the bus is full or
	// closed and the notification was dropped.
	Publish(ctx context.Context, b BroadcastStart) bool

	// Subscribe returns a channel receiving notifications. The channel is
	// closed when the bus closes.
	Subscribe(ctx context.Context) <-chan BroadcastStart

	// Close shuts the bus down; pending notifications are still delivered.
	Close() error
}

// InMemoryBus implements Bus over a buffered channel.
type InMemoryBus struct {
	events chan BroadcastStart
	size   int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryBus.
type Option func(*InMemoryBus)

// WithBufferSize bounds the number of undelivered notifications.
func WithBufferSize(n int) Option {
	return func(b *InMemoryBus) {
		if n > 0 {
			b.size = n
		}
	}
}

// NewInMemoryBus creates an in-memory bus with configuration options.
func NewInMemoryBus(opts ...Option) *InMemoryBus {
	b := &InMemoryBus{size: defaultBufferSize}
	for _, opt := range opts {
		opt(b)
	}
	b.events = make(chan BroadcastStart, b.size)
	return b
}

func (b *InMemoryBus) Publish(ctx context.Context, ev BroadcastStart) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false
	}
	select {
	case b.events <- ev:
		metrics.RecordBroadcastEvent()
		return true
	case <-ctx.Done():
		return false
	default:
		return false
	}
}

func (b *InMemoryBus) Subscribe(ctx context.Context) <-chan BroadcastStart {
	out := make(chan BroadcastStart)
	go func() {
		defer close(out)
		for ev := range b.events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	close(b.events)
	b.closed = true
	return nil
}
