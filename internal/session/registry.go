package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/observability"
)

// Registry maps session ids to conversation handles for the life of the process
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Conversation
	idleTTL  time.Duration // 0 disables eviction
	now      func() time.Time
	logger   zerolog.Logger
}

func (r *Registry) clock() time.Time {
	return r.now()
}

// NewRegistry creates an empty registry
func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Conversation),
		idleTTL:  idleTTL,
		now:      time.Now,
		logger:   observability.Component("session"),
	}
}

// GetOrCreate returns the handle for id, creating an empty one if absent.
// Concurrent callers with the same new id receive the same handle.
func (r *Registry) GetOrCreate(id string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if conv, ok := r.sessions[id]; ok {
		conv.touch(now)
		return conv
	}

	conv := newConversation(id, r.clock)
	r.sessions[id] = conv
	r.logger.Debug().Str("session_id", id).Msg("session created")
	return conv
}

// Lookup returns the handle for id without creating one
func (r *Registry) Lookup(id string) (*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return conv, nil
}

// EvictIdle removes sessions idle for at least the registry's TTL and returns how many were removed
func (r *Registry) EvictIdle() int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, conv := range r.sessions {
		if now.Sub(conv.idleSince()) >= r.idleTTL {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup evicts idle sessions every interval until ctx is cancelled
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := r.EvictIdle(); removed > 0 {
					r.logger.Info().Int("removed", removed).Int("remaining", r.Len()).Msg("evicted idle sessions")
				}
			}
		}
	}()
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
