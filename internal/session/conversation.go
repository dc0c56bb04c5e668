package session

import (
	"sync"
	"time"

	"github.com/porespective/backend/internal/domain"
)

// Conversation is the handle for one session's memory
type Conversation struct {
	id         string
	createdAt  time.Time
	mu         sync.Mutex
	history    []domain.Exchange
	lastActive time.Time
	clock      func() time.Time
}

func newConversation(id string, clock func() time.Time) *Conversation {
	now := clock()
	return &Conversation{
		id:         id,
		createdAt:  now,
		lastActive: now,
		history:    []domain.Exchange{},
		clock:      clock,
	}
}

// ID returns the session id the handle is registered under
func (c *Conversation) ID() string {
	return c.id
}

// Record appends an exchange. History is never deduplicated or truncated.
func (c *Conversation) Record(input, output string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, domain.Exchange{Input: input, Output: output})
	c.lastActive = c.clock()
}

// History returns a copy of the recorded exchanges in order
func (c *Conversation) History() []domain.Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Exchange, len(c.history))
	copy(out, c.history)
	return out
}

// Len returns the number of recorded exchanges
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// CreatedAt returns when the session was first referenced
func (c *Conversation) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Conversation) touch(now time.Time) {
	c.mu.Lock()
	c.lastActive = now
	c.mu.Unlock()
}

func (c *Conversation) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}
