package testutil

import (
	"context"
	"sync"

	"tng-poetry-backend/internal/models"
)

// PoemSet is a fixed poem lookup.
type PoemSet map[string]bool

// NewPoemSet returns a lookup that knows the given poem IDs.
func NewPoemSet(ids ...string) PoemSet {
	s := make(PoemSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Exists reports whether id is in the set.
func (s PoemSet) Exists(id string) bool { return s[id] }

// PublisherStub records published review events.
type PublisherStub struct {
	mu     sync.Mutex
	events []models.ReviewEvent

	// Err, when set, is returned after the event is recorded.
	Err error
}

// PublishReviewEvent records the event.
func (p *PublisherStub) PublishReviewEvent(_ context.Context, event models.ReviewEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of the recorded events.
func (p *PublisherStub) Events() []models.ReviewEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.ReviewEvent, len(p.events))
	copy(out, p.events)
	return out
}

// MessageQueueStub records published messages per queue.
type MessageQueueStub struct {
	mu       sync.Mutex
	Messages map[string][][]byte
	Err      error
	closed   bool
}

// Publish records body under queueName.
func (m *MessageQueueStub) Publish(_ context.Context, queueName, _ string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Messages == nil {
		m.Messages = make(map[string][][]byte)
	}
	m.Messages[queueName] = append(m.Messages[queueName], body)
	return nil
}

// Close marks the stub closed.
func (m *MessageQueueStub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
