// Package queue implements the subscriber queue: one strict-FIFO
// change-set queue per subscribed client, with long-poll reads and
// broadcast/targeted pushes.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/synctree/synctree/internal/changes"
)

// DefaultTimeout is Get's default long-poll window when the caller doesn't
// specify one.
const DefaultTimeout = 60 * time.Second

// DefaultMaxPayloadBytes bounds a single pushed message's encoded size.
const DefaultMaxPayloadBytes = 512 * 1024 * 1024

// ErrNotSubscribed is returned by Get for a clientID with no queue (never
// subscribed, or since unsubscribed).
var ErrNotSubscribed = errors.New("queue: client not subscribed")

// ErrPayloadTooLarge is returned by Push when message's encoded size exceeds
// the configured maximum.
var ErrPayloadTooLarge = errors.New("queue: payload exceeds maximum size")

// clientQueue is one client's strict FIFO of pending messages. signal is
// closed (and replaced) on every enqueue or unsubscribe, waking any Get
// blocked on it; pending/signal are both guarded by mu.
type clientQueue struct {
	mu      sync.Mutex
	pending []changes.Changes
	signal  chan struct{}
	closed  bool
}

func newClientQueue() *clientQueue {
	return &clientQueue{signal: make(chan struct{})}
}

func (c *clientQueue) enqueue(m changes.Changes) {
	c.mu.Lock()
	c.pending = append(c.pending, m)
	c.wakeLocked()
	c.mu.Unlock()
}

// closeLocked marks the queue unsubscribed and wakes any blocked Get, which
// observes closed on its next loop iteration and returns ErrNotSubscribed
// immediately rather than waiting out the remainder of its timeout.
func (c *clientQueue) closeLocked() {
	c.closed = true
	c.wakeLocked()
}

func (c *clientQueue) wakeLocked() {
	close(c.signal)
	c.signal = make(chan struct{})
}

// Queue holds every subscribed client's queue.
type Queue struct {
	mu         sync.Mutex
	clients    map[string]*clientQueue
	maxPayload int
}

// New builds a Queue with the given maximum payload size in bytes; 0 or
// negative uses DefaultMaxPayloadBytes.
func New(maxPayloadBytes int) *Queue {
	if maxPayloadBytes <= 0 {
		maxPayloadBytes = DefaultMaxPayloadBytes
	}
	return &Queue{clients: map[string]*clientQueue{}, maxPayload: maxPayloadBytes}
}

// Subscribe registers clientID with an empty queue, idempotently: a client
// already subscribed keeps its existing (possibly non-empty) queue.
func (q *Queue) Subscribe(clientID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.clients[clientID]; !ok {
		q.clients[clientID] = newClientQueue()
	}
}

// Unsubscribe removes clientID's queue and wakes any Get blocked on it, which
// then returns ErrNotSubscribed.
func (q *Queue) Unsubscribe(clientID string) {
	q.mu.Lock()
	c, ok := q.clients[clientID]
	delete(q.clients, clientID)
	q.mu.Unlock()

	if ok {
		c.mu.Lock()
		c.closeLocked()
		c.mu.Unlock()
	}
}

// IsSubscribed reports whether clientID currently has a queue.
func (q *Queue) IsSubscribed(clientID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.clients[clientID]
	return ok
}

// Push enqueues message to clientID's queue, or to every currently
// subscribed client when clientID is nil (broadcast clones per recipient:
// each gets its own Additions/Updates/Removals slices).
// Pushing to a clientID with no queue is a silent no-op.
func (q *Queue) Push(message changes.Changes, clientID *string) error {
	if size, err := payloadSize(message); err != nil {
		return err
	} else if size > q.maxPayload {
		return ErrPayloadTooLarge
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if clientID != nil {
		if c, ok := q.clients[*clientID]; ok {
			c.enqueue(message)
		}
		return nil
	}

	for _, c := range q.clients {
		c.enqueue(changes.Changes{
			Additions: append(message.Additions[:0:0], message.Additions...),
			Updates:   append(message.Updates[:0:0], message.Updates...),
			Removals:  append(message.Removals[:0:0], message.Removals...),
		})
	}
	return nil
}

// Get blocks until a message is available for clientID, ctx is canceled, or
// timeout elapses, in which case it returns an empty Changes and nil error.
// timeout <= 0 uses DefaultTimeout. Messages are returned (and dequeued) in
// strict enqueue order.
func (q *Queue) Get(ctx context.Context, clientID string, timeout time.Duration) (changes.Changes, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	q.mu.Lock()
	c, ok := q.clients[clientID]
	q.mu.Unlock()
	if !ok {
		return changes.Empty(), ErrNotSubscribed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		c.mu.Lock()
		if len(c.pending) > 0 {
			msg := c.pending[0]
			c.pending = c.pending[1:]
			c.mu.Unlock()
			return msg, nil
		}
		if c.closed {
			c.mu.Unlock()
			return changes.Empty(), ErrNotSubscribed
		}
		wait := c.signal
		c.mu.Unlock()

		select {
		case <-wait:
			continue
		case <-ctx.Done():
			return changes.Empty(), ctx.Err()
		case <-timer.C:
			return changes.Empty(), nil
		}
	}
}

func payloadSize(message changes.Changes) (int, error) {
	raw, err := json.Marshal(message)
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}
