package ws

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

const taskQueueSize = 256

var ErrHubStopped = goerr.New("hub is stopped")

// Hub owns the set of connected clients. Every task submitted to the hub runs on a
// single goroutine, one at a time, so event handlers never interleave.
type Hub struct {
	clients map[*Client]struct{}
	tasks   chan func(ctx context.Context)
	done    chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		tasks:   make(chan func(ctx context.Context), taskQueueSize),
		done:    make(chan struct{}),
	}
}

// Run executes submitted tasks until ctx is cancelled, then disconnects every client
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			logging.From(ctx).Info("hub stopped")
			return nil

		case task := <-h.tasks:
			task(ctx)
		}
	}
}

// Submit queues a task for the hub goroutine. It blocks while the queue is full.
func (h *Hub) Submit(task func(ctx context.Context)) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.tasks <- task:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Len returns the number of connected clients. Must be called from a hub task.
func (h *Hub) Len() int {
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	if _, ok := h.clients[c]; ok {
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// broadcast queues the frame on every client. Clients that cannot keep up are dropped.
func (h *Hub) broadcast(ctx context.Context, frame []byte) {
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			logging.From(ctx).Warn("dropping slow client", "conn_id", c.id)
			h.drop(c)
		}
	}
}
