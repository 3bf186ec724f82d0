package ws

import (
	"context"

	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

// Session is the connection an event arrived on. Handlers broadcast through it
// instead of reaching for shared state.
type Session struct {
	ConnID  string
	gateway *Gateway
}

// Broadcast sends an event to every connected peer
func (s *Session) Broadcast(ctx context.Context, event types.EventName, data any) error {
	return s.gateway.broadcast(ctx, event, data)
}

// BroadcastPresence sends the current presence snapshot to every connected peer
func (s *Session) BroadcastPresence(ctx context.Context) error {
	return s.gateway.broadcastPresence(ctx)
}
