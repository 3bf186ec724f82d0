package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
	"github.com/secmon-lab/vitalmap/pkg/usecase"
	"github.com/secmon-lab/vitalmap/pkg/utils/errutil"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

type handler func(ctx context.Context, s *Session, env *model.Envelope) error

// Gateway routes realtime events between peers and use cases
type Gateway struct {
	uc       *usecase.UseCases
	hub      *Hub
	relay    interfaces.Relay
	upgrader websocket.Upgrader
	handlers map[types.EventName]handler
}

type Option func(*Gateway)

// WithRelay shares broadcasts with other server instances
func WithRelay(relay interfaces.Relay) Option {
	return func(g *Gateway) {
		g.relay = relay
	}
}

// WithCheckOrigin overrides the origin check of the websocket upgrade
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(g *Gateway) {
		g.upgrader.CheckOrigin = check
	}
}

func New(uc *usecase.UseCases, opts ...Option) *Gateway {
	g := &Gateway{
		uc:  uc,
		hub: NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Peers are served from any origin, as with the map page itself
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	g.handlers = map[types.EventName]handler{
		types.EventUserJoined:      g.handleUserJoined,
		types.EventUserConnected:   g.handleUserConnected,
		types.EventLocationSharing: g.handleLocationSharing,
		types.EventUpdateUser:      g.handleUpdateUser,
		types.EventUserLeft:        g.handleUserLeft,
		types.EventUserLogout:      g.handleUserLogout,
		types.EventDeleteAccount:   g.handleDeleteAccount,
		types.EventHealthData:      g.handleHealthData,
		types.EventWatchSync:       g.handleWatchSync,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Run processes events until ctx is cancelled. Envelopes relayed from other
// instances are delivered through the same loop.
func (g *Gateway) Run(ctx context.Context) error {
	if g.relay != nil {
		go func() {
			err := g.relay.Subscribe(ctx, func(env *model.Envelope) {
				frame, err := json.Marshal(env)
				if err != nil {
					_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to encode relayed envelope"), "relay delivery failed")
					return
				}
				_ = g.hub.Submit(func(ctx context.Context) {
					g.hub.broadcast(ctx, frame)
				})
			})
			if err != nil && ctx.Err() == nil {
				_ = errutil.Handle(ctx, err, "relay subscription stopped")
			}
		}()
	}

	return g.hub.Run(ctx)
}

// ServeHTTP upgrades the request to a websocket and attaches it to the hub
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the peer
		logging.From(ctx).Warn("websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	client := newClient(connID, g.hub, conn)
	session := &Session{ConnID: connID, gateway: g}

	// The request context ends when ServeHTTP returns; pumps keep the logger only
	clientCtx := logging.With(context.Background(), logging.From(ctx).With("conn_id", connID))

	if err := g.hub.Submit(func(ctx context.Context) {
		g.hub.register(client)
	}); err != nil {
		_ = conn.Close()
		return
	}
	logging.From(clientCtx).Debug("peer connected", "remote", r.RemoteAddr)

	go client.writePump(clientCtx)
	go client.readPump(clientCtx, func(env *model.Envelope) {
		_ = g.hub.Submit(func(ctx context.Context) {
			g.dispatch(logging.With(ctx, logging.From(clientCtx)), session, env)
		})
	})
}

// RefreshPresence pushes the current presence snapshot to the peers of this
// instance. It is not relayed; every instance refreshes its own peers.
func (g *Gateway) RefreshPresence(ctx context.Context) error {
	done := make(chan error, 1)
	if err := g.hub.Submit(func(ctx context.Context) {
		snapshot, err := g.uc.Presence.Snapshot(ctx)
		if err != nil {
			done <- err
			return
		}
		_, err = g.broadcastLocal(ctx, types.EventUsersUpdate, snapshot)
		done <- err
	}); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch runs on the hub goroutine. Failures are logged and never reported to peers.
func (g *Gateway) dispatch(ctx context.Context, s *Session, env *model.Envelope) {
	h, ok := g.handlers[env.Event]
	if !ok {
		logging.From(ctx).Warn("ignoring unknown event", "event", env.Event)
		return
	}

	if err := h(ctx, s, env); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to handle event", goerr.V(usecase.EventKey, env.Event)), "failed to handle event")
	}
}

// broadcast sends an envelope to local peers and to other instances
func (g *Gateway) broadcast(ctx context.Context, event types.EventName, data any) error {
	env, err := g.broadcastLocal(ctx, event, data)
	if err != nil {
		return err
	}

	if g.relay != nil {
		if err := g.relay.Publish(ctx, env); err != nil {
			_ = errutil.Handle(ctx, err, "failed to publish to relay")
		}
	}
	return nil
}

// broadcastLocal sends an envelope to the peers of this instance only
func (g *Gateway) broadcastLocal(ctx context.Context, event types.EventName, data any) (*model.Envelope, error) {
	env, err := model.NewEnvelope(event, data)
	if err != nil {
		return nil, err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode envelope", goerr.V(usecase.EventKey, event))
	}

	g.hub.broadcast(ctx, frame)
	return env, nil
}

func (g *Gateway) broadcastPresence(ctx context.Context) error {
	snapshot, err := g.uc.Presence.Snapshot(ctx)
	if err != nil {
		return err
	}
	return g.broadcast(ctx, types.EventUsersUpdate, snapshot)
}
