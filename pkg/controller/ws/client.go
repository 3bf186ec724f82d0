package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	sendQueueSize = 256
)

// Client is one websocket connection
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newClient(id string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}
}

// readPump decodes frames from the peer and hands them to onFrame until the
// connection breaks. Frames that are not an envelope are logged and skipped.
func (c *Client) readPump(ctx context.Context, onFrame func(env *model.Envelope)) {
	logger := logging.From(ctx)
	defer func() {
		_ = c.hub.Submit(func(ctx context.Context) {
			c.hub.unregister(c)
		})
		_ = c.conn.Close()
		logger.Debug("connection closed", "conn_id", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", "conn_id", c.id, "error", err)
			}
			return
		}

		var env model.Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			logger.Warn("ignoring malformed frame", "conn_id", c.id, "size", len(raw))
			continue
		}
		onFrame(&env)
	}
}

// writePump writes queued frames and keepalive pings to the peer
func (c *Client) writePump(ctx context.Context) {
	logger := logging.From(ctx)
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debug("websocket write error", "conn_id", c.id, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
