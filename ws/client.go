package ws

import (
	"encoding/json"
	"time"

	"memberhub_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// IncomingWSMessage is what clients may send. The channel is push-only, so
// the only action understood is "ping".
type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Send    chan Event
	Manager *WebSocketManager
	// pong is owned by the client; Send is closed by the manager.
	pong chan struct{}
}

func newClient(userID string, conn *websocket.Conn, manager *WebSocketManager) *Client {
	return &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan Event, 64),
		Manager: manager,
		pong:    make(chan struct{}, 1),
	}
}

func (c *Client) leave() {
	select {
	case c.Manager.unregister <- c:
	case <-c.Manager.done:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.leave()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Websocket read error", "user_id", c.UserID, "error", err)
			}
			return
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.Debug("Ignoring malformed websocket message", "user_id", c.UserID)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(event); err != nil {
				logger.Warn("Websocket write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-c.pong:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteJSON(Event{Type: "pong", SentAt: time.Now().UTC()}); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {
	case "ping":
		select {
		case c.pong <- struct{}{}:
		default:
		}
	default:
		logger.Debug("Unhandled websocket action", "user_id", c.UserID, "action", msg.Action)
	}
}
