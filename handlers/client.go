package handlers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/felixzhu97/whatschat-sub002/models"
	"github.com/felixzhu97/whatschat-sub002/utils"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

// Client is one authenticated websocket session. Outbound frames go through
// a buffered queue drained by a single writer goroutine; inbound frames are
// read and dispatched in arrival order on the reader goroutine.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *utils.Logger
}

func NewClient(userID string, conn *websocket.Conn, queueSize int, logger *utils.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, queueSize),
		done:   make(chan struct{}),
		logger: logger.With("user_id", userID, "conn_id", id),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() string {
	return c.userID
}

// Emit queues one event frame for delivery. A full queue means the peer has
// stopped draining; the connection is closed and the frame dropped, which the
// relay layer treats the same as the user being offline.
func (c *Client) Emit(event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		c.logger.Error("failed to marshal event payload", "event", event, "error", err)
		return
	}

	frame, err := json.Marshal(models.Envelope{Event: event, Data: payload})
	if err != nil {
		c.logger.Error("failed to marshal event frame", "event", event, "error", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- frame:
	default:
		c.logger.Warn("send queue full, closing connection", "event", event)
		c.Close()
	}
}

// Close shuts the session down. Safe to call from any goroutine, any number
// of times.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump reads frames until the connection dies and hands each one to
// onFrame. Runs on the caller's goroutine; returning means the connection is
// gone, whatever the cause.
func (c *Client) readPump(onFrame func([]byte)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("connection closed unexpectedly", "error", err)
			}
			return
		}
		onFrame(raw)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
