package hub

import (
	"time"

	"nearchat/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// Client represents a single WebSocket connection. The session fields below
// the connection are owned by the connection's read goroutine; nothing else
// may touch them.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  *logger.Logger

	// Session state, populated by the first join-home event.
	UserID   int64
	Nickname string

	// At most one of each; zero means not joined.
	CurrentRoomID         int64
	CurrentConversationID int64
}

func NewClient(h *Hub, conn *websocket.Conn, log *logger.Logger) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		hub:  h,
		log:  log,
	}
}

// Identified reports whether the connection has completed join-home.
func (c *Client) Identified() bool {
	return c.UserID != 0
}

// SendMessage queues a frame for delivery. Slow consumers are dropped rather
// than allowed to stall the hub.
func (c *Client) SendMessage(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.log.Warn("client send buffer full, dropping frame",
			zap.String("client_id", c.ID),
			zap.Int64("user_id", c.UserID),
		)
	}
}

// ReadMessage blocks for the next frame from the peer.
func (c *Client) ReadMessage() ([]byte, error) {
	_, message, err := c.conn.ReadMessage()
	return message, err
}

func (c *Client) setupRead() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
}

// WriteLoop drains the send buffer onto the wire and keeps the connection
// alive with pings. It exits when the hub closes the send channel or the
// peer goes away.
func (c *Client) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
