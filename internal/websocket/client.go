package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/askwhyharsh/arlocations/internal/session"
	"github.com/askwhyharsh/arlocations/pkg/logger"
)

type MessageHandler interface {
	handleMessage(*Client, *IncomingMessage)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

// Client is one device connection. It is the session's Device: overlay and
// node updates are queued without blocking and dropped when the queue is
// full.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan *Message
	sessionID string
	session   *session.Session
	ctx       context.Context
	cancel    context.CancelFunc
	handler   MessageHandler
	logger    logger.Logger

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, sess *session.Session, handler MessageHandler, log logger.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan *Message, sendQueueSize),
		sessionID: sess.ID,
		session:   sess,
		ctx:       ctx,
		cancel:    cancel,
		handler:   handler,
		logger:    log,
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.session.Detach(c)
		c.hub.Unregister(c)
		c.conn.Close()
		c.cancel()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read failed", "session_id", c.sessionID, "error", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendError("Invalid message format", "INVALID_FORMAT")
			continue
		}

		c.handler.handleMessage(c, &msg)
	}
}

func (c *Client) WritePump() {
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

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("WebSocket write failed", "session_id", c.sessionID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// trySend queues msg unless the client is closed or its queue is full.
func (c *Client) trySend(msg *Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close stops delivery. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) Show(text string) {
	if !c.trySend(NewInfoShowMessage(text)) {
		c.logger.Debug("Dropped info update", "session_id", c.sessionID)
	}
}

func (c *Client) Hide() {
	c.trySend(NewInfoHideMessage())
}

func (c *Client) PushNodes(nodes []session.NodeState) {
	if !c.trySend(NewNodesMessage(nodes)) {
		c.logger.Debug("Dropped node update", "session_id", c.sessionID)
	}
}

func (c *Client) SendError(errMsg string, code string) {
	c.trySend(NewErrorMessage(errMsg, code))
}
