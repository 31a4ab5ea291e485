package broadcast

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outbound messages
	sendBufferSize = 64
)

// Client is one WebSocket connection.
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan ServerMessage
	hub    *Hub
	logger *log.Logger

	filterMu sync.RWMutex
	leagues  map[string]bool // empty = all leagues
}

func newClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan ServerMessage, sendBufferSize),
		hub:    hub,
		logger: hub.logger,
	}
}

// readPump handles subscription messages until the connection closes.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Printf("[broadcast] client %s unexpected close: %v", c.ID, err)
			}
			return
		}
		c.handle(msg)
	}
}

// writePump forwards hub messages and keeps the connection alive.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Printf("[broadcast] client %s write error: %v", c.ID, err)
				return
			}
			c.hub.metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues msg without blocking. Returns false if the buffer is full.
func (c *Client) trySend(msg ServerMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) handle(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.setLeagues(msg.Leagues)
		c.trySend(ServerMessage{Type: MessageTypeSubscribed, Payload: c.subscriptions(), Timestamp: time.Now().UTC()})
	case MessageTypeUnsubscribe:
		c.setLeagues(nil)
		c.trySend(ServerMessage{Type: MessageTypeSubscribed, Payload: c.subscriptions(), Timestamp: time.Now().UTC()})
	default:
		c.trySend(ServerMessage{Type: MessageTypeError, Payload: "unknown message type " + msg.Type, Timestamp: time.Now().UTC()})
	}
}

func (c *Client) setLeagues(leagues []string) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.leagues = make(map[string]bool, len(leagues))
	for _, l := range leagues {
		c.leagues[l] = true
	}
}

// subscriptions returns the subscribed league ids; empty means all.
func (c *Client) subscriptions() []string {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	out := make([]string, 0, len(c.leagues))
	for l := range c.leagues {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// wants reports whether the client subscribed to leagueID.
func (c *Client) wants(leagueID string) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return len(c.leagues) == 0 || c.leagues[leagueID]
}
