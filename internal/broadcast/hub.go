// Package broadcast pushes completed pricing runs to WebSocket clients.
package broadcast

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/observability"
)

// broadcastBufferSize is how many notices may wait for the hub loop.
const broadcastBufferSize = 256

// Hub maintains the set of active clients and broadcasts run notices to them.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan RunNotice
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	upgrader websocket.Upgrader
	metrics  *observability.Metrics
	logger   *log.Logger
	ctx      context.Context
}

// Options for creating a Hub.
type Options struct {
	AllowedOrigins []string // empty = any origin
	Metrics        *observability.Metrics
	Logger         *log.Logger
}

// NewHub creates a new Hub. Call Run before serving connections.
func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan RunNotice, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    metrics,
		logger:     logger,
		ctx:        context.Background(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.clientsMu.Lock()
	h.ctx = ctx
	h.clientsMu.Unlock()
	defer close(h.done)

	h.logger.Printf("[broadcast] hub started")
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case notice := <-h.broadcast:
			h.broadcastNotice(notice)
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// PublishRun queues a notice for run. Drops it if the buffer is full.
func (h *Hub) PublishRun(run *domain.PricingRun) {
	select {
	case h.broadcast <- NewRunNotice(run):
	default:
		h.logger.Printf("[broadcast] buffer full, dropping notice for run %s", run.RunID)
	}
}

// ServeHTTP upgrades the request to a WebSocket client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[broadcast] upgrade error: %v", err)
		return
	}

	h.clientsMu.RLock()
	ctx := h.ctx
	h.clientsMu.RUnlock()

	c := newClient(uuid.NewString(), conn, h)
	h.Register(c)

	// Pumps follow the hub's lifetime, not the request's.
	go c.writePump(ctx)
	go c.readPump(ctx)
}

// ClientCount returns the number of active clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	h.metrics.WSClients.Set(float64(len(h.clients)))
	h.logger.Printf("[broadcast] client %s connected (total: %d)", c.ID, len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.metrics.WSClients.Set(float64(len(h.clients)))
		h.logger.Printf("[broadcast] client %s disconnected (total: %d)", c.ID, len(h.clients))
	}
}

// broadcastNotice sends a notice to every subscribed client. Slow clients
// are disconnected.
func (h *Hub) broadcastNotice(notice RunNotice) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	msg := ServerMessage{
		Type:      MessageTypeRunCompleted,
		Payload:   notice,
		Timestamp: time.Now().UTC(),
	}

	for _, c := range clients {
		if !c.wants(notice.LeagueID) {
			continue
		}
		if !c.trySend(msg) {
			h.logger.Printf("[broadcast] client %s buffer full, disconnecting", c.ID)
			h.unregisterClient(c)
		}
	}
}

// shutdown closes all client connections.
func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.logger.Printf("[broadcast] shutting down hub (%d active clients)", len(h.clients))
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.metrics.WSClients.Set(0)
}
