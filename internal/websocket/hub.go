package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"sapdash/internal/infrastructure"
	"sapdash/internal/metrics"
	"sapdash/pkg/contracts/events"
)

const broadcastBuffer = 256

// Hub maintains the set of active clients and broadcasts messages to them.
// The client map is only touched by Run.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// count mirrors len(clients) for readers outside Run
	mu    sync.RWMutex
	count int

	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubMetrics records client counts and queued messages in m.
func WithHubMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// NewHub creates a Hub. Call Start before registering clients.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		now:        time.Now,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the hub loop in a new goroutine. Later calls are no-ops.
func (h *Hub) Start() {
	h.startOnce.Do(func() { go h.Run() })
}

// Run is the hub loop. It returns after Stop, once every client's send
// channel has been closed.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			for client := range h.clients {
				h.drop(client)
			}
			h.logger.Info("hub shut down")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount()
			h.greet(client)

			h.logger.InfoContext(client.context(), "client registered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

		case client := <-h.unregister:
			if !h.clients[client] {
				continue
			}
			h.drop(client)
			h.logger.InfoContext(client.context(), "client unregistered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", h.now().Sub(client.connectedAt)))

		case message := <-h.broadcast:
			failed := 0
			for client := range h.clients {
				select {
				case client.send <- message:
					h.metrics.WebSocketMessageSent()
				default:
					failed++
					h.drop(client)
					h.logger.WarnContext(client.context(), "client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
			h.logger.Debug("broadcast",
				slog.Int("client_count", len(h.clients)),
				slog.Int("failed", failed),
				slog.Int("message_size", len(message)))
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
	h.metrics.SetWebSocketClients(h.count)
}

// greet queues the connection message for a newly registered client.
func (h *Hub) greet(client *Client) {
	msg := events.NewMessage(events.MessageTypeConnection, events.ConnectionData{
		ClientID: client.id,
		Status:   "connected",
	})
	msg.Timestamp = h.now()
	msg.TraceID = client.traceID

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
		h.metrics.WebSocketMessageSent()
	default:
		h.logger.WarnContext(client.context(), "failed to send connection message, client buffer full",
			slog.String("client_id", client.id))
	}
}

// Register adds a client to the hub. It returns false if the hub is stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// BroadcastMessage sends a typed message to every connected client.
func (h *Hub) BroadcastMessage(msgType events.MessageType, data interface{}) {
	h.BroadcastMessageContext(context.Background(), msgType, data)
}

// BroadcastMessageContext is BroadcastMessage carrying the trace id of ctx.
func (h *Hub) BroadcastMessageContext(ctx context.Context, msgType events.MessageType, data interface{}) {
	msg := events.NewMessage(msgType, data)
	msg.Timestamp = h.now()
	msg.TraceID = infrastructure.GetTraceID(ctx)

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msgType)))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.quit:
	}
}

// BroadcastRefresh asks every connected page to reload its data.
func (h *Hub) BroadcastRefresh(ctx context.Context, reason string) {
	h.BroadcastMessageContext(ctx, events.MessageTypeDashboardRefresh, events.RefreshData{Reason: reason})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Stop closes every client and waits for Run to return if it was started.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })

	started := true
	h.startOnce.Do(func() { started = false })
	if started {
		<-h.done
	}
}
