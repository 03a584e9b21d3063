package live

import (
	"log/slog"
	"sync"
)

// Gauge tracks the number of connected subscribers.
type Gauge interface {
	Inc()
	Dec()
}

// Hub groups clients by topic and fans messages out to them.
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client
	clients map[string]*Client

	// topics maps topic to set of client IDs
	topics map[string]map[string]struct{}

	// clientTopic maps client ID to its topic
	clientTopic map[string]string

	gauge  Gauge
	logger *slog.Logger
}

// NewHub creates a new Hub. gauge may be nil.
func NewHub(gauge Gauge, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:     make(map[string]*Client),
		topics:      make(map[string]map[string]struct{}),
		clientTopic: make(map[string]string),
		gauge:       gauge,
		logger:      logger,
	}
}

// Subscribe registers client under topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clientTopic[client.ID]; ok {
		h.removeLocked(client.ID, old)
	} else if h.gauge != nil {
		h.gauge.Inc()
	}

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]struct{})
	}
	h.topics[topic][client.ID] = struct{}{}
	h.clients[client.ID] = client
	h.clientTopic[client.ID] = topic
}

// Unsubscribe removes client from the hub.
func (h *Hub) Unsubscribe(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic, ok := h.clientTopic[client.ID]
	if !ok {
		return
	}
	h.removeLocked(client.ID, topic)
	delete(h.clients, client.ID)
	delete(h.clientTopic, client.ID)
	if h.gauge != nil {
		h.gauge.Dec()
	}
}

func (h *Hub) removeLocked(clientID, topic string) {
	if ids, ok := h.topics[topic]; ok {
		delete(ids, clientID)
		if len(ids) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Clients returns a snapshot of the clients subscribed to topic.
func (h *Hub) Clients(topic string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := h.topics[topic]
	out := make([]*Client, 0, len(ids))
	for id := range ids {
		if c, ok := h.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Each renders and sends one message per subscriber of topic. render may
// return false to skip a client. A client whose write fails is dropped.
func (h *Hub) Each(topic string, render func(c *Client) (Message, bool)) {
	for _, c := range h.Clients(topic) {
		msg, ok := render(c)
		if !ok {
			continue
		}
		if err := c.Send(msg); err != nil {
			h.logger.Debug("dropping live client after failed write",
				"client_id", c.ID, "topic", topic, "error", err)
			h.Unsubscribe(c)
			_ = c.Close()
		}
	}
}

// Broadcast sends the same message to every subscriber of topic.
func (h *Hub) Broadcast(topic string, msg Message) {
	h.Each(topic, func(*Client) (Message, bool) { return msg, true })
}

// Close sends msg to every subscriber of topic, then disconnects them.
func (h *Hub) Close(topic string, msg Message) {
	for _, c := range h.Clients(topic) {
		_ = c.Send(msg)
		h.Unsubscribe(c)
		_ = c.Close()
	}
}

// ClientCount returns the number of clients subscribed to topic.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.topics[topic])
}

// TotalClients returns the total number of connected clients.
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
