package live

import (
	"sync"
	"time"
)

// WriteTimeout bounds a single send. A subscriber that stops reading fails
// its write after this long instead of holding up the fan-out.
const WriteTimeout = 10 * time.Second

// deadliner is implemented by *websocket.Conn.
type deadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Conn abstracts a websocket connection for testability.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// Client is one subscriber. State carries whatever the subscribing module
// needs to render messages for this client (for stores, the viewer).
type Client struct {
	ID     string
	UserID string
	State  any

	mu     sync.Mutex
	conn   Conn
	closed bool
}

// NewClient creates a new client wrapper.
func NewClient(id, userID string, conn Conn, state any) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		State:  state,
		conn:   conn,
	}
}

// Send writes a message to the client. Writes are serialized and, when the
// connection supports it, bounded by WriteTimeout.
func (c *Client) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.conn.(deadliner); ok {
		if err := d.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteJSON(msg)
}

// SendError sends an error message to the client.
func (c *Client) SendError(code, message string) error {
	return c.Send(Message{
		Type:    MessageTypeError,
		Payload: ErrorPayload{Code: code, Message: message},
	})
}

// Wait blocks reading from the connection until it fails or closes. Clients
// only listen; anything they send is discarded.
func (c *Client) Wait() {
	for {
		var discard map[string]any
		if err := c.conn.ReadJSON(&discard); err != nil {
			return
		}
	}
}

// Close closes the client connection once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
