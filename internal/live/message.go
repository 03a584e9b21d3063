package live

// MessageType identifies the kind of message pushed to subscribers.
type MessageType string

const (
	MessageTypeSnapshot MessageType = "snapshot" // full recomputed view of a topic
	MessageTypeDeleted  MessageType = "deleted"  // the topic's document is gone
	MessageTypeError    MessageType = "error"

	// MessageTypeProductsChanged tells subscribers to refetch the topic's
	// product list.
	MessageTypeProductsChanged MessageType = "products_changed"
)

// Message is the envelope for all websocket communication.
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// ErrorPayload reports an error to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
