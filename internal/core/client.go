package core

// Client is one live connection as seen by the core layer. Events carry
// the hub's fan-out to the transport; a full buffer drops the event rather
// than stalling the event loop.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan *Event, 16),
	}
}
