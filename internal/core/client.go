package core

// Client is one live connection as seen by the core layer. Username and
// UserID stay zero until a join is accepted; they are written only from the
// hub goroutine.
type Client struct {
	ID       string
	Username string
	UserID   int64
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
	}
}
