package core

// Registry is the in-memory session registry: the presence source of truth,
// mapping connection ids to joined clients. It is not safe for concurrent
// use; the hub run loop is its sole owner and all access goes through it.
type Registry struct {
	sessions map[string]*Client
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Client)}
}

// Register inserts a session for the client's connection id. It fails with
// ErrDuplicateConnection if the id is already present.
func (r *Registry) Register(c *Client) error {
	if _, exists := r.sessions[c.ID]; exists {
		return ErrDuplicateConnection
	}
	r.sessions[c.ID] = c
	return nil
}

// Unregister removes and returns the session for the connection id, or nil
// if none exists. Absence is not an error.
func (r *Registry) Unregister(id string) *Client {
	c, ok := r.sessions[id]
	if !ok {
		return nil
	}
	delete(r.sessions, id)
	return c
}

// Get returns the session for the connection id.
func (r *Registry) Get(id string) (*Client, bool) {
	c, ok := r.sessions[id]
	return c, ok
}

// ListOthers returns the usernames of all sessions except the excluded
// connection. No ordering is guaranteed.
func (r *Registry) ListOthers(excludeID string) []string {
	users := make([]string, 0, len(r.sessions))
	for id, c := range r.sessions {
		if id == excludeID {
			continue
		}
		users = append(users, c.Username)
	}
	return users
}

// Snapshot returns the current set of sessions for fan-out iteration.
func (r *Registry) Snapshot() []*Client {
	clients := make([]*Client, 0, len(r.sessions))
	for _, c := range r.sessions {
		clients = append(clients, c)
	}
	return clients
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
