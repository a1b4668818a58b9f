package core

import "github.com/huddlechat/huddle-server/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventOnlineUsers delivers the current presence snapshot to a client
	// right after it joins.
	EventOnlineUsers EventKind = iota
	// EventUserJoined notifies other clients about a user joining.
	EventUserJoined
	// EventUserLeft notifies remaining clients about a user disconnecting.
	EventUserLeft
	// EventNewMessage notifies all clients, sender included, about a
	// persisted chat message.
	EventNewMessage
	// EventReactionUpdated notifies all clients that a message's reaction
	// tally changed.
	EventReactionUpdated
	// EventError notifies the originating client about a failed operation.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Users    []string // EventOnlineUsers
	Username string   // EventUserJoined, EventUserLeft
	Message  *store.MessageWithUser
	Error    *CoreError
}
