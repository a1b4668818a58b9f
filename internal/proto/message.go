package proto

import "time"

// Inbound event types (client to server).
const (
	InboundTypeJoin           = "join"
	InboundTypeSendMessage    = "send_message"
	InboundTypeAddReaction    = "add_reaction"
	InboundTypeRemoveReaction = "remove_reaction"
)

// Outbound event types (server to client).
const (
	OutboundTypeOnlineUsers     = "online_users"
	OutboundTypeUserJoined      = "user_joined"
	OutboundTypeUserLeft        = "user_left"
	OutboundTypeNewMessage      = "new_message"
	OutboundTypeReactionUpdated = "reaction_updated"
	OutboundTypeError           = "error"
)

// Inbound is a client event: a flat JSON object discriminated by Type.
// Only the fields relevant to the type are populated.
type Inbound struct {
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	Content   string `json:"content,omitempty"`
	MessageID int64  `json:"messageId,omitempty"`
	Emoji     string `json:"emoji,omitempty"`
}

// User is a user in outbound payloads.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reaction is a per-emoji tally in outbound payloads.
type Reaction struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// Message is a chat message joined with its owner and reactions.
type Message struct {
	ID        int64               `json:"id"`
	Content   string              `json:"content"`
	UserID    int64               `json:"userId"`
	CreatedAt time.Time           `json:"createdAt"`
	User      User                `json:"user"`
	Reactions map[string]Reaction `json:"reactions"`
}

// OnlineUsers is sent once to the joining connection right after join.
type OnlineUsers struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// UserJoined is broadcast to other connections when a user joins.
type UserJoined struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// UserLeft is broadcast to remaining connections on disconnect.
type UserLeft struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// NewMessage is broadcast to all connections, sender included.
type NewMessage struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

// ReactionUpdated is broadcast to all connections when a message's
// reaction tally changes.
type ReactionUpdated struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

// Error is sent to the originating connection only.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
