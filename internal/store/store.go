package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when a user lookup matches no row.
	ErrUserNotFound = errors.New("user not found")
	// ErrMessageNotFound is returned when a message lookup matches no row.
	ErrMessageNotFound = errors.New("message not found")
)

// User represents a chat participant. Usernames are unique and case-sensitive;
// users are created on first join and never deleted.
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

// Reaction is a per-emoji tally of the users who reacted to a message.
// Count always equals len(Users).
type Reaction struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// Reactions maps an emoji to its reaction entry. Entries with zero count
// must not be stored.
type Reactions map[string]Reaction

// Message represents a persisted chat message.
type Message struct {
	ID        int64
	UserID    int64
	Content   string
	Reactions Reactions
	CreatedAt time.Time
}

// MessageWithUser is a message joined with its owning user, the shape
// delivered on the wire and over the REST surface.
type MessageWithUser struct {
	Message
	User User
}

// Store is the persistence gateway for users and messages. Message insertion
// order is reflected in non-decreasing CreatedAt timestamps.
type Store interface {
	// CreateUser inserts a new user. Usernames must be unique.
	CreateUser(ctx context.Context, username string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by exact username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// CreateMessage persists a message with an empty reaction map and
	// returns it joined with its owner.
	CreateMessage(ctx context.Context, content string, userID int64) (*MessageWithUser, error)

	// GetMessageByID retrieves a single message joined with its owner.
	GetMessageByID(ctx context.Context, id int64) (*MessageWithUser, error)

	// GetRecentMessages returns up to limit most recent messages ordered
	// oldest to newest.
	GetRecentMessages(ctx context.Context, limit int) ([]*MessageWithUser, error)

	// UpdateMessageReactions replaces the reaction map of a message and
	// returns the updated message joined with its owner.
	UpdateMessageReactions(ctx context.Context, messageID int64, reactions Reactions) (*MessageWithUser, error)

	// Close closes the underlying database connection.
	Close() error
}
