package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/huddlechat/huddle-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	content    TEXT NOT NULL,
	reactions  TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and ensures the schema exists.
// dbPath is the path to the SQLite database file, ":memory:" for tests.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, username string) (*store.User, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username) VALUES (?)`, username)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	var user store.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	var user store.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE username = ?`, username).
		Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// CreateMessage persists a message with an empty reaction map.
func (s *SQLiteStore) CreateMessage(ctx context.Context, content string, userID int64) (*store.MessageWithUser, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, content, reactions) VALUES (?, ?, '{}')`,
		userID, content)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetMessageByID(ctx, id)
}

// GetMessageByID retrieves a single message joined with its owner.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id int64) (*store.MessageWithUser, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT m.id, m.user_id, m.content, m.reactions, m.created_at,
		       u.id, u.username, u.created_at
		FROM messages m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.id = ?
	`, id)

	msg, err := scanMessageWithUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMessageNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	return msg, nil
}

// GetRecentMessages returns up to limit most recent messages, oldest first.
func (s *SQLiteStore) GetRecentMessages(ctx context.Context, limit int) ([]*store.MessageWithUser, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.user_id, m.content, m.reactions, m.created_at,
		       u.id, u.username, u.created_at
		FROM messages m
		INNER JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.MessageWithUser
	for rows.Next() {
		msg, err := scanMessageWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Query is newest-first for the LIMIT; callers want oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// UpdateMessageReactions replaces the reaction map of a message.
func (s *SQLiteStore) UpdateMessageReactions(ctx context.Context, messageID int64, reactions store.Reactions) (*store.MessageWithUser, error) {
	if reactions == nil {
		reactions = store.Reactions{}
	}
	data, err := json.Marshal(reactions)
	if err != nil {
		return nil, fmt.Errorf("marshal reactions: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET reactions = ? WHERE id = ?`, string(data), messageID)
	if err != nil {
		return nil, fmt.Errorf("update reactions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrMessageNotFound
	}

	return s.GetMessageByID(ctx, messageID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessageWithUser(row rowScanner) (*store.MessageWithUser, error) {
	var msg store.MessageWithUser
	var reactionsJSON string
	err := row.Scan(
		&msg.ID,
		&msg.UserID,
		&msg.Content,
		&reactionsJSON,
		&msg.CreatedAt,
		&msg.User.ID,
		&msg.User.Username,
		&msg.User.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	msg.Reactions = store.Reactions{}
	if reactionsJSON != "" {
		if err := json.Unmarshal([]byte(reactionsJSON), &msg.Reactions); err != nil {
			return nil, fmt.Errorf("unmarshal reactions: %w", err)
		}
	}

	return &msg, nil
}
