package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huddlechat/huddle-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// memStore is an in-memory store.Store for hub tests.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]*store.User
	byName   map[string]int64
	messages map[int64]*store.Message
	nextUser int64
	nextMsg  int64
	failAll  bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*store.User),
		byName:   make(map[string]int64),
		messages: make(map[int64]*store.Message),
	}
}

func (m *memStore) CreateUser(_ context.Context, username string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	m.nextUser++
	u := &store.User{ID: m.nextUser, Username: username, CreatedAt: time.Now()}
	m.users[u.ID] = u
	m.byName[username] = u.ID
	return u, nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	id, ok := m.byName[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return m.users[id], nil
}

func (m *memStore) CreateMessage(_ context.Context, content string, userID int64) (*store.MessageWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	m.nextMsg++
	msg := &store.Message{
		ID:        m.nextMsg,
		UserID:    userID,
		Content:   content,
		Reactions: store.Reactions{},
		CreatedAt: time.Now(),
	}
	m.messages[msg.ID] = msg
	return m.withUser(msg), nil
}

func (m *memStore) GetMessageByID(_ context.Context, id int64) (*store.MessageWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, store.ErrMessageNotFound
	}
	return m.withUser(msg), nil
}

func (m *memStore) GetRecentMessages(_ context.Context, limit int) ([]*store.MessageWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*store.MessageWithUser, 0, limit)
	for id := int64(1); id <= m.nextMsg && len(out) < limit; id++ {
		if msg, ok := m.messages[id]; ok {
			out = append(out, m.withUser(msg))
		}
	}
	return out, nil
}

func (m *memStore) UpdateMessageReactions(_ context.Context, messageID int64, reactions store.Reactions) (*store.MessageWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	msg, ok := m.messages[messageID]
	if !ok {
		return nil, store.ErrMessageNotFound
	}
	msg.Reactions = reactions
	return m.withUser(msg), nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) withUser(msg *store.Message) *store.MessageWithUser {
	u := m.users[msg.UserID]
	if u == nil {
		u = &store.User{}
	}
	return &store.MessageWithUser{Message: *msg, User: *u}
}

var errStoreDown = errors.New("store down")
