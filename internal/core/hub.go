package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/huddlechat/huddle-server/internal/store"
)

// Hub is the event router and broadcast engine. A single Run goroutine owns
// the session registry and handles every command to completion before the
// next one, so registry and per-message reaction mutations never interleave.
type Hub struct {
	store    store.Store
	registry *Registry
	log      *zerolog.Logger

	attach   chan *Client
	detach   chan *Client
	commands chan clientCommand
	done     chan struct{}
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub backed by the given store. A nil logger disables
// logging.
func NewHub(st store.Store, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		store:    st,
		registry: NewRegistry(),
		log:      logger,
		attach:   make(chan *Client),
		detach:   make(chan *Client),
		commands: make(chan clientCommand),
		done:     make(chan struct{}),
	}
}

// Attach hands a freshly accepted connection to the hub. The hub pumps the
// client's Commands channel until it is closed.
func (h *Hub) Attach(c *Client) {
	select {
	case h.attach <- c:
	case <-h.done:
	}
}

// Detach reports that a connection closed or errored. Both cases get the
// same treatment: the session, if any, is unregistered and a user_left is
// broadcast to the remaining clients.
func (h *Hub) Detach(c *Client) {
	select {
	case h.detach <- c:
	case <-h.done:
	}
}

// Run processes attach, detach, and command events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.attach:
			go h.pump(ctx, c)
		case c := <-h.detach:
			h.handleDetach(c)
		case cc := <-h.commands:
			h.dispatch(ctx, cc.client, cc.cmd)
		case <-ctx.Done():
			return
		}
	}
}

// pump forwards a client's commands into the hub's serialized stream.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for cmd := range c.Commands {
		select {
		case h.commands <- clientCommand{client: c, cmd: cmd}:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(ctx, c, cmd.Username)
	case CommandSendMessage:
		h.handleSendMessage(ctx, c, cmd.Content)
	case CommandAddReaction:
		h.handleReaction(ctx, c, cmd.MessageID, cmd.Emoji, true)
	case CommandRemoveReaction:
		h.handleReaction(ctx, c, cmd.MessageID, cmd.Emoji, false)
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, username string) {
	if _, exists := h.registry.Get(c.ID); exists {
		// Connection ids are generated per accept, so a second join on the
		// same id means a client re-sent join. Drop it.
		h.log.Warn().Str("conn_id", c.ID).Str("username", username).Msg("join on already registered connection")
		return
	}

	user, err := h.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		user, err = h.store.CreateUser(ctx, username)
	}
	if err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("join failed")
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeStorage, "failed to join chat")})
		return
	}

	c.Username = user.Username
	c.UserID = user.ID

	if err := h.registry.Register(c); err != nil {
		h.log.Error().Err(err).Str("conn_id", c.ID).Msg("register session")
		return
	}

	h.send(c, &Event{Kind: EventOnlineUsers, Users: h.registry.ListOthers(c.ID)})
	h.broadcastToOthers(c.ID, &Event{Kind: EventUserJoined, Username: user.Username})

	h.log.Info().Str("conn_id", c.ID).Str("username", user.Username).Msg("user joined")
}

func (h *Hub) handleSendMessage(ctx context.Context, c *Client, content string) {
	sess, ok := h.registry.Get(c.ID)
	if !ok {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeNotJoined, "join before sending messages")})
		return
	}

	// Broadcast strictly after the message is durably recorded, so the
	// order every client observes is the storage insertion order.
	msg, err := h.store.CreateMessage(ctx, content, sess.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("username", sess.Username).Msg("persist message")
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeStorage, "failed to send message")})
		return
	}

	h.broadcastToAll(&Event{Kind: EventNewMessage, Message: msg})

	h.log.Debug().Str("username", sess.Username).Int64("message_id", msg.ID).Msg("message sent")
}

func (h *Hub) handleReaction(ctx context.Context, c *Client, messageID int64, emoji string, add bool) {
	sess, ok := h.registry.Get(c.ID)
	if !ok {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeNotJoined, "join before reacting")})
		return
	}

	msg, err := h.store.GetMessageByID(ctx, messageID)
	if errors.Is(err, store.ErrMessageNotFound) {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeMessageNotFound, "message not found")})
		return
	}
	if err != nil {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeStorage, "failed to load message")})
		return
	}

	reactions, changed := mutateReactions(msg.Reactions, emoji, sess.Username, add)
	if !changed {
		return
	}

	updated, err := h.store.UpdateMessageReactions(ctx, messageID, reactions)
	if errors.Is(err, store.ErrMessageNotFound) {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeMessageNotFound, "message not found")})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("message_id", messageID).Msg("persist reactions")
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeStorage, "failed to update reaction")})
		return
	}

	h.broadcastToAll(&Event{Kind: EventReactionUpdated, Message: updated})
}

// mutateReactions returns a copy of reactions with username added to or
// removed from the emoji's tally. Emptied tallies drop the emoji key
// entirely. It reports whether anything changed.
func mutateReactions(reactions store.Reactions, emoji, username string, add bool) (store.Reactions, bool) {
	out := make(store.Reactions, len(reactions))
	for k, v := range reactions {
		users := make([]string, len(v.Users))
		copy(users, v.Users)
		out[k] = store.Reaction{Count: v.Count, Users: users}
	}

	entry := out[emoji]
	idx := -1
	for i, u := range entry.Users {
		if u == username {
			idx = i
			break
		}
	}

	if add {
		if idx >= 0 {
			return out, false
		}
		entry.Users = append(entry.Users, username)
		entry.Count++
		out[emoji] = entry
		return out, true
	}

	if idx < 0 {
		return out, false
	}
	entry.Users = append(entry.Users[:idx], entry.Users[idx+1:]...)
	entry.Count--
	if entry.Count <= 0 {
		delete(out, emoji)
	} else {
		out[emoji] = entry
	}
	return out, true
}

func (h *Hub) handleDetach(c *Client) {
	sess := h.registry.Unregister(c.ID)
	if sess == nil {
		return
	}
	h.broadcastToAll(&Event{Kind: EventUserLeft, Username: sess.Username})
	h.log.Info().Str("conn_id", c.ID).Str("username", sess.Username).Msg("user left")
}

// broadcastToAll delivers the event to every registered session. Delivery is
// best-effort: a client whose buffer is full is skipped, never cleaned up
// here. Cleanup happens only through Detach.
func (h *Hub) broadcastToAll(ev *Event) {
	for _, c := range h.registry.Snapshot() {
		h.send(c, ev)
	}
}

// broadcastToOthers is broadcastToAll minus the excluded connection.
func (h *Hub) broadcastToOthers(excludeID string, ev *Event) {
	for _, c := range h.registry.Snapshot() {
		if c.ID == excludeID {
			continue
		}
		h.send(c, ev)
	}
}

func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		h.log.Warn().Str("conn_id", c.ID).Msg("dropping event for slow consumer")
	}
}
