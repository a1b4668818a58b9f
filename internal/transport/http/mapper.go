package http

import (
	"strings"

	"github.com/huddlechat/huddle-server/internal/core"
	"github.com/huddlechat/huddle-server/internal/proto"
	"github.com/huddlechat/huddle-server/internal/store"
)

const maxUsernameLen = 64

// inboundToCommand validates a decoded inbound event and maps it onto a core
// command. A nil command with a nil error means the type is unknown and the
// event should be ignored.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		username := strings.TrimSpace(inbound.Username)
		if username == "" {
			return nil, protoError(core.ErrCodeBadRequest, "username is required")
		}
		if len(username) > maxUsernameLen {
			return nil, protoError(core.ErrCodeBadRequest, "username is too long")
		}
		return &core.Command{Kind: core.CommandJoin, Username: username}, nil
	case proto.InboundTypeSendMessage:
		if strings.TrimSpace(inbound.Content) == "" {
			return nil, protoError(core.ErrCodeBadRequest, "content is required")
		}
		return &core.Command{Kind: core.CommandSendMessage, Content: inbound.Content}, nil
	case proto.InboundTypeAddReaction, proto.InboundTypeRemoveReaction:
		if inbound.MessageID <= 0 {
			return nil, protoError(core.ErrCodeBadRequest, "messageId is required")
		}
		if inbound.Emoji == "" {
			return nil, protoError(core.ErrCodeBadRequest, "emoji is required")
		}
		kind := core.CommandAddReaction
		if inbound.Type == proto.InboundTypeRemoveReaction {
			kind = core.CommandRemoveReaction
		}
		return &core.Command{Kind: kind, MessageID: inbound.MessageID, Emoji: inbound.Emoji}, nil
	default:
		return nil, nil
	}
}

// outboundFromEvent maps a core event onto its wire representation.
func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventOnlineUsers:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		return proto.OnlineUsers{Type: proto.OutboundTypeOnlineUsers, Users: users}
	case core.EventUserJoined:
		return proto.UserJoined{Type: proto.OutboundTypeUserJoined, Username: event.Username}
	case core.EventUserLeft:
		return proto.UserLeft{Type: proto.OutboundTypeUserLeft, Username: event.Username}
	case core.EventNewMessage:
		return proto.NewMessage{Type: proto.OutboundTypeNewMessage, Message: messagePayload(event.Message)}
	case core.EventReactionUpdated:
		return proto.ReactionUpdated{Type: proto.OutboundTypeReactionUpdated, Message: messagePayload(event.Message)}
	case core.EventError:
		if event.Error == nil {
			return proto.Error{Type: proto.OutboundTypeError, Message: "unknown error"}
		}
		return proto.Error{Type: proto.OutboundTypeError, Code: event.Error.Code, Message: event.Error.Message}
	default:
		return proto.Error{Type: proto.OutboundTypeError, Message: "unknown event"}
	}
}

func messagePayload(msg *store.MessageWithUser) proto.Message {
	if msg == nil {
		return proto.Message{Reactions: map[string]proto.Reaction{}}
	}

	reactions := make(map[string]proto.Reaction, len(msg.Reactions))
	for emoji, r := range msg.Reactions {
		reactions[emoji] = proto.Reaction{Count: r.Count, Users: r.Users}
	}

	return proto.Message{
		ID:        msg.ID,
		Content:   msg.Content,
		UserID:    msg.UserID,
		CreatedAt: msg.CreatedAt,
		User: proto.User{
			ID:        msg.User.ID,
			Username:  msg.User.Username,
			CreatedAt: msg.User.CreatedAt,
		},
		Reactions: reactions,
	}
}

func protoError(code, msg string) *proto.Error {
	return &proto.Error{Type: proto.OutboundTypeError, Code: code, Message: msg}
}
