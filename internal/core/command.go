package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin associates the connection with a username.
	CommandJoin CommandKind = iota
	// CommandSendMessage persists and fans out a chat message.
	CommandSendMessage
	// CommandAddReaction adds the sender to an emoji tally on a message.
	CommandAddReaction
	// CommandRemoveReaction removes the sender from an emoji tally.
	CommandRemoveReaction
)

// Command represents an action requested by a client. It is decoded once at
// the transport boundary; unknown inbound types never become commands.
type Command struct {
	Kind      CommandKind
	Username  string // CommandJoin
	Content   string // CommandSendMessage
	MessageID int64  // reaction commands
	Emoji     string // reaction commands
}
