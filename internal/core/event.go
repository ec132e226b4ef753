package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventReceiveMessage delivers a broadcast or file message.
	EventReceiveMessage EventKind = iota
	// EventPrivateMessage delivers a private message to the sender and recipient.
	EventPrivateMessage
	// EventUserJoined notifies other clients about a new participant.
	EventUserJoined
	// EventUserLeft notifies remaining clients about a disconnect.
	EventUserLeft
	// EventUserList delivers the full participant roster.
	EventUserList
	// EventTypingUsers delivers the current set of typing participants.
	EventTypingUsers
	// EventMessageRead tells the original sender a message was read.
	EventMessageRead
)

// TypingUser identifies one typing participant.
type TypingUser struct {
	ID       string
	Username string
}

// Event is sent to clients to describe what happened in the system. All
// payloads are copies; the hub never hands out live state.
type Event struct {
	Kind      EventKind
	Message   *Message
	User      *Participant  // user_joined, user_left
	Users     []Participant // user_list
	Typing    []TypingUser  // typing_users
	MessageID int64         // message_read
}
