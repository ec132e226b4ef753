package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client. Seq, when
// non-zero, requests an acknowledgment frame for this command.
type Inbound struct {
	Type string          `json:"type"`
	Seq  int64           `json:"seq,omitempty"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeJoin    = "join"
	InboundTypeMessage = "send_message"
	InboundTypeFile    = "send_file"
	InboundTypePrivate = "private_message"
	InboundTypeTyping  = "typing"
	InboundTypeRead    = "message_read"

	OutboundTypeAck   = "ack"
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventReceiveMessage = "receive_message"
	EventPrivateMessage = "private_message"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventUserList       = "user_list"
	EventTypingUsers    = "typing_users"
	EventMessageRead    = "message_read"
)

// JoinData claims a display name for the connection.
type JoinData struct {
	Username string `json:"username"`
}

// MessageData is a broadcast chat message from the client.
type MessageData struct {
	Text string `json:"text"`
}

// FileData carries an uploaded file; Data is base64 on the wire.
type FileData struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data []byte `json:"data"`
}

// PrivateData is a direct message to one connection.
type PrivateData struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// TypingData updates the sender's typing indicator.
type TypingData struct {
	IsTyping bool `json:"is_typing"`
}

// ReadData acknowledges a message as read.
type ReadData struct {
	MessageID int64 `json:"message_id"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Seq   int64  `json:"seq,omitempty"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// User describes a participant in API and event payloads.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Online   bool   `json:"online"`
	JoinedAt string `json:"joined_at"`
	LastSeen string `json:"last_seen,omitempty"`
}

// FileInfo describes a stored attachment inside a message.
type FileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

// Message is the wire form of a logged chat message.
type Message struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text,omitempty"`
	File        *FileInfo `json:"file,omitempty"`
	Sender      string    `json:"sender"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id,omitempty"`
	IsPrivate   bool      `json:"is_private"`
	Timestamp   string    `json:"timestamp"`
	Read        bool      `json:"read"`
}

// JoinAck is the acknowledgment payload for a successful join.
type JoinAck struct {
	User     User      `json:"user"`
	Messages []Message `json:"messages"`
	Users    []User    `json:"users"`
}

// MessageAck acknowledges an accepted message with its assigned id.
type MessageAck struct {
	MessageID int64 `json:"message_id"`
}

// TypingUser identifies one typing participant.
type TypingUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// EventRead tells the original sender which message was read.
type EventRead struct {
	MessageID int64 `json:"message_id"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
