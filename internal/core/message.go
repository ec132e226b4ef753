package core

import "time"

// MessageKind distinguishes the message variants in the log.
type MessageKind int

const (
	// KindBroadcast is a message delivered to every connection.
	KindBroadcast MessageKind = iota
	// KindPrivate is a message delivered to the sender and one recipient.
	KindPrivate
	// KindFile is a broadcast message carrying a stored file reference.
	KindFile
)

// FileMeta describes a stored file attachment.
type FileMeta struct {
	Name      string
	MimeType  string
	SizeBytes int64
	Handle    string
}

// Message is the domain model for a logged chat message. SenderName is
// frozen at append time so attribution survives the sender going offline.
// Everything except the Read flag is immutable once appended.
type Message struct {
	ID          int64
	Kind        MessageKind
	SenderID    string
	SenderName  string
	RecipientID string // private messages only
	Text        string
	File        *FileMeta // file messages only
	CreatedAt   time.Time
	Read        bool
}

// DefaultLogCapacity bounds the in-memory message log.
const DefaultLogCapacity = 1000

// MessageLog is an append-only, capacity-bounded message sequence with
// strictly increasing time-derived ids.
type MessageLog struct {
	capacity int
	lastID   int64
	entries  []Message
}

// NewMessageLog constructs a log holding at most capacity messages.
func NewMessageLog(capacity int) *MessageLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &MessageLog{capacity: capacity}
}

// Append assigns the next id, stamps the message, and stores it, evicting
// the oldest entry once the log is full. Ids are derived from the wall
// clock in milliseconds; simultaneous arrivals are bumped to keep the
// sequence strictly increasing. Returns the stored record.
func (l *MessageLog) Append(m Message) Message {
	now := time.Now()
	id := now.UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id

	m.ID = id
	m.CreatedAt = now
	l.entries = append(l.entries, m)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[1:]
	}
	return m
}

// Recent returns a copy of the last n messages in arrival order.
func (l *MessageLog) Recent(n int) []Message {
	start := len(l.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// Len returns the number of retained messages.
func (l *MessageLog) Len() int {
	return len(l.entries)
}

// MarkRead sets the read flag on the message with the given id. The sender
// may not acknowledge its own message, and a private message may only be
// acknowledged by its recipient. Returns the sender's connection id and
// whether this call flipped the flag (false on a repeat acknowledgment).
func (l *MessageLog) MarkRead(id int64, requesterID string) (string, bool, *CoreError) {
	for i := range l.entries {
		m := &l.entries[i]
		if m.ID != id {
			continue
		}
		if requesterID == m.SenderID {
			return "", false, coreError(ErrCodeForbidden, "cannot mark own message as read")
		}
		if m.Kind == KindPrivate && requesterID != m.RecipientID {
			return "", false, coreError(ErrCodeForbidden, "not the recipient of this message")
		}
		if m.Read {
			return m.SenderID, false, nil
		}
		m.Read = true
		return m.SenderID, true, nil
	}
	return "", false, coreError(ErrCodeNotFound, "message not found")
}
