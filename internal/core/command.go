package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin claims a display name for the connection.
	CommandJoin CommandKind = iota
	// CommandSendMessage broadcasts a text message to everyone.
	CommandSendMessage
	// CommandSendFile stores a file and broadcasts its message.
	CommandSendFile
	// CommandPrivateMessage delivers a text message to one recipient.
	CommandPrivateMessage
	// CommandTyping updates the caller's typing indicator.
	CommandTyping
	// CommandMessageRead acknowledges a message as read.
	CommandMessageRead

	// Connection lifecycle, enqueued by the transport.
	commandRegister
	commandUnregister

	// Read-only queries issued by the REST side endpoints.
	commandQueryMessages
	commandQueryUsers
	commandQueryStats
)

// FileUpload carries the raw bytes and metadata of an inbound file.
type FileUpload struct {
	Name     string
	MimeType string
	Size     int64
	Data     []byte
}

// Command represents an action requested by a client. Reply receives the
// acknowledgment once the hub has processed the command.
type Command struct {
	Kind      CommandKind
	Client    *Client
	Name      string // join
	Text      string // send_message, private_message
	To        string // private_message recipient connection id
	File      *FileUpload
	IsTyping  bool
	MessageID int64 // message_read
	Reply     chan *Ack
}

// Ack is the synchronous outcome of a command. Err is nil on success;
// the remaining fields are populated per command kind.
type Ack struct {
	Err       *CoreError
	User      *Participant  // join
	Messages  []Message     // join, message query
	Users     []Participant // join, user query
	MessageID int64         // send_message, send_file, private_message
	Count     int           // message query, stats
	UserCount int           // stats
}

func errAck(err *CoreError) *Ack {
	return &Ack{Err: err}
}
