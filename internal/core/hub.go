package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anorlov/chatwire/internal/blob"
)

// DefaultHistoryWindow is how many recent messages a join snapshot and the
// message query return.
const DefaultHistoryWindow = 100

// Hub owns the registry, message log, and typing tracker, and is the only
// writer to any of them. A single goroutine processes commands to
// completion one at a time, which is what makes the state mutations safe
// without locks. Fan-out goes through per-client event channels; the
// synchronous acknowledgment travels back on the command's reply channel.
type Hub struct {
	commands chan *Command

	clients  map[string]*Client
	registry *Registry
	log      *MessageLog
	typing   *TypingTracker

	blobs   blob.Store
	logger  *zerolog.Logger
	history int
	started time.Time
}

// NewHub constructs a hub. blobs may be nil if file messages are never
// sent; capacity and history fall back to their defaults when zero.
func NewHub(blobs blob.Store, logger *zerolog.Logger, capacity, history int) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if history <= 0 {
		history = DefaultHistoryWindow
	}
	return &Hub{
		commands: make(chan *Command, 64),
		clients:  make(map[string]*Client),
		registry: NewRegistry(),
		log:      NewMessageLog(capacity),
		typing:   NewTypingTracker(),
		blobs:    blobs,
		logger:   logger,
		history:  history,
		started:  time.Now(),
	}
}

// Started reports when the hub was constructed.
func (h *Hub) Started() time.Time {
	return h.started
}

// Run processes commands until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			h.dispatch(cmd)
		}
	}
}

// RegisterClient adds a connection in the pre-join state. Registration
// travels down the same command stream as everything else, so a client's
// register always lands before its own join.
func (h *Hub) RegisterClient(c *Client) {
	h.commands <- &Command{Kind: commandRegister, Client: c}
}

// UnregisterClient removes a connection and runs disconnect semantics.
func (h *Hub) UnregisterClient(c *Client) {
	h.commands <- &Command{Kind: commandUnregister, Client: c}
}

// Do submits a command and waits for its acknowledgment.
func (h *Hub) Do(ctx context.Context, cmd *Command) *Ack {
	if cmd.Reply == nil {
		cmd.Reply = make(chan *Ack, 1)
	}
	select {
	case h.commands <- cmd:
	case <-ctx.Done():
		return errAck(coreError(ErrCodeInternal, "hub unavailable"))
	}
	select {
	case ack := <-cmd.Reply:
		return ack
	case <-ctx.Done():
		return errAck(coreError(ErrCodeInternal, "hub unavailable"))
	}
}

// Messages returns the retained message count and the recent window.
func (h *Hub) Messages(ctx context.Context) (int, []Message, *CoreError) {
	ack := h.Do(ctx, &Command{Kind: commandQueryMessages})
	return ack.Count, ack.Messages, ack.Err
}

// Users returns a snapshot of all participants.
func (h *Hub) Users(ctx context.Context) ([]Participant, *CoreError) {
	ack := h.Do(ctx, &Command{Kind: commandQueryUsers})
	return ack.Users, ack.Err
}

// Stats returns participant and message counts for the liveness probe.
func (h *Hub) Stats(ctx context.Context) (users, messages int, err *CoreError) {
	ack := h.Do(ctx, &Command{Kind: commandQueryStats})
	return ack.UserCount, ack.Count, ack.Err
}

// dispatch runs one command to completion. A panic inside a handler is
// converted to an internal_error acknowledgment; handlers validate and
// build records before mutating, so a failure leaves state untouched.
func (h *Hub) dispatch(cmd *Command) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Msg("handler panic")
			reply(cmd, errAck(coreError(ErrCodeInternal, "internal error")))
		}
	}()

	switch cmd.Kind {
	case commandRegister:
		h.clients[cmd.Client.ID] = cmd.Client
		h.logger.Debug().Str("conn_id", cmd.Client.ID).Msg("connection registered")
	case commandUnregister:
		h.handleDisconnect(cmd.Client)
	case CommandJoin:
		reply(cmd, h.handleJoin(cmd))
	case CommandSendMessage:
		reply(cmd, h.handleSendMessage(cmd))
	case CommandSendFile:
		reply(cmd, h.handleSendFile(cmd))
	case CommandPrivateMessage:
		reply(cmd, h.handlePrivateMessage(cmd))
	case CommandTyping:
		reply(cmd, h.handleTyping(cmd))
	case CommandMessageRead:
		reply(cmd, h.handleMessageRead(cmd))
	case commandQueryMessages:
		reply(cmd, &Ack{Count: h.log.Len(), Messages: h.log.Recent(h.history)})
	case commandQueryUsers:
		reply(cmd, &Ack{Users: h.registry.Snapshot()})
	case commandQueryStats:
		reply(cmd, &Ack{UserCount: h.registry.Len(), Count: h.log.Len()})
	default:
		reply(cmd, errAck(coreError(ErrCodeBadRequest, "unknown command")))
	}
}

func (h *Hub) handleJoin(cmd *Command) *Ack {
	p, err := h.registry.Join(cmd.Client.ID, cmd.Name)
	if err != nil {
		return errAck(err)
	}

	h.logger.Info().Str("conn_id", p.ID).Str("username", p.Name).Msg("user joined")

	h.broadcastExcept(cmd.Client.ID, &Event{Kind: EventUserJoined, User: &p})
	h.broadcast(&Event{Kind: EventUserList, Users: h.registry.Snapshot()})

	return &Ack{
		User:     &p,
		Messages: h.log.Recent(h.history),
		Users:    h.registry.Snapshot(),
	}
}

func (h *Hub) handleSendMessage(cmd *Command) *Ack {
	sender, err := h.requireJoined(cmd)
	if err != nil {
		return errAck(err)
	}
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return errAck(coreError(ErrCodeBadRequest, "message cannot be empty"))
	}

	m := h.log.Append(Message{
		Kind:       KindBroadcast,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Text:       text,
	})
	h.broadcast(&Event{Kind: EventReceiveMessage, Message: &m})
	return &Ack{MessageID: m.ID}
}

func (h *Hub) handleSendFile(cmd *Command) *Ack {
	sender, err := h.requireJoined(cmd)
	if err != nil {
		return errAck(err)
	}
	if cmd.File == nil || len(cmd.File.Data) == 0 {
		return errAck(coreError(ErrCodeBadRequest, "file data is required"))
	}
	if h.blobs == nil {
		return errAck(coreError(ErrCodeStorageFailure, "file storage unavailable"))
	}

	stored := "file_" + uuid.NewString() + "_" + blob.Sanitize(cmd.File.Name)
	handle, saveErr := h.blobs.Save(stored, cmd.File.Data)
	if saveErr != nil {
		h.logger.Error().Err(saveErr).Str("file", cmd.File.Name).Msg("blob save failed")
		return errAck(coreError(ErrCodeStorageFailure, "failed to upload file"))
	}

	m := h.log.Append(Message{
		Kind:       KindFile,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		File: &FileMeta{
			Name:      cmd.File.Name,
			MimeType:  cmd.File.MimeType,
			SizeBytes: cmd.File.Size,
			Handle:    handle,
		},
	})
	h.broadcast(&Event{Kind: EventReceiveMessage, Message: &m})
	return &Ack{MessageID: m.ID}
}

func (h *Hub) handlePrivateMessage(cmd *Command) *Ack {
	sender, err := h.requireJoined(cmd)
	if err != nil {
		return errAck(err)
	}
	if _, ok := h.registry.Find(cmd.To); !ok {
		return errAck(coreError(ErrCodeUserNotFound, "user not found"))
	}
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return errAck(coreError(ErrCodeBadRequest, "message cannot be empty"))
	}

	m := h.log.Append(Message{
		Kind:        KindPrivate,
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		RecipientID: cmd.To,
		Text:        text,
	})
	ev := &Event{Kind: EventPrivateMessage, Message: &m}
	h.send(sender.ID, ev)
	h.send(cmd.To, ev)
	return &Ack{MessageID: m.ID}
}

func (h *Hub) handleTyping(cmd *Command) *Ack {
	if _, err := h.requireJoined(cmd); err != nil {
		return errAck(err)
	}
	h.typing.Set(cmd.Client.ID, cmd.IsTyping)
	h.broadcastExcept(cmd.Client.ID, &Event{Kind: EventTypingUsers, Typing: h.typingUsers()})
	return &Ack{}
}

func (h *Hub) handleMessageRead(cmd *Command) *Ack {
	if _, err := h.requireJoined(cmd); err != nil {
		return errAck(err)
	}
	senderID, changed, err := h.log.MarkRead(cmd.MessageID, cmd.Client.ID)
	if err != nil {
		return errAck(err)
	}
	if changed {
		h.send(senderID, &Event{Kind: EventMessageRead, MessageID: cmd.MessageID})
	}
	return &Ack{}
}

func (h *Hub) handleDisconnect(c *Client) {
	delete(h.clients, c.ID)
	p, ok := h.registry.Find(c.ID)
	if !ok || !p.Online {
		return
	}

	now := time.Now()
	h.registry.MarkOffline(c.ID, now)
	h.typing.Clear(c.ID)

	p.Online = false
	p.LastSeen = now
	h.broadcast(&Event{Kind: EventUserLeft, User: &p})
	h.logger.Info().Str("conn_id", p.ID).Str("username", p.Name).Msg("user left")
}

// requireJoined rejects commands from connections that never joined or
// already disconnected.
func (h *Hub) requireJoined(cmd *Command) (Participant, *CoreError) {
	if cmd.Client == nil {
		return Participant{}, coreError(ErrCodeUnauthenticated, "join first")
	}
	p, ok := h.registry.Find(cmd.Client.ID)
	if !ok || !p.Online {
		return Participant{}, coreError(ErrCodeUnauthenticated, "join first")
	}
	return p, nil
}

func (h *Hub) typingUsers() []TypingUser {
	ids := h.typing.Active()
	out := make([]TypingUser, 0, len(ids))
	for _, id := range ids {
		if p, ok := h.registry.Find(id); ok {
			out = append(out, TypingUser{ID: p.ID, Username: p.Name})
		}
	}
	return out
}

func (h *Hub) broadcast(ev *Event) {
	for _, c := range h.clients {
		deliver(c, ev)
	}
}

func (h *Hub) broadcastExcept(exceptID string, ev *Event) {
	for id, c := range h.clients {
		if id == exceptID {
			continue
		}
		deliver(c, ev)
	}
}

func (h *Hub) send(connID string, ev *Event) {
	if c, ok := h.clients[connID]; ok {
		deliver(c, ev)
	}
}

func deliver(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

func reply(cmd *Command, ack *Ack) {
	if cmd.Reply == nil {
		return
	}
	select {
	case cmd.Reply <- ack:
	default:
	}
}
