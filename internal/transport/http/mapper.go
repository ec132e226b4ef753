package http

import (
	"encoding/json"
	"time"

	"github.com/anorlov/chatwire/internal/core"
	"github.com/anorlov/chatwire/internal/proto"
)

func inboundToCommand(client *core.Client, inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandJoin, Client: client, Name: join.Username}, nil, nil
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandSendMessage, Client: client, Text: msg.Text}, nil, nil
	case proto.InboundTypeFile:
		var file proto.FileData
		if err := json.Unmarshal(inbound.Data, &file); err != nil {
			return nil, nil, err
		}
		if file.Name == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "file name is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandSendFile,
			Client: client,
			File: &core.FileUpload{
				Name:     file.Name,
				MimeType: file.Type,
				Size:     file.Size,
				Data:     file.Data,
			},
		}, nil, nil
	case proto.InboundTypePrivate:
		var pm proto.PrivateData
		if err := json.Unmarshal(inbound.Data, &pm); err != nil {
			return nil, nil, err
		}
		if pm.To == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "recipient is required"}, nil
		}
		return &core.Command{Kind: core.CommandPrivateMessage, Client: client, To: pm.To, Text: pm.Text}, nil, nil
	case proto.InboundTypeTyping:
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandTyping, Client: client, IsTyping: typing.IsTyping}, nil, nil
	case proto.InboundTypeRead:
		var read proto.ReadData
		if err := json.Unmarshal(inbound.Data, &read); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandMessageRead, Client: client, MessageID: read.MessageID}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

// ackToOutbound builds the acknowledgment frame for a processed command.
func ackToOutbound(cmd *core.Command, seq int64, ack *core.Ack) proto.Outbound {
	if ack.Err != nil {
		return proto.Outbound{
			Type:  proto.OutboundTypeAck,
			Seq:   seq,
			Error: &proto.Error{Code: ack.Err.Code, Msg: ack.Err.Message},
		}
	}

	out := proto.Outbound{Type: proto.OutboundTypeAck, Seq: seq}
	switch cmd.Kind {
	case core.CommandJoin:
		out.Data = proto.JoinAck{
			User:     userFromParticipant(*ack.User),
			Messages: messagesToProto(ack.Messages),
			Users:    usersToProto(ack.Users),
		}
	case core.CommandSendMessage, core.CommandSendFile, core.CommandPrivateMessage:
		out.Data = proto.MessageAck{MessageID: ack.MessageID}
	}
	return out
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventReceiveMessage:
		return eventOutbound(proto.EventReceiveMessage, messageToProto(*event.Message))
	case core.EventPrivateMessage:
		return eventOutbound(proto.EventPrivateMessage, messageToProto(*event.Message))
	case core.EventUserJoined:
		return eventOutbound(proto.EventUserJoined, userFromParticipant(*event.User))
	case core.EventUserLeft:
		return eventOutbound(proto.EventUserLeft, userFromParticipant(*event.User))
	case core.EventUserList:
		return eventOutbound(proto.EventUserList, usersToProto(event.Users))
	case core.EventTypingUsers:
		users := make([]proto.TypingUser, 0, len(event.Typing))
		for _, u := range event.Typing {
			users = append(users, proto.TypingUser{ID: u.ID, Username: u.Username})
		}
		return eventOutbound(proto.EventTypingUsers, users)
	case core.EventMessageRead:
		return eventOutbound(proto.EventMessageRead, proto.EventRead{MessageID: event.MessageID})
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func userFromParticipant(p core.Participant) proto.User {
	u := proto.User{
		ID:       p.ID,
		Username: p.Name,
		Avatar:   p.Avatar,
		Online:   p.Online,
		JoinedAt: p.JoinedAt.Format(time.RFC3339),
	}
	if !p.LastSeen.IsZero() {
		u.LastSeen = p.LastSeen.Format(time.RFC3339)
	}
	return u
}

func usersToProto(ps []core.Participant) []proto.User {
	out := make([]proto.User, 0, len(ps))
	for _, p := range ps {
		out = append(out, userFromParticipant(p))
	}
	return out
}

func messageToProto(m core.Message) proto.Message {
	msg := proto.Message{
		ID:          m.ID,
		Text:        m.Text,
		Sender:      m.SenderName,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		IsPrivate:   m.Kind == core.KindPrivate,
		Timestamp:   m.CreatedAt.Format(time.RFC3339),
		Read:        m.Read,
	}
	if m.File != nil {
		msg.File = &proto.FileInfo{
			Name: m.File.Name,
			Type: m.File.MimeType,
			Size: m.File.SizeBytes,
			Path: m.File.Handle,
		}
	}
	return msg
}

func messagesToProto(ms []core.Message) []proto.Message {
	out := make([]proto.Message, 0, len(ms))
	for _, m := range ms {
		out = append(out, messageToProto(m))
	}
	return out
}
