package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anorlov/chatwire/internal/blob"
)

func startHub(t *testing.T, blobs blob.Store) (*Hub, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)

	hub := NewHub(blobs, nil, 0, 0)
	go hub.Run(ctx)
	return hub, ctx
}

// fakeStore fakes blob storage without touching disk.
type fakeStore struct {
	saved map[string][]byte
	fail  bool
}

func (s *fakeStore) Save(name string, data []byte) (string, error) {
	if s.fail {
		return "", errors.New("disk full")
	}
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[name] = data
	return "/uploads/" + name, nil
}

func (s *fakeStore) Resolve(name string) (string, error) {
	return "", errors.New("not used")
}

func join(t *testing.T, hub *Hub, ctx context.Context, c *Client, name string) *Ack {
	t.Helper()

	hub.RegisterClient(c)
	ack := hub.Do(ctx, &Command{Kind: CommandJoin, Client: c, Name: name})
	if ack.Err != nil {
		t.Fatalf("join %s failed: %v", name, ack.Err)
	}
	return ack
}

func TestHubJoinAckAndFanout(t *testing.T) {
	hub, ctx := startHub(t, nil)

	alice := NewClient("a")
	ack := join(t, hub, ctx, alice, "alice")
	if len(ack.Messages) != 0 {
		t.Fatalf("first join should see empty history, got %d messages", len(ack.Messages))
	}
	if len(ack.Users) != 1 || ack.Users[0].Name != "alice" {
		t.Fatalf("unexpected roster in join ack: %+v", ack.Users)
	}

	bob := NewClient("b")
	join(t, hub, ctx, bob, "bob")

	joined := mustEvent(t, alice.Events, EventUserJoined)
	if joined.User.Name != "bob" {
		t.Fatalf("alice should see bob join, got %+v", joined.User)
	}

	listA := mustEvent(t, alice.Events, EventUserList)
	listB := mustEvent(t, bob.Events, EventUserList)
	if len(listA.Users) != 2 || len(listB.Users) != 2 {
		t.Fatalf("both clients should receive the full roster: %d %d", len(listA.Users), len(listB.Users))
	}
	if listA.Users[0].Name != "alice" || listA.Users[1].Name != "bob" {
		t.Fatalf("roster should keep insertion order: %+v", listA.Users)
	}
}

func TestHubJoinNameTaken(t *testing.T) {
	hub, ctx := startHub(t, nil)

	join(t, hub, ctx, NewClient("a"), "bob")

	other := NewClient("b")
	hub.RegisterClient(other)
	ack := hub.Do(ctx, &Command{Kind: CommandJoin, Client: other, Name: "bob"})
	if ack.Err == nil || ack.Err.Code != ErrCodeNameTaken {
		t.Fatalf("expected name_taken, got %+v", ack.Err)
	}
}

func TestHubBroadcastReachesEveryoneIncludingSender(t *testing.T) {
	hub, ctx := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	join(t, hub, ctx, alice, "alice")
	join(t, hub, ctx, bob, "bob")

	ack := hub.Do(ctx, &Command{Kind: CommandSendMessage, Client: alice, Text: " hi "})
	if ack.Err != nil {
		t.Fatalf("send failed: %v", ack.Err)
	}

	evA := mustEvent(t, alice.Events, EventReceiveMessage)
	evB := mustEvent(t, bob.Events, EventReceiveMessage)
	if evA.Message.ID != ack.MessageID || evB.Message.ID != ack.MessageID {
		t.Fatal("both copies must carry the acked message id")
	}
	if evB.Message.Text != "hi" || evB.Message.SenderName != "alice" {
		t.Fatalf("unexpected message payload: %+v", evB.Message)
	}
}

func TestHubRejectsEmptyMessage(t *testing.T) {
	hub, ctx := startHub(t, nil)

	alice := NewClient("a")
	join(t, hub, ctx, alice, "alice")

	ack := hub.Do(ctx, &Command{Kind: CommandSendMessage, Client: alice, Text: "   "})
	if ack.Err == nil || ack.Err.Code != ErrCodeBadRequest {
		t.Fatalf("expected bad_request, got %+v", ack.Err)
	}
}

func TestHubRequiresJoinBeforeMessaging(t *testing.T) {
	hub, ctx := startHub(t, nil)

	stranger := NewClient("x")
	hub.RegisterClient(stranger)

	for _, cmd := range []*Command{
		{Kind: CommandSendMessage, Client: stranger, Text: "hi"},
		{Kind: CommandPrivateMessage, Client: stranger, To: "a", Text: "hi"},
		{Kind: CommandTyping, Client: stranger, IsTyping: true},
		{Kind: CommandMessageRead, Client: stranger, MessageID: 1},
	} {
		ack := hub.Do(ctx, cmd)
		if ack.Err == nil || ack.Err.Code != ErrCodeUnauthenticated {
			t.Fatalf("kind %v: expected unauthenticated, got %+v", cmd.Kind, ack.Err)
		}
	}
}

func TestHubPrivateMessageDeliveredToPairOnly(t *testing.T) {
	hub, ctx := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	carol := NewClient("c")
	join(t, hub, ctx, alice, "alice")
	join(t, hub, ctx, bob, "bob")
	join(t, hub, ctx, carol, "carol")

	ack := hub.Do(ctx, &Command{Kind: CommandPrivateMessage, Client: alice, To: "b", Text: "psst"})
	if ack.Err != nil {
		t.Fatalf("private message failed: %v", ack.Err)
	}

	evA := mustEvent(t, alice.Events, EventPrivateMessage)
	evB := mustEvent(t, bob.Events, EventPrivateMessage)
	if evA.Message.ID != evB.Message.ID || evB.Message.RecipientID != "b" {
		t.Fatalf("unexpected private copies: %+v %+v", evA.Message, evB.Message)
	}
	mustNoEvent(t, carol.Events, EventPrivateMessage)
}

func TestHubPrivateMessageUnknownRecipient(t *testing.T) {
	hub, ctx := startHub(t, nil)

	alice := NewClient("a")
	join(t, hub, ctx, alice, "alice")

	ack := hub.Do(ctx, &Command{Kind: CommandPrivateMessage, Client: alice, To: "ghost", Text: "hi"})
	if ack.Err == nil || ack.Err.Code != ErrCodeUserNotFound {
		t.Fatalf("expected user_not_found, got %+v", ack.Err)
	}
}

func TestHubTypingBroadcastExcludesTyper(t *testing.T) {
	hub, ctx := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	join(t, hub, ctx, alice, "alice")
	join(t, hub, ctx, bob, "bob")

	hub.Do(ctx, &Command{Kind: CommandTyping, Client: alice, IsTyping: true})

	ev := mustEvent(t, bob.Events, EventTypingUsers)
	if len(ev.Typing) != 1 || ev.Typing[0].Username != "alice" {
		t.Fatalf("bob should see alice typing: %+v", ev.Typing)
	}
	mustNoEvent(t, alice.Events, EventTypingUsers)

	hub.Do(ctx, &Command{Kind: CommandTyping, Client: alice, IsTyping: false})
	ev = mustEvent(t, bob.Events, EventTypingUsers)
	if len(ev.Typing) != 0 {
		t.Fatalf("typing set should be empty after stop: %+v", ev.Typing)
	}
}

func TestHubMessageReadNotifiesSenderOnly(t *testing.T) {
	hub, ctx := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	carol := NewClient("c")
	join(t, hub, ctx, alice, "alice")
	join(t, hub, ctx, bob, "bob")
	join(t, hub, ctx, carol, "carol")

	sent := hub.Do(ctx, &Command{Kind: CommandSendMessage, Client: alice, Text: "hi"})
	if sent.Err != nil {
		t.Fatalf("send failed: %v", sent.Err)
	}

	// Sender cannot acknowledge her own message.
	selfRead := hub.Do(ctx, &Command{Kind: CommandMessageRead, Client: alice, MessageID: sent.MessageID})
	if selfRead.Err == nil || selfRead.Err.Code != ErrCodeForbidden {
		t.Fatalf("expected forbidden for self-read, got %+v", selfRead.Err)
	}

	if ack := hub.Do(ctx, &Command{Kind: CommandMessageRead, Client: bob, MessageID: sent.MessageID}); ack.Err != nil {
		t.Fatalf("read failed: %v", ack.Err)
	}

	ev := mustEvent(t, alice.Events, EventMessageRead)
	if ev.MessageID != sent.MessageID {
		t.Fatalf("unexpected read receipt: %+v", ev)
	}
	mustNoEvent(t, carol.Events, EventMessageRead)

	// A repeat acknowledgment stays silent.
	hub.Do(ctx, &Command{Kind: CommandMessageRead, Client: carol, MessageID: sent.MessageID})
	mustNoEvent(t, alice.Events, EventMessageRead)
}

func TestHubDisconnectBroadcastsUserLeft(t *testing.T) {
	hub, ctx := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	join(t, hub, ctx, alice, "alice")
	join(t, hub, ctx, bob, "bob")

	hub.Do(ctx, &Command{Kind: CommandTyping, Client: alice, IsTyping: true})
	mustEvent(t, bob.Events, EventTypingUsers)

	hub.UnregisterClient(alice)

	left := mustEvent(t, bob.Events, EventUserLeft)
	if left.User.Name != "alice" || left.User.Online {
		t.Fatalf("unexpected user_left payload: %+v", left.User)
	}

	// The freed name is claimable again and the typing entry is gone.
	carol := NewClient("c")
	ack := join(t, hub, ctx, carol, "alice")
	if ack.Err != nil {
		t.Fatalf("rejoin with freed name failed: %v", ack.Err)
	}
	hub.Do(ctx, &Command{Kind: CommandTyping, Client: carol, IsTyping: true})
	ev := mustEvent(t, bob.Events, EventTypingUsers)
	for _, u := range ev.Typing {
		if u.ID == "a" {
			t.Fatal("disconnected connection must not linger in typing set")
		}
	}
}

func TestHubSendFileStoresAndBroadcasts(t *testing.T) {
	store := &fakeStore{}
	hub, ctx := startHub(t, store)

	alice := NewClient("a")
	bob := NewClient("b")
	join(t, hub, ctx, alice, "alice")
	join(t, hub, ctx, bob, "bob")

	ack := hub.Do(ctx, &Command{
		Kind:   CommandSendFile,
		Client: alice,
		File: &FileUpload{
			Name:     "notes.txt",
			MimeType: "text/plain",
			Size:     5,
			Data:     []byte("hello"),
		},
	})
	if ack.Err != nil {
		t.Fatalf("send_file failed: %v", ack.Err)
	}

	ev := mustEvent(t, bob.Events, EventReceiveMessage)
	if ev.Message.Kind != KindFile || ev.Message.File == nil {
		t.Fatalf("expected file message, got %+v", ev.Message)
	}
	if ev.Message.File.Handle == "" || ev.Message.File.Name != "notes.txt" {
		t.Fatalf("unexpected file meta: %+v", ev.Message.File)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one stored blob, got %d", len(store.saved))
	}
}

func TestHubSendFileStorageFailure(t *testing.T) {
	hub, ctx := startHub(t, &fakeStore{fail: true})

	alice := NewClient("a")
	join(t, hub, ctx, alice, "alice")

	ack := hub.Do(ctx, &Command{
		Kind:   CommandSendFile,
		Client: alice,
		File:   &FileUpload{Name: "x.bin", Data: []byte{1}},
	})
	if ack.Err == nil || ack.Err.Code != ErrCodeStorageFailure {
		t.Fatalf("expected storage_failure, got %+v", ack.Err)
	}

	// A failed upload must leave the log untouched.
	if count, _, err := hub.Messages(ctx); err != nil || count != 0 {
		t.Fatalf("expected empty log after failed upload, got %d (%v)", count, err)
	}
	mustNoEvent(t, alice.Events, EventReceiveMessage)
}
