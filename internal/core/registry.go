package core

import (
	"net/url"
	"strings"
	"time"
)

// Participant is a chat identity bound to one connection.
// Entries are never deleted so message attribution survives a disconnect;
// Online flips to false instead.
type Participant struct {
	ID       string
	Name     string
	Avatar   string
	Online   bool
	JoinedAt time.Time
	LastSeen time.Time // zero while online
}

// Registry tracks participants by connection id in insertion order.
type Registry struct {
	byID  map[string]*Participant
	order []string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Participant)}
}

// Join claims a display name for the given connection. The name is trimmed
// first; it must be non-empty and not held by any currently online
// participant (exact, case-sensitive match). Offline names may be reclaimed.
func (r *Registry) Join(connID, rawName string) (Participant, *CoreError) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return Participant{}, coreError(ErrCodeNameEmpty, "username is required")
	}
	for _, id := range r.order {
		if p := r.byID[id]; p.Online && p.Name == name {
			return Participant{}, coreError(ErrCodeNameTaken, "username already taken")
		}
	}

	p := &Participant{
		ID:       connID,
		Name:     name,
		Avatar:   avatarURL(name),
		Online:   true,
		JoinedAt: time.Now(),
	}
	if _, exists := r.byID[connID]; !exists {
		r.order = append(r.order, connID)
	}
	r.byID[connID] = p
	return *p, nil
}

// MarkOffline records a disconnect. Idempotent; unknown ids are ignored.
func (r *Registry) MarkOffline(connID string, now time.Time) {
	p, ok := r.byID[connID]
	if !ok || !p.Online {
		return
	}
	p.Online = false
	p.LastSeen = now
}

// Find returns the participant for a connection id.
func (r *Registry) Find(connID string) (Participant, bool) {
	p, ok := r.byID[connID]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// Snapshot returns a copy of all participants in insertion order.
func (r *Registry) Snapshot() []Participant {
	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// Len returns the number of participants ever registered.
func (r *Registry) Len() int {
	return len(r.byID)
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}
