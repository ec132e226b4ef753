package core

import "sort"

// TypingTracker holds the ephemeral set of connections currently typing.
// State is rebuilt from explicit signals and cleared on disconnect; nothing
// here survives the process.
type TypingTracker struct {
	typing map[string]struct{}
}

// NewTypingTracker constructs an empty tracker.
func NewTypingTracker() *TypingTracker {
	return &TypingTracker{typing: make(map[string]struct{})}
}

// Set records or clears the typing state for a connection.
func (t *TypingTracker) Set(connID string, isTyping bool) {
	if isTyping {
		t.typing[connID] = struct{}{}
		return
	}
	delete(t.typing, connID)
}

// Clear removes the entry for a connection. Called on disconnect so the
// set never accumulates gone participants.
func (t *TypingTracker) Clear(connID string) {
	delete(t.typing, connID)
}

// Active returns the typing connection ids in stable order.
func (t *TypingTracker) Active() []string {
	ids := make([]string, 0, len(t.typing))
	for id := range t.typing {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
