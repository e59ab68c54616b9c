// Package chat implements the interactive chat view for the CV Studio
// assistant.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cvforge/cvchat/internal/client"
)

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Kind tags what a message represents.
type Kind string

// Message kinds.
const (
	KindText    Kind = "text"
	KindCommand Kind = "command"
	KindResult  Kind = "result"
	KindError   Kind = "error"
)

// Message is a single entry in the session transcript.
type Message struct {
	ID        uuid.UUID
	Role      Role
	Kind      Kind
	Content   string
	Result    *client.CommandResult
	CreatedAt time.Time
}

// Transcript is the append-only, in-memory message list for one session.
// It is only ever touched from the UI goroutine.
type Transcript struct {
	msgs   []Message
	lastAt time.Time
}

// Append adds a message and returns it. Timestamps are strictly increasing
// in append order, even when the wall clock does not move between calls.
func (t *Transcript) Append(role Role, kind Kind, content string, result *client.CommandResult) Message {
	now := time.Now()
	if !now.After(t.lastAt) {
		now = t.lastAt.Add(time.Nanosecond)
	}
	t.lastAt = now

	m := Message{
		ID:        uuid.New(),
		Role:      role,
		Kind:      kind,
		Content:   content,
		Result:    result,
		CreatedAt: now,
	}
	t.msgs = append(t.msgs, m)
	return m
}

// ExtendLast appends delta to the content of the most recent message.
// Used for streamed assistant replies; no-op on an empty transcript.
func (t *Transcript) ExtendLast(delta string) {
	if len(t.msgs) == 0 {
		return
	}
	t.msgs[len(t.msgs)-1].Content += delta
}

// DropLast removes the most recent message. Used when a streamed reply stub
// is superseded by the command's final result; no-op on an empty transcript.
func (t *Transcript) DropLast() {
	if len(t.msgs) == 0 {
		return
	}
	t.msgs = t.msgs[:len(t.msgs)-1]
}

// Messages returns the transcript in order.
func (t *Transcript) Messages() []Message {
	return t.msgs
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.msgs)
}

// Markdown renders the transcript for export.
func (t *Transcript) Markdown() string {
	var b strings.Builder
	b.WriteString("# cvchat transcript\n")
	for _, m := range t.msgs {
		fmt.Fprintf(&b, "\n**%s** (%s):\n\n%s\n", m.Role, m.CreatedAt.Format(time.RFC3339), m.Content)
	}
	return b.String()
}
