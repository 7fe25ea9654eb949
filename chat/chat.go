// Package chat abstracts the realtime messaging provider behind a small
// capability interface so the concrete transport can be swapped without
// touching the HTTP surface.
package chat

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Message is one chat message.
type Message struct {
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Text           string    `json:"text"`
	SentAt         time.Time `json:"sentAt"`
}

// Messenger is the capability contract with the messaging provider:
// connect as a user, send into a conversation, observe incoming messages,
// and detach on teardown. Lifecycle is scoped acquisition/release — one
// Connect per widget session, one Disconnect when it goes away.
type Messenger interface {
	Connect(ctx context.Context, userID string) error
	SendMessage(ctx context.Context, conversationID, text string) error
	OnMessage(fn func(Message))
	Disconnect() error
}

// ConversationID derives the deterministic one-on-one conversation id for
// two user identities; argument order does not matter.
func ConversationID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}
