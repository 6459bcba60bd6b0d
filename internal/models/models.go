package models

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two roles the store accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Conversation is a thread of messages owned by one user, optionally
// scoped to a project. Its title is derived from the first message.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single turn inside a conversation. Seq is assigned by the
// store and is the authoritative order of messages within a conversation;
// CreatedAt is display metadata.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Seq            int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// CodeSnippet is a fenced code block lifted verbatim out of an assistant
// reply. Snippets are never updated or deduplicated.
type CodeSnippet struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	ProjectID      string    `json:"project_id,omitempty"`
	Language       string    `json:"language"`
	Code           string    `json:"code"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatMessage is the provider-facing role/content pair sent to the
// inference API. Unlike Message.Role it also carries the system role,
// which is never persisted.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
