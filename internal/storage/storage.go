package storage

import (
	"context"
	"errors"

	"github.com/xaenox/web-agent/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

type Storage interface {
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	TouchConversation(ctx context.Context, id string) error
	GetConversationsByUser(ctx context.Context, userID string) ([]*models.Conversation, error)

	// CreateMessage assigns the message a sequence number strictly greater
	// than every message already in the conversation.
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
	GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error)

	CreateCodeSnippet(ctx context.Context, snippet *models.CodeSnippet) error
	GetCodeSnippets(ctx context.Context, conversationID string) ([]*models.CodeSnippet, error)

	Close() error
}
