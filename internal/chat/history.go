package chat

import (
	"context"

	"github.com/xaenox/web-agent/internal/models"
)

// ConversationHistory is a conversation with its messages in ascending
// order.
type ConversationHistory struct {
	models.Conversation
	Messages []*models.Message `json:"messages"`
}

// History returns the messages of one conversation in ascending order.
func (s *Service) History(ctx context.Context, conversationID string) ([]*models.Message, error) {
	if conversationID == "" {
		return nil, newError(ErrorInvalidRequest, "missing_conversation_id", nil)
	}

	messages, err := s.storage.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, newError(ErrorProcessingFailed, "history_read_error", err)
	}

	return messages, nil
}

// UserConversations returns every conversation owned by userID, most
// recently updated first, each with its messages ascending.
func (s *Service) UserConversations(ctx context.Context, userID string) ([]*ConversationHistory, error) {
	if userID == "" {
		return nil, newError(ErrorInvalidRequest, "missing_user_id", nil)
	}

	conversations, err := s.storage.GetConversationsByUser(ctx, userID)
	if err != nil {
		return nil, newError(ErrorProcessingFailed, "history_read_error", err)
	}

	histories := make([]*ConversationHistory, 0, len(conversations))
	for _, conversation := range conversations {
		messages, err := s.storage.GetMessages(ctx, conversation.ID)
		if err != nil {
			return nil, newError(ErrorProcessingFailed, "history_read_error", err)
		}
		histories = append(histories, &ConversationHistory{
			Conversation: *conversation,
			Messages:     messages,
		})
	}

	return histories, nil
}

// Snippets returns the code snippets extracted for one conversation.
func (s *Service) Snippets(ctx context.Context, conversationID string) ([]*models.CodeSnippet, error) {
	if conversationID == "" {
		return nil, newError(ErrorInvalidRequest, "missing_conversation_id", nil)
	}

	snippets, err := s.storage.GetCodeSnippets(ctx, conversationID)
	if err != nil {
		return nil, newError(ErrorProcessingFailed, "snippet_read_error", err)
	}

	return snippets, nil
}
