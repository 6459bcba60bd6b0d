package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/web-agent/internal/models"
	"github.com/xaenox/web-agent/internal/provider"
	"github.com/xaenox/web-agent/internal/storage"
)

const (
	// historyWindow is the number of recent messages sent to the provider,
	// counted by message, not by token.
	historyWindow = 10
	// titleMaxLen bounds the conversation title derived from the first
	// message, in runes.
	titleMaxLen = 50

	roleSystem   = "system"
	systemPrompt = "You are a helpful assistant. Answer the user's questions clearly and include code examples in fenced code blocks when they help."
)

// Service orchestrates one conversation turn: persist the user message,
// ask the provider for a reply, persist it, and extract code snippets.
type Service struct {
	storage  storage.Storage
	provider provider.InferenceProvider
	logger   *zap.Logger
}

func NewService(storage storage.Storage, provider provider.InferenceProvider, logger *zap.Logger) *Service {
	return &Service{
		storage:  storage,
		provider: provider,
		logger:   logger,
	}
}

type ChatRequest struct {
	Message        string
	UserID         string
	ProjectID      string
	ConversationID string
}

// TurnResult carries the primary reply and the snippet-extraction outcome
// as separate fields. SnippetErr is diagnostic only; a failed extraction
// never fails the turn.
type TurnResult struct {
	Conversation     *models.Conversation
	UserMessage      *models.Message
	AssistantMessage *models.Message
	Snippets         []*models.CodeSnippet
	SnippetErr       error
}

func (s *Service) HandleMessage(ctx context.Context, req ChatRequest) (*TurnResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, newError(ErrorInvalidRequest, "empty_message", nil)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, newError(ErrorInvalidRequest, "missing_user_id", nil)
	}

	conversation, err := s.resolveConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	userMessage := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		Role:           models.RoleUser,
		Content:        req.Message,
	}
	if err := s.storage.CreateMessage(ctx, userMessage); err != nil {
		return nil, newError(ErrorProcessingFailed, "message_write_error", err)
	}
	s.touch(ctx, conversation.ID)

	reply, err := s.generateReply(ctx, conversation.ID)
	if err != nil {
		return nil, newError(ErrorProcessingFailed, "provider_error", err)
	}

	assistantMessage := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		Role:           models.RoleAssistant,
		Content:        reply,
	}
	if err := s.storage.CreateMessage(ctx, assistantMessage); err != nil {
		return nil, newError(ErrorProcessingFailed, "message_write_error", err)
	}
	s.touch(ctx, conversation.ID)

	snippets, snippetErr := s.extractSnippets(ctx, conversation, reply)

	return &TurnResult{
		Conversation:     conversation,
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Snippets:         snippets,
		SnippetErr:       snippetErr,
	}, nil
}

func (s *Service) resolveConversation(ctx context.Context, req ChatRequest) (*models.Conversation, error) {
	if req.ConversationID != "" {
		conversation, err := s.storage.GetConversation(ctx, req.ConversationID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newError(ErrorInvalidRequest, "conversation_not_found", err)
		}
		if err != nil {
			return nil, newError(ErrorProcessingFailed, "conversation_read_error", err)
		}
		return conversation, nil
	}

	conversation := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		ProjectID: req.ProjectID,
		Title:     truncateTitle(req.Message),
	}
	if err := s.storage.CreateConversation(ctx, conversation); err != nil {
		return nil, newError(ErrorProcessingFailed, "conversation_write_error", err)
	}

	return conversation, nil
}

// generateReply sends the system prompt plus the last historyWindow
// messages (the just-appended user message included) to the provider.
func (s *Service) generateReply(ctx context.Context, conversationID string) (string, error) {
	recent, err := s.storage.GetRecentMessages(ctx, conversationID, historyWindow)
	if err != nil {
		return "", fmt.Errorf("error loading history: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(recent)+1)
	messages = append(messages, models.ChatMessage{Role: roleSystem, Content: systemPrompt})
	for _, m := range recent {
		messages = append(messages, models.ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	return s.provider.Complete(ctx, messages)
}

// extractSnippets stores one CodeSnippet per fenced block in the reply.
// Failures are logged and reported back as a diagnostic, never as a
// request failure.
func (s *Service) extractSnippets(ctx context.Context, conversation *models.Conversation, reply string) ([]*models.CodeSnippet, error) {
	var (
		snippets []*models.CodeSnippet
		errs     []error
	)

	for _, block := range extractCodeBlocks(reply) {
		snippet := &models.CodeSnippet{
			ID:             uuid.NewString(),
			ConversationID: conversation.ID,
			ProjectID:      conversation.ProjectID,
			Language:       block.Language,
			Code:           block.Code,
			Title:          fmt.Sprintf("Generated %s snippet", block.Language),
		}
		if err := s.storage.CreateCodeSnippet(ctx, snippet); err != nil {
			s.logger.Warn("Failed to store code snippet",
				zap.Error(err),
				zap.String("conversation_id", conversation.ID),
				zap.String("language", block.Language))
			errs = append(errs, err)
			continue
		}
		snippets = append(snippets, snippet)
	}

	return snippets, errors.Join(errs...)
}

// touch bumps the conversation's updated timestamp. A failed bump is
// logged and swallowed so an already-persisted message is not reported as
// a failed turn.
func (s *Service) touch(ctx context.Context, conversationID string) {
	if err := s.storage.TouchConversation(ctx, conversationID); err != nil {
		s.logger.Warn("Failed to touch conversation",
			zap.Error(err),
			zap.String("conversation_id", conversationID))
	}
}

func truncateTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleMaxLen {
		return message
	}
	return string(runes[:titleMaxLen])
}
