package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xaenox/web-agent/internal/models"
)

// MemoryStorage is an in-memory Storage used for tests and local
// development without a database.
type MemoryStorage struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	messages      map[string][]*models.Message
	snippets      map[string][]*models.CodeSnippet
	seq           map[string]int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]*models.Message),
		snippets:      make(map[string][]*models.CodeSnippet),
		seq:           make(map[string]int64),
	}
}

func (s *MemoryStorage) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	stored := *conversation
	s.conversations[conversation.ID] = &stored
	return nil
}

func (s *MemoryStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, exists := s.conversations[id]
	if !exists {
		return nil, ErrNotFound
	}

	copied := *conversation
	return &copied, nil
}

func (s *MemoryStorage) TouchConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, exists := s.conversations[id]
	if !exists {
		return ErrNotFound
	}

	conversation.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) GetConversationsByUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conversations []*models.Conversation
	for _, conversation := range s.conversations {
		if conversation.UserID != userID {
			continue
		}
		copied := *conversation
		conversations = append(conversations, &copied)
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}

func (s *MemoryStorage) CreateMessage(ctx context.Context, message *models.Message) error {
	if !message.Role.Valid() {
		return fmt.Errorf("invalid role: %q", message.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[message.ConversationID]; !exists {
		return ErrNotFound
	}

	s.seq[message.ConversationID]++
	message.Seq = s.seq[message.ConversationID]
	message.CreatedAt = time.Now()

	stored := *message
	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], &stored)
	return nil
}

func (s *MemoryStorage) GetMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyMessages(s.messages[conversationID]), nil
}

func (s *MemoryStorage) GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[conversationID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	return copyMessages(messages), nil
}

func copyMessages(messages []*models.Message) []*models.Message {
	copied := make([]*models.Message, 0, len(messages))
	for _, message := range messages {
		m := *message
		copied = append(copied, &m)
	}
	return copied
}

func (s *MemoryStorage) CreateCodeSnippet(ctx context.Context, snippet *models.CodeSnippet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[snippet.ConversationID]; !exists {
		return ErrNotFound
	}

	snippet.CreatedAt = time.Now()

	stored := *snippet
	s.snippets[snippet.ConversationID] = append(s.snippets[snippet.ConversationID], &stored)
	return nil
}

func (s *MemoryStorage) GetCodeSnippets(ctx context.Context, conversationID string) ([]*models.CodeSnippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snippets := make([]*models.CodeSnippet, 0, len(s.snippets[conversationID]))
	for _, snippet := range s.snippets[conversationID] {
		copied := *snippet
		snippets = append(snippets, &copied)
	}

	return snippets, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
