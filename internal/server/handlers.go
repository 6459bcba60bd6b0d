package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/web-agent/internal/chat"
	"github.com/xaenox/web-agent/internal/models"
)

type chatRequest struct {
	Message        string `json:"message"`
	ProjectID      string `json:"projectId"`
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}

type conversationPayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type messagePayload struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type chatResponse struct {
	Success          bool                `json:"success"`
	Conversation     conversationPayload `json:"conversation"`
	UserMessage      messagePayload      `json:"userMessage"`
	AssistantMessage messagePayload      `json:"assistantMessage"`
}

type conversationHistoryPayload struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	ProjectID string           `json:"projectId,omitempty"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Messages  []messagePayload `json:"messages"`
}

func toMessagePayload(m *models.Message) messagePayload {
	return messagePayload{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toMessagePayloads(messages []*models.Message) []messagePayload {
	payloads := make([]messagePayload, 0, len(messages))
	for _, m := range messages {
		payloads = append(payloads, toMessagePayload(m))
	}
	return payloads
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
		return
	}

	result, err := s.service.HandleMessage(r.Context(), chat.ChatRequest{
		Message:        req.Message,
		UserID:         req.UserID,
		ProjectID:      req.ProjectID,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if result.SnippetErr != nil {
		s.logger.Warn("Snippet extraction incomplete",
			zap.Error(result.SnippetErr),
			zap.String("conversation_id", result.Conversation.ID))
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Success: true,
		Conversation: conversationPayload{
			ID:    result.Conversation.ID,
			Title: result.Conversation.Title,
		},
		UserMessage:      toMessagePayload(result.UserMessage),
		AssistantMessage: toMessagePayload(result.AssistantMessage),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversationId")
	userID := r.URL.Query().Get("userId")

	switch {
	case conversationID != "":
		messages, err := s.service.History(r.Context(), conversationID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]messagePayload{
			"messages": toMessagePayloads(messages),
		})

	case userID != "":
		histories, err := s.service.UserConversations(r.Context(), userID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		conversations := make([]conversationHistoryPayload, 0, len(histories))
		for _, h := range histories {
			conversations = append(conversations, conversationHistoryPayload{
				ID:        h.ID,
				UserID:    h.UserID,
				ProjectID: h.ProjectID,
				Title:     h.Title,
				CreatedAt: h.CreatedAt,
				UpdatedAt: h.UpdatedAt,
				Messages:  toMessagePayloads(h.Messages),
			})
		}
		writeJSON(w, http.StatusOK, map[string][]conversationHistoryPayload{
			"conversations": conversations,
		})

	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
	}
}

type snippetPayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	ProjectID      string    `json:"projectId,omitempty"`
	Language       string    `json:"language"`
	Code           string    `json:"code"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (s *Server) handleSnippets(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
		return
	}

	snippets, err := s.service.Snippets(r.Context(), conversationID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	payloads := make([]snippetPayload, 0, len(snippets))
	for _, snippet := range snippets {
		payloads = append(payloads, snippetPayload{
			ID:             snippet.ID,
			ConversationID: snippet.ConversationID,
			ProjectID:      snippet.ProjectID,
			Language:       snippet.Language,
			Code:           snippet.Code,
			Title:          snippet.Title,
			CreatedAt:      snippet.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string][]snippetPayload{"snippets": payloads})
}
