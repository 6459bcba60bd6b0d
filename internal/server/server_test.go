package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/web-agent/internal/chat"
	"github.com/xaenox/web-agent/internal/models"
	"github.com/xaenox/web-agent/internal/storage"
)

type fakeProvider struct {
	reply string
}

func (f *fakeProvider) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	return f.reply, nil
}

func newTestHandler(reply string) http.Handler {
	store := storage.NewMemoryStorage()
	service := chat.NewService(store, &fakeProvider{reply: reply}, zap.NewNop())
	return New(service, zap.NewNop()).Handler()
}

func postChat(t *testing.T, handler http.Handler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPostChat(t *testing.T) {
	handler := newTestHandler("Here:\n```python\ndef fib(n): ...\n```")

	rec := postChat(t, handler, map[string]any{
		"message": "Write a fib function",
		"userId":  "u1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Success      bool `json:"success"`
		Conversation struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"conversation"`
		UserMessage struct {
			ID      string `json:"id"`
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"userMessage"`
		AssistantMessage struct {
			ID      string `json:"id"`
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"assistantMessage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Conversation.ID)
	assert.Equal(t, "Write a fib function", resp.Conversation.Title)
	assert.Equal(t, "user", resp.UserMessage.Role)
	assert.Equal(t, "Write a fib function", resp.UserMessage.Content)
	assert.Equal(t, "assistant", resp.AssistantMessage.Role)
	assert.Equal(t, "Here:\n```python\ndef fib(n): ...\n```", resp.AssistantMessage.Content)

	// The extracted snippet is readable back through the snippet surface.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snippets?conversationId="+resp.Conversation.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snippetsResp struct {
		Snippets []struct {
			Language string `json:"language"`
			Code     string `json:"code"`
			Title    string `json:"title"`
		} `json:"snippets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snippetsResp))
	require.Len(t, snippetsResp.Snippets, 1)
	assert.Equal(t, "python", snippetsResp.Snippets[0].Language)
	assert.Equal(t, "def fib(n): ...", snippetsResp.Snippets[0].Code)
	assert.Equal(t, "Generated python snippet", snippetsResp.Snippets[0].Title)
}

func TestPostChatValidation(t *testing.T) {
	handler := newTestHandler("ok")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing message", map[string]any{"userId": "u1"}},
		{"empty message", map[string]any{"message": "", "userId": "u1"}},
		{"missing user id", map[string]any{"message": "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestPostChatMalformedBody(t *testing.T) {
	handler := newTestHandler("ok")

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostChatUnknownConversation(t *testing.T) {
	handler := newTestHandler("ok")

	rec := postChat(t, handler, map[string]any{
		"message":        "hi",
		"userId":         "u1",
		"conversationId": "missing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHistoryByConversation(t *testing.T) {
	handler := newTestHandler("the answer")

	rec := postChat(t, handler, map[string]any{"message": "the question", "userId": "u1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var posted struct {
		Conversation struct {
			ID string `json:"id"`
		} `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posted))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat?conversationId="+posted.Conversation.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "the question", resp.Messages[0].Content)
	assert.Equal(t, "assistant", resp.Messages[1].Role)
	assert.Equal(t, "the answer", resp.Messages[1].Content)
}

func TestGetHistoryByUser(t *testing.T) {
	handler := newTestHandler("ok")

	require.Equal(t, http.StatusOK, postChat(t, handler, map[string]any{"message": "one", "userId": "u1"}).Code)
	require.Equal(t, http.StatusOK, postChat(t, handler, map[string]any{"message": "two", "userId": "u1"}).Code)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat?userId=u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Conversations []struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		} `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 2)
	for _, c := range resp.Conversations {
		assert.Len(t, c.Messages, 2)
	}
}

func TestGetHistoryRequiresIdentifier(t *testing.T) {
	handler := newTestHandler("ok")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSnippetsRequiresIdentifier(t *testing.T) {
	handler := newTestHandler("ok")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snippets", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler("ok")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
