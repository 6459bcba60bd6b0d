package provider

import (
	"context"

	"github.com/xaenox/web-agent/internal/models"
)

// InferenceProvider turns an ordered message history into one generated
// reply. Implementations make a single blocking call with no streaming.
type InferenceProvider interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}
