package llm

import (
	"context"

	"github.com/pkg/errors"
)

// Roles accepted by the completion service.
const (
	UserRole      = "user"
	AssistantRole = "assistant"
)

// ErrMissingAPIKey indicates no usable credential for the completion service.
// It is fatal: nothing can be done until the configuration is fixed.
var ErrMissingAPIKey = errors.New("missing or placeholder openai api key")

// Message is a single role/content pair sent to or received from the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreateTextGenerationRequest parameterizes a completion call.
type CreateTextGenerationRequest struct {
	Model       string
	Messages    []*Message
	MaxTokens   int
	Temperature float32
}

// StreamEvent is one fragment of a streamed completion.
type StreamEvent struct {
	Token        string
	FinishReason string
}

// Stream of completion fragments. Finite, not restartable.
type Stream interface {
	Recv() (*StreamEvent, error)
	Close()
}

// Client is the completion gateway interface.
type Client interface {
	// CreateTextGeneration streams a completion for the given messages.
	CreateTextGeneration(context.Context, *CreateTextGenerationRequest) (Stream, error)
	// CreateText returns a single-shot completion for the given messages.
	CreateText(context.Context, *CreateTextGenerationRequest) (string, error)
}
