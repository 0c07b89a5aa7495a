package providers

import (
	"context"

	"github.com/sipeed/sketchcanvas/pkg/prompt"
	"github.com/sipeed/sketchcanvas/pkg/response"
)

const (
	DefaultClaudeModel = "claude-3-opus-20240229"
	DefaultOpenAIModel = "gpt-4o"
	DefaultMaxTokens   = 2048
)

type Request struct {
	System    string
	Messages  prompt.MessageList
	Model     string
	MaxTokens int64
}

type Completion struct {
	Response     response.ModelResponse
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// LLMProvider sends one request to a model and returns its answer. Retries,
// rate limits and streaming are the client's business, not ours.
type LLMProvider interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
	GetDefaultModel() string
}
