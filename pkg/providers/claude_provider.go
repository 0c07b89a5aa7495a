package providers

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sipeed/sketchcanvas/pkg/logger"
	"github.com/sipeed/sketchcanvas/pkg/prompt"
	"github.com/sipeed/sketchcanvas/pkg/response"
)

type ClaudeProvider struct {
	client *anthropic.Client
	model  string
}

// NewClaudeProvider creates a provider authenticated with an API key. An empty
// baseURL keeps the SDK default.
func NewClaudeProvider(apiKey, baseURL, model string) *ClaudeProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeProvider{client: &client, model: model}
}

func (p *ClaudeProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	params, err := buildClaudeParams(req, p.model)
	if err != nil {
		return nil, err
	}

	logger.DebugCF("claude", "Sending messages", map[string]interface{}{
		"model":      params.Model,
		"turns":      len(params.Messages),
		"max_tokens": params.MaxTokens,
	})

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude API call: %w", err)
	}
	return parseClaudeResponse(resp), nil
}

func (p *ClaudeProvider) GetDefaultModel() string {
	return p.model
}

func buildClaudeParams(req Request, defaultModel string) (anthropic.MessageNewParams, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for i, turn := range req.Messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(turn.Content))
		for _, b := range turn.Content {
			switch b.Kind {
			case prompt.KindImage:
				blocks = append(blocks, anthropic.NewImageBlockBase64(b.MediaType, b.Data))
			case prompt.KindText:
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			default:
				return anthropic.MessageNewParams{}, fmt.Errorf("turn %d: unknown block kind %q", i, b.Kind)
			}
		}
		switch turn.Role {
		case prompt.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		case prompt.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("turn %d: unknown role %q", i, turn.Role)
		}
	}

	model := req.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params, nil
}

// parseClaudeResponse keeps one item per content block so that answers with
// extra blocks stay distinguishable from single-text answers.
func parseClaudeResponse(resp *anthropic.Message) *Completion {
	items := make([]response.ContentItem, 0, len(resp.Content))
	for _, block := range resp.Content {
		item := response.ContentItem{Type: block.Type}
		if block.Type == "text" {
			item.Text = block.Text
		}
		items = append(items, item)
	}

	return &Completion{
		Response:     response.ModelResponse{Content: items},
		Model:        string(resp.Model),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
}
