package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/sipeed/sketchcanvas/pkg/logger"
	"github.com/sipeed/sketchcanvas/pkg/prompt"
	"github.com/sipeed/sketchcanvas/pkg/response"
)

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{client: &client, model: model}
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	params, err := buildOpenAIParams(req, p.model)
	if err != nil {
		return nil, err
	}

	logger.DebugCF("openai", "Sending chat completion", map[string]interface{}{
		"model":    params.Model,
		"messages": len(params.Messages),
	})

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai API call: %w", err)
	}
	return parseOpenAIResponse(resp), nil
}

func (p *OpenAIProvider) GetDefaultModel() string {
	return p.model
}

func buildOpenAIParams(req Request, defaultModel string) (openai.ChatCompletionNewParams, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}

	for i, turn := range req.Messages {
		switch turn.Role {
		case prompt.RoleUser:
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(turn.Content))
			for _, b := range turn.Content {
				switch b.Kind {
				case prompt.KindImage:
					parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
						URL: "data:" + b.MediaType + ";base64," + b.Data,
					}))
				case prompt.KindText:
					parts = append(parts, openai.TextContentPart(b.Text))
				default:
					return openai.ChatCompletionNewParams{}, fmt.Errorf("turn %d: unknown block kind %q", i, b.Kind)
				}
			}
			messages = append(messages, openai.UserMessage(parts))
		case prompt.RoleAssistant:
			// Assistant turns can only carry text.
			var text string
			for _, b := range turn.Content {
				if b.Kind != prompt.KindText {
					return openai.ChatCompletionNewParams{}, fmt.Errorf("turn %d: assistant turns must be text", i)
				}
				text += b.Text
			}
			messages = append(messages, openai.AssistantMessage(text))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("turn %d: unknown role %q", i, turn.Role)
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

	return openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(maxTokens),
	}, nil
}

// parseOpenAIResponse maps the first choice to a single text item. No choices
// means an empty response.
func parseOpenAIResponse(resp *openai.ChatCompletion) *Completion {
	c := &Completion{
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) > 0 {
		c.Response.Content = []response.ContentItem{
			{Type: "text", Text: resp.Choices[0].Message.Content},
		}
	}
	return c
}
