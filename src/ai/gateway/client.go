package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/teambots/teambots/src/ai/core"
	"github.com/teambots/teambots/src/webclient"
)

const completionsSuffix = "/chat/completions"

func init() {
	core.RegisterProvider("gateway", newClient, "openai-compatible")
}

type client struct {
	api         openai.Client
	model       string
	temperature float64
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("gateway: base URL not configured")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gateway: API key not configured")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = webclient.NewDefault(cfg.Timeout)
	}

	// One attempt per call: the fallback provider is the retry.
	api := openai.NewClient(
		option.WithBaseURL(BaseURL(cfg.BaseURL)),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &client{
		api:         api,
		model:       core.ResolveModelName("gateway", cfg.Model),
		temperature: cfg.Temperature,
	}, nil
}

// BaseURL accepts both ".../v1" and ".../v1/chat/completions" forms and
// returns the prefix the SDK appends "chat/completions" to.
func BaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	base = strings.TrimSuffix(base, completionsSuffix)
	return base + "/"
}

func (c *client) Name() string { return "gateway" }

func (c *client) Respond(ctx context.Context, req core.Request) (core.Response, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	params := openai.ChatCompletionNewParams{
		Model:       model,
		Messages:    toParams(req.Messages()),
		Temperature: openai.Float(temperature),
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return core.Response{}, fmt.Errorf("gateway: %w", err)
	}
	if len(completion.Choices) == 0 {
		return core.Response{}, errors.New("gateway: response has no choices")
	}

	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return core.Response{}, errors.New("gateway: empty content")
	}

	used := strings.TrimSpace(completion.Model)
	if used == "" {
		used = model
	}
	return core.Response{Content: content, Model: used}, nil
}

func toParams(msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
