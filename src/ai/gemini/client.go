package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teambots/teambots/src/ai/core"
	"github.com/teambots/teambots/src/webclient"
	"google.golang.org/genai"
)

func init() {
	core.RegisterProvider("gemini", newClient, "google")
}

// Client talks to the Gemini API directly. It only accepts a single combined
// prompt, so system and user text are folded together.
type Client struct {
	api         *genai.Client
	model       string
	temperature float64
}

var _ core.ModelLister = (*Client)(nil)

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	return New(cfg)
}

// New builds the client; exported so startup code can list models before the
// backup model is chosen.
func New(cfg core.FactoryConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key not configured")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = webclient.NewDefault(cfg.Timeout)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	api, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: client: %w", err)
	}

	return &Client{
		api:         api,
		model:       core.ResolveModelName("gemini", cfg.Model),
		temperature: cfg.Temperature,
	}, nil
}

func (c *Client) Name() string { return "gemini" }

// Model returns the default model used when a request carries no override.
func (c *Client) Model() string { return c.model }

func (c *Client) Respond(ctx context.Context, req core.Request) (core.Response, error) {
	model := c.model
	if m := strings.TrimSpace(req.Model); m != "" && m != core.AutoModel {
		model = m
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	var genCfg *genai.GenerateContentConfig
	if temperature > 0 {
		genCfg = &genai.GenerateContentConfig{Temperature: genai.Ptr(float32(temperature))}
	}

	resp, err := c.api.Models.GenerateContent(ctx, model, genai.Text(req.Combined()), genCfg)
	if err != nil {
		return core.Response{}, fmt.Errorf("gemini API error: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return core.Response{}, errors.New("gemini: empty response")
	}

	used := strings.TrimSpace(resp.ModelVersion)
	if used == "" {
		used = model
	}
	return core.Response{Content: text, Model: used}, nil
}

// ListModels enumerates every model the key can see.
func (c *Client) ListModels(ctx context.Context) ([]core.ModelInfo, error) {
	var out []core.ModelInfo
	for m, err := range c.api.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("gemini: list models: %w", err)
		}
		out = append(out, core.ModelInfo{Name: m.Name, Actions: m.SupportedActions})
	}
	return out, nil
}
