// Package brain is the single completion entry point shared by every bot.
// It tries the gateway once, then the direct provider once, and otherwise
// returns a placeholder labelled Dead. It never returns an error.
package brain

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/teambots/teambots/src/ai/core"
	_ "github.com/teambots/teambots/src/ai/providers"
	"github.com/teambots/teambots/src/config"
	"github.com/teambots/teambots/src/logging"
	"github.com/teambots/teambots/src/webclient"
)

// Source labels which path produced a Result.
type Source string

const (
	Gateway Source = "Gateway"
	Backup  Source = "Backup"
	Dead    Source = "Dead"
)

// DeadModel is reported as the model when no path answered.
const DeadModel = "none"

const placeholder = "⚠️ Мозг сейчас недоступен: шлюз и резервный провайдер не ответили. Попробуйте ещё раз чуть позже."

// Result is one completion outcome.
type Result struct {
	Content string
	Model   string
	Source  Source
}

// Footer renders the "model | source" line bots append under replies.
func (r Result) Footer() string {
	return r.Model + " | " + string(r.Source)
}

// Completer is what handlers and the consilium depend on.
type Completer interface {
	Complete(ctx context.Context, system, user, modelHint string) Result
}

// Options tune a Client built from explicit providers.
type Options struct {
	Temperature float64
	Timeout     time.Duration
}

// Client is immutable after construction and safe for concurrent use.
type Client struct {
	primary core.Client
	backup  core.Client

	temperature float64
	timeout     time.Duration
}

var _ Completer = (*Client)(nil)

// New builds both paths from configuration. A path whose settings are
// incomplete is left out and logged once.
func New(cfg config.Brain, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = webclient.NewDefault(cfg.Timeout)
	}

	var primary, backup core.Client
	if strings.TrimSpace(cfg.GatewayBaseURL) != "" && strings.TrimSpace(cfg.GatewayAPIKey) != "" {
		c, err := core.NewClient(core.FactoryConfig{
			Provider:    "gateway",
			BaseURL:     cfg.GatewayBaseURL,
			APIKey:      cfg.GatewayAPIKey,
			Model:       cfg.GatewayModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			HTTPClient:  httpClient,
		})
		if err != nil {
			log.Printf("brain: gateway disabled: %v", err)
		} else {
			primary = c
		}
	} else {
		log.Printf("brain: gateway not configured, backup only")
	}

	if strings.TrimSpace(cfg.BackupAPIKey) != "" {
		c, err := core.NewClient(core.FactoryConfig{
			Provider:    "gemini",
			APIKey:      cfg.BackupAPIKey,
			Model:       cfg.BackupModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			HTTPClient:  httpClient,
		})
		if err != nil {
			log.Printf("brain: backup disabled: %v", err)
		} else {
			backup = c
		}
	}

	return NewWithClients(primary, backup, Options{Temperature: cfg.Temperature, Timeout: cfg.Timeout})
}

// NewWithClients wires already-built providers. Either may be nil.
func NewWithClients(primary, backup core.Client, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	return &Client{
		primary:     primary,
		backup:      backup,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
	}
}

// Configured reports which paths are available.
func (c *Client) Configured() (gateway, backup bool) {
	return c.primary != nil, c.backup != nil
}

// Complete runs the gateway, then the backup, each at most once.
func (c *Client) Complete(ctx context.Context, system, user, modelHint string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("brain: recovered panic: %v", r)
			res = deadResult()
		}
	}()

	hint := strings.TrimSpace(modelHint)
	if hint == "" {
		hint = core.AutoModel
	}

	if c.primary != nil {
		resp, err := c.attempt(ctx, c.primary, core.Request{System: system, User: user, Model: hint, Temperature: c.temperature})
		if err == nil {
			return Result{Content: resp.Content, Model: resp.Model, Source: Gateway}
		}
		log.Printf("brain: gateway failed: %v", err)
	}

	if ctx.Err() != nil {
		return deadResult()
	}

	if c.backup != nil {
		// The hint names a gateway route; the backup keeps its own model.
		resp, err := c.attempt(ctx, c.backup, core.Request{System: system, User: user, Temperature: c.temperature})
		if err == nil {
			return Result{Content: resp.Content, Model: resp.Model, Source: Backup}
		}
		log.Printf("brain: backup failed: %v", err)
	}

	return deadResult()
}

func (c *Client) attempt(ctx context.Context, provider core.Client, req core.Request) (core.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := provider.Respond(callCtx, req)
	if err != nil {
		if logging.IsTimeout(err) {
			return core.Response{}, fmt.Errorf("%s: timed out after %s: %w", provider.Name(), c.timeout, err)
		}
		return core.Response{}, fmt.Errorf("%s: %w", provider.Name(), err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return core.Response{}, fmt.Errorf("%s: empty content", provider.Name())
	}
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return resp, nil
}

func deadResult() Result {
	return Result{Content: placeholder, Model: DeadModel, Source: Dead}
}
