// Package bot is the Telegram runtime shared by every bot in the fleet:
// update intake (webhook or long polling), routing and per-update handling.
package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/teambots/teambots/src/actions/core"
	"github.com/teambots/teambots/src/fsm"
	"github.com/teambots/teambots/src/telegram"
	"github.com/teambots/teambots/src/tracking"
	"github.com/teambots/teambots/src/webclient"
)

const (
	handlerTimeout = 15 * time.Minute
	failureReply   = "❌ Что-то пошло не так. Попробуйте ещё раз."
)

// API is the part of *tgbotapi.BotAPI the runtime uses.
type API interface {
	telegram.Sender
	telegram.FileLocator
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ API = (*tgbotapi.BotAPI)(nil)

// Deps are shared by all bots.
type Deps struct {
	States  fsm.Store
	Tracker tracking.Tracker
	HTTP    *http.Client
}

var _ core.Module = (*Module)(nil)

// Module runs one Telegram bot.
type Module struct {
	name       string
	webhookURL string
	api        API
	router     *Router
	states     fsm.Store
	tracker    tracking.Tracker
	http       *http.Client

	wg         sync.WaitGroup
	mu         sync.Mutex
	runtimeCtx context.Context
	cancel     context.CancelFunc
	polling    bool
}

// Connect authorises token against the Bot API.
func Connect(token string, httpClient *http.Client) (*tgbotapi.BotAPI, error) {
	if httpClient == nil {
		httpClient = webclient.NewDefault(90 * time.Second)
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("bot: authorise: %w", err)
	}
	return api, nil
}

// NewModule wires a bot. An empty webhookURL selects long polling.
func NewModule(name, webhookURL string, api API, router *Router, deps Deps) *Module {
	if deps.States == nil {
		deps.States = fsm.NewMemoryStore(0)
	}
	if deps.Tracker == nil {
		deps.Tracker = tracking.Nop{}
	}
	if deps.HTTP == nil {
		deps.HTTP = webclient.NewDefault(0)
	}
	return &Module{
		name:       name,
		webhookURL: webhookURL,
		api:        api,
		router:     router,
		states:     deps.States,
		tracker:    deps.Tracker,
		http:       deps.HTTP,
	}
}

// Name implements core.Module.
func (m *Module) Name() string { return m.name }

// Webhook reports the registered URL, or "" when polling.
func (m *Module) Webhook() string { return m.webhookURL }

// Start registers the webhook or starts the polling loop.
func (m *Module) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	runtimeCtx, cancel := context.WithCancel(ctx)
	m.runtimeCtx, m.cancel = runtimeCtx, cancel

	if m.webhookURL != "" {
		wh, err := tgbotapi.NewWebhook(m.webhookURL)
		if err != nil {
			cancel()
			return fmt.Errorf("%s: webhook url: %w", m.name, err)
		}
		wh.DropPendingUpdates = true
		wh.AllowedUpdates = []string{"message", "callback_query"}
		if _, err := m.api.Request(wh); err != nil {
			cancel()
			return fmt.Errorf("%s: set webhook: %w", m.name, err)
		}
		log.Printf("%s: webhook active on %s", m.name, wh.URL.Host)
		return nil
	}

	if _, err := m.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		log.Printf("%s: delete webhook: %v", m.name, err)
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := m.api.GetUpdatesChan(u)
	m.polling = true
	go func() {
		for {
			select {
			case <-runtimeCtx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				m.HandleUpdate(upd)
			}
		}
	}()
	log.Printf("%s: long polling started", m.name)
	return nil
}

// HandleUpdate processes upd in its own goroutine.
func (m *Module) HandleUpdate(upd tgbotapi.Update) {
	m.mu.Lock()
	parent := m.runtimeCtx
	m.mu.Unlock()
	if parent == nil {
		parent = context.Background()
	}
	if parent.Err() != nil {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(parent, handlerTimeout)
		defer cancel()
		m.process(ctx, upd)
	}()
}

func (m *Module) process(ctx context.Context, upd tgbotapi.Update) {
	c := newContext(ctx, m, uuid.NewString()[:8], upd)
	defer func() {
		if r := recover(); r != nil {
			c.Logf("panic: %v", r)
		}
	}()
	if c.Message == nil {
		return
	}

	if c.From != nil {
		tracking.Record(m.tracker, tracking.User{ID: c.From.ID, Username: c.From.UserName, FirstName: c.From.FirstName})
	}
	if st, err := m.states.Get(ctx, c.StateKey()); err != nil {
		c.Logf("state lookup: %v", err)
	} else {
		c.State = st
	}

	route, matched, err := m.router.Dispatch(c)
	switch {
	case !matched:
		c.Logf("no route for update %d", upd.UpdateID)
	case err != nil:
		c.Logf("%s: %v", route, err)
		c.Reply(failureReply, nil)
	}
	c.AnswerCallback("")
}

// Wait blocks until in-flight updates finish or ctx ends.
func (m *Module) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Stop cancels in-flight work and waits for handlers to return.
func (m *Module) Stop(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	if m.polling {
		m.api.StopReceivingUpdates()
		m.polling = false
	}
	m.mu.Unlock()

	m.Wait(ctx)
	log.Printf("%s: stopped", m.name)
}
