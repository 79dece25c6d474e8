package actions

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/teambots/teambots/src/actions/aiteam"
	"github.com/teambots/teambots/src/actions/bot"
	"github.com/teambots/teambots/src/actions/core"
	"github.com/teambots/teambots/src/actions/nezabudka"
	"github.com/teambots/teambots/src/actions/persona"
	"github.com/teambots/teambots/src/actions/prozrenie"
	"github.com/teambots/teambots/src/actions/staff"
	"github.com/teambots/teambots/src/actions/zifiles"
	"github.com/teambots/teambots/src/ai/consilium"
	"github.com/teambots/teambots/src/brain"
	"github.com/teambots/teambots/src/config"
	"github.com/teambots/teambots/src/fsm"
	"github.com/teambots/teambots/src/prompts"
	"github.com/teambots/teambots/src/sheets"
	"github.com/teambots/teambots/src/tasks"
	"github.com/teambots/teambots/src/tracking"
)

const Skeptic = "skeptic"

// BotNames is the fleet in start order.
var BotNames = []string{aiteam.Name, Skeptic, staff.Name, prozrenie.Name, nezabudka.Name, zifiles.Name}

// Deps are the shared services every bot draws from.
type Deps struct {
	Brain    brain.Completer
	Prompts  *prompts.Resolver
	Pipeline *consilium.Pipeline
	States   fsm.Store
	Tracker  tracking.Tracker
	Tasks    tasks.Store
	Sheet    sheets.Appender
	Uploader zifiles.Uploader
	HTTP     *http.Client

	Consilium config.Consilium
	Staff     config.Staff
	Files     config.Files
	Admins    []int64

	// PublicBaseURL switches every bot to webhooks when set.
	PublicBaseURL string
}

// Connector authorises a bot token.
type Connector func(token string, httpClient *http.Client) (bot.API, error)

// Connect is the production Connector.
func Connect(token string, httpClient *http.Client) (bot.API, error) {
	return bot.Connect(token, httpClient)
}

// Router builds the routes of the named bot.
func Router(name string, d Deps) (*bot.Router, error) {
	r := bot.NewRouter()
	switch name {
	case aiteam.Name:
		engine := consilium.NewEngine(d.Brain, d.Prompts, d.Pipeline)
		aiteam.New(engine, d.Consilium.Cooldown, d.Consilium.Trigger).Register(r)
	case Skeptic:
		persona.New(persona.Skeptic, d.Brain, d.Prompts).Register(r)
	case staff.Name:
		staff.New(d.Brain, d.Prompts, d.Staff, d.Sheet).Register(r)
	case prozrenie.Name:
		prozrenie.New(d.Brain, d.Prompts).Register(r)
	case nezabudka.Name:
		store := d.Tasks
		if store == nil {
			store = tasks.NewMemoryStore()
		}
		nezabudka.New(d.Brain, d.Prompts, store, d.Tracker, d.Admins).Register(r)
	case zifiles.Name:
		zifiles.New(d.Brain, d.Prompts, d.Uploader, d.Files).Register(r)
	default:
		return nil, fmt.Errorf("actions: unknown bot %q", name)
	}
	return r, nil
}

// StartAll connects every enabled bot with a token and starts them. A bot
// that cannot connect or start is logged and left out of the fleet.
func StartAll(ctx context.Context, d Deps, connect Connector) (*Fleet, error) {
	if connect == nil {
		connect = Connect
	}
	mgr := core.NewManager()
	shared := bot.Deps{States: d.States, Tracker: d.Tracker, HTTP: d.HTTP}
	secrets := make(map[string]string)

	for _, name := range BotNames {
		cfg := config.LoadBot(name)
		switch {
		case !cfg.Enabled:
			log.Printf("actions: %s disabled via configuration", name)
			continue
		case cfg.Token == "":
			log.Printf("actions: %s skipped, no token", name)
			continue
		}

		router, err := Router(name, d)
		if err != nil {
			return nil, err
		}
		api, err := connect(cfg.Token, d.HTTP)
		if err != nil {
			log.Printf("actions: %s: %v", name, err)
			continue
		}
		webhook := ""
		if d.PublicBaseURL != "" {
			webhook = d.PublicBaseURL + cfg.WebhookPath
		}
		if err := mgr.Add(bot.NewModule(name, webhook, api, router, shared)); err != nil {
			return nil, fmt.Errorf("actions: add %s: %w", name, err)
		}
		secrets[name] = cfg.WebhookSecret
	}

	if err := mgr.Start(ctx); err != nil {
		log.Printf("actions: some bots failed to start: %v", err)
	}
	fleet := newFleet(mgr, secrets)
	log.Printf("actions: %d bot(s) running: %v", len(fleet.bots), fleet.Names())
	return fleet, nil
}
