package actions

import (
	"context"
	"crypto/subtle"
	"sort"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/actions/bot"
	"github.com/teambots/teambots/src/actions/core"
)

type (
	// Manager re-exports core.Manager for consumers outside the actions package.
	Manager = core.Manager
	// Module re-exports the core.Module interface.
	Module = core.Module
)

// Fleet is the set of running bots, addressable by name for webhook delivery.
type Fleet struct {
	mgr     *Manager
	bots    map[string]*bot.Module
	secrets map[string]string
}

func newFleet(mgr *Manager, secrets map[string]string) *Fleet {
	f := &Fleet{mgr: mgr, bots: make(map[string]*bot.Module), secrets: secrets}
	for _, mod := range mgr.Running() {
		if b, ok := mod.(*bot.Module); ok {
			f.bots[b.Name()] = b
		}
	}
	return f
}

// Names lists running bots, sorted.
func (f *Fleet) Names() []string {
	names := make([]string, 0, len(f.bots))
	for name := range f.bots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deliver hands a webhook update to the named bot. It reports false for an
// unknown or stopped bot and for a wrong secret.
func (f *Fleet) Deliver(name, secret string, upd tgbotapi.Update) bool {
	b, ok := f.bots[name]
	if !ok {
		return false
	}
	want := f.secrets[name]
	if want == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(want)) != 1 {
		return false
	}
	b.HandleUpdate(upd)
	return true
}

// Stop shuts every bot down.
func (f *Fleet) Stop(ctx context.Context) {
	f.mgr.Stop(ctx)
}
