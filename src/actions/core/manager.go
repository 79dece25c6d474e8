// Package core holds the lifecycle contract shared by every bot module.
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Module is a self-contained bot that can be started and stopped.
type Module interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context)
}

// Manager coordinates the lifecycle of all registered modules. A module that
// fails to start is skipped; the rest keep running.
type Manager struct {
	modules []Module
	running []Module
	mu      sync.Mutex
	started bool
}

func NewManager(mods ...Module) *Manager {
	return &Manager{modules: mods}
}

// Add registers additional modules before Start is invoked.
func (m *Manager) Add(mod Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("core: cannot add %s after start", mod.Name())
	}
	m.modules = append(m.modules, mod)
	return nil
}

// Start starts every module in order. Failures are joined into the returned
// error; the error is non-nil only when at least one module failed.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("core: manager already started")
	}

	var errs []error
	for _, mod := range m.modules {
		if mod == nil {
			continue
		}
		if err := mod.Start(ctx); err != nil {
			log.Printf("core: %s failed to start: %v", mod.Name(), err)
			errs = append(errs, fmt.Errorf("module %s: %w", mod.Name(), err))
			continue
		}
		m.running = append(m.running, mod)
	}
	m.started = true
	return errors.Join(errs...)
}

// Running lists the modules that started successfully.
func (m *Manager) Running() []Module {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Module(nil), m.running...)
}

// Stop shuts down running modules in reverse order.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.running) - 1; i >= 0; i-- {
		m.running[i].Stop(ctx)
	}
	m.running = nil
	m.started = false
}
