// Package fsm keeps per-chat, per-user conversation state for multi-step dialogs.
package fsm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an abandoned dialog lingers.
const DefaultTTL = 24 * time.Hour

// State is the current step plus the answers collected so far.
type State struct {
	Step string            `json:"step"`
	Data map[string]string `json:"data,omitempty"`
}

// Empty reports whether the user is outside any dialog.
func (s State) Empty() bool { return s.Step == "" }

// With returns a copy with key set, leaving s untouched.
func (s State) With(key, value string) State {
	data := make(map[string]string, len(s.Data)+1)
	for k, v := range s.Data {
		data[k] = v
	}
	data[key] = value
	return State{Step: s.Step, Data: data}
}

// Key addresses one dialog: a user talking to a bot in a chat.
type Key struct {
	Bot  string
	Chat int64
	User int64
}

func (k Key) String() string {
	return "fsm:" + k.Bot + ":" + strconv.FormatInt(k.Chat, 10) + ":" + strconv.FormatInt(k.User, 10)
}

// Store persists State by Key.
type Store interface {
	Get(ctx context.Context, k Key) (State, error)
	Set(ctx context.Context, k Key, st State) error
	Clear(ctx context.Context, k Key) error
}

// RedisStore keeps state as JSON under fsm:<bot>:<chat>:<user>.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, k Key) (State, error) {
	raw, err := r.rdb.Get(ctx, k.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("fsm: get: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("fsm: decode: %w", err)
	}
	return st, nil
}

func (r *RedisStore) Set(ctx context.Context, k Key, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("fsm: encode: %w", err)
	}
	if err := r.rdb.Set(ctx, k.String(), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("fsm: set: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, k Key) error {
	if err := r.rdb.Del(ctx, k.String()).Err(); err != nil {
		return fmt.Errorf("fsm: clear: %w", err)
	}
	return nil
}

type memEntry struct {
	state   State
	expires time.Time
}

// MemoryStore is the process-local fallback when no Redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, entries: make(map[string]memEntry)}
}

func (m *MemoryStore) Get(_ context.Context, k Key) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[k.String()]
	if !ok {
		return State{}, nil
	}
	if time.Now().After(e.expires) {
		delete(m.entries, k.String())
		return State{}, nil
	}
	return e.state, nil
}

func (m *MemoryStore) Set(_ context.Context, k Key, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[k.String()] = memEntry{state: st, expires: time.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, k Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, k.String())
	return nil
}
