package brain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teambots/teambots/src/ai/core"
	"github.com/teambots/teambots/src/config"
)

type fakeProvider struct {
	name  string
	calls atomic.Int32
	resp  core.Response
	err   error
	panic bool
	last  core.Request
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Respond(_ context.Context, req core.Request) (core.Response, error) {
	f.calls.Add(1)
	f.last = req
	if f.panic {
		panic("boom")
	}
	return f.resp, f.err
}

func gatewayServer(t *testing.T, status int, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if status != http.StatusOK {
			http.Error(w, "upstream down", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"llama-3.3-70b",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"план готов"}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func brainConfig(baseURL string) config.Brain {
	return config.Brain{
		GatewayBaseURL: baseURL,
		GatewayAPIKey:  "sk-test",
		GatewayModel:   "auto",
		Temperature:    0.7,
		Timeout:        5 * time.Second,
	}
}

func TestCompleteGateway(t *testing.T) {
	var hits atomic.Int32
	srv := gatewayServer(t, http.StatusOK, &hits)

	c := New(brainConfig(srv.URL+"/v1"), srv.Client())
	res := c.Complete(context.Background(), "ты PM", "идея", "")

	if res.Source != Gateway {
		t.Fatalf("source = %s", res.Source)
	}
	if res.Content != "план готов" || res.Model != "llama-3.3-70b" {
		t.Errorf("result = %+v", res)
	}
	if hits.Load() != 1 {
		t.Errorf("gateway hits = %d", hits.Load())
	}
}

func TestCompleteFallsBackToBackup(t *testing.T) {
	var hits atomic.Int32
	srv := gatewayServer(t, http.StatusBadGateway, &hits)

	c := New(brainConfig(srv.URL+"/v1"), srv.Client())
	backup := &fakeProvider{name: "gemini", resp: core.Response{Content: "резервный ответ", Model: "gemma-3-27b-it"}}
	c.backup = backup

	res := c.Complete(context.Background(), "sys", "user", "gpt-4o")
	if res.Source != Backup || res.Content != "резервный ответ" || res.Model != "gemma-3-27b-it" {
		t.Fatalf("result = %+v", res)
	}
	if hits.Load() != 1 {
		t.Errorf("gateway should be tried exactly once, got %d", hits.Load())
	}
	if backup.last.Model != "" {
		t.Errorf("backup should not receive the gateway hint, got %q", backup.last.Model)
	}
	if backup.last.System != "sys" || backup.last.User != "user" {
		t.Errorf("backup request = %+v", backup.last)
	}
}

func TestCompleteSkipsUnconfiguredGateway(t *testing.T) {
	backup := &fakeProvider{name: "gemini", resp: core.Response{Content: "ok", Model: "gemini-1.5-flash"}}
	c := New(config.Brain{Timeout: time.Second}, nil)
	if gw, _ := c.Configured(); gw {
		t.Fatal("gateway should be unconfigured")
	}
	c.backup = backup

	res := c.Complete(context.Background(), "sys", "user", "")
	if res.Source != Backup {
		t.Fatalf("source = %s", res.Source)
	}
}

func TestCompleteDead(t *testing.T) {
	cases := map[string]*Client{
		"nothing configured": NewWithClients(nil, nil, Options{}),
		"both fail": NewWithClients(
			&fakeProvider{name: "gateway", err: errors.New("dial tcp: refused")},
			&fakeProvider{name: "gemini", err: errors.New("quota")},
			Options{},
		),
		"empty content": NewWithClients(
			&fakeProvider{name: "gateway", resp: core.Response{Content: "  "}},
			nil,
			Options{},
		),
		"provider panics": NewWithClients(&fakeProvider{name: "gateway", panic: true}, nil, Options{}),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			res := c.Complete(context.Background(), "sys", "user", "")
			if res.Source != Dead {
				t.Fatalf("source = %s", res.Source)
			}
			if res.Content == "" {
				t.Error("dead result must carry a placeholder")
			}
		})
	}
}

func TestCompleteHonoursCancellation(t *testing.T) {
	primary := &fakeProvider{name: "gateway", err: context.Canceled}
	backup := &fakeProvider{name: "gemini", resp: core.Response{Content: "late"}}
	c := NewWithClients(primary, backup, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Complete(ctx, "sys", "user", "")
	if res.Source != Dead {
		t.Fatalf("source = %s", res.Source)
	}
	if backup.calls.Load() != 0 {
		t.Error("backup should not run after cancellation")
	}
}

func TestCompleteDefaultsHintAndModel(t *testing.T) {
	primary := &fakeProvider{name: "gateway", resp: core.Response{Content: "x"}}
	c := NewWithClients(primary, nil, Options{Temperature: 0.3})

	res := c.Complete(context.Background(), "sys", "user", " ")
	if primary.last.Model != core.AutoModel {
		t.Errorf("hint = %q", primary.last.Model)
	}
	if primary.last.Temperature != 0.3 {
		t.Errorf("temperature = %v", primary.last.Temperature)
	}
	if res.Model != core.AutoModel {
		t.Errorf("model = %q", res.Model)
	}
	if got := res.Footer(); got != "auto | Gateway" {
		t.Errorf("footer = %q", got)
	}
}
