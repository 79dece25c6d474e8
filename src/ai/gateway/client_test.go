package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teambots/teambots/src/ai/core"
)

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		"http://gw:3000/v1":                   "http://gw:3000/v1/",
		"http://gw:3000/v1/":                  "http://gw:3000/v1/",
		"http://gw:3000/v1/chat/completions":  "http://gw:3000/v1/",
		"http://gw:3000/v1/chat/completions/": "http://gw:3000/v1/",
	}
	for in, want := range cases {
		if got := BaseURL(in); got != want {
			t.Errorf("BaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRespondPostsChatCompletion(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"llama-3.3-70b",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"план готов"}}]}`))
	}))
	defer srv.Close()

	c, err := core.NewClient(core.FactoryConfig{
		Provider:    "gateway",
		BaseURL:     srv.URL + "/v1",
		APIKey:      "sk-test",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := c.Respond(context.Background(), core.Request{System: "ты PM", User: "идея"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if resp.Content != "план готов" || resp.Model != "llama-3.3-70b" {
		t.Fatalf("resp = %+v", resp)
	}
	if got.Model != core.AutoModel {
		t.Errorf("model sent = %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "идея" {
		t.Errorf("messages sent = %+v", got.Messages)
	}
	if got.Temperature != 0.7 {
		t.Errorf("temperature sent = %v", got.Temperature)
	}
}

func TestRespondFailsOnNon2xx(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, `{"error":{"message":"upstream down"}}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := core.NewClient(core.FactoryConfig{Provider: "gateway", BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Respond(context.Background(), core.Request{User: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if hits != 1 {
		t.Errorf("gateway hit %d times, want exactly 1", hits)
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	if _, err := core.NewClient(core.FactoryConfig{Provider: "gateway", APIKey: "k"}); err == nil {
		t.Error("expected error without base URL")
	}
	if _, err := core.NewClient(core.FactoryConfig{Provider: "gateway", BaseURL: "http://x"}); err == nil {
		t.Error("expected error without API key")
	}
}
