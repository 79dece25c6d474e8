package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teambots/teambots/src/ai/core"
)

func TestRespondSendsCombinedPrompt(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemma-3-27b-it:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"резервный ответ"}]}}],"modelVersion":"gemma-3-27b-it"}`))
	}))
	defer srv.Close()

	c, err := New(core.FactoryConfig{APIKey: "g-key", BaseURL: srv.URL, Model: "gemma-3-27b-it", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.Respond(context.Background(), core.Request{System: "ты критик", User: "продавать снег"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if resp.Content != "резервный ответ" || resp.Model != "gemma-3-27b-it" {
		t.Fatalf("resp = %+v", resp)
	}
	if !strings.Contains(body, `ты критик\n\nпродавать снег`) {
		t.Errorf("combined prompt missing from body: %s", body)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(core.FactoryConfig{}); err == nil {
		t.Fatal("expected error without key")
	}
}
