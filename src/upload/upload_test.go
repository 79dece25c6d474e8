package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("X-Auth-Key") != "secret" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "<html>diff</html>" {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"url":"https://reports.example/r/abc.html"}`))
	}))
	defer srv.Close()

	link, err := New(srv.URL, "secret", srv.Client()).HTML(context.Background(), "<html>diff</html>")
	if err != nil {
		t.Fatal(err)
	}
	if link != "https://reports.example/r/abc.html" {
		t.Errorf("link = %s", link)
	}

	if _, err := New(srv.URL, "wrong", srv.Client()).HTML(context.Background(), "<html>diff</html>"); err == nil {
		t.Error("expected error on 403")
	}
}

func TestHTMLNotConfigured(t *testing.T) {
	_, err := New("", "", nil).HTML(context.Background(), "x")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}
}
