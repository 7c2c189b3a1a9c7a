package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSend(t *testing.T) {
	t.Parallel()

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := New(srv.URL)
	if err := ch.Send(context.Background(), "Subject line", "body text"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["text"] != "*Subject line*\nbody text" {
		t.Errorf("text = %q", got["text"])
	}
}

func TestSendNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no_service"))
	}))
	defer srv.Close()

	err := New(srv.URL).Send(context.Background(), "s", "b")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "no_service") {
		t.Errorf("error = %v, want status and body included", err)
	}
}

func TestSendEmptyURLNoop(t *testing.T) {
	t.Parallel()

	if err := New("").Send(context.Background(), "s", "b"); err != nil {
		t.Fatalf("Send with empty URL: %v", err)
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	if got := New("").Name(); got != "slack" {
		t.Errorf("Name = %q, want slack", got)
	}
}
