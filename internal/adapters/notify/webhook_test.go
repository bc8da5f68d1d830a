package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "warwatch/internal/platform/errors"
)

func TestWebhookDeliver(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	if err := wh.Deliver(context.Background(), "war has started"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if got.Content != "war has started" {
		t.Fatalf("content = %q", got.Content)
	}
}

func TestWebhookDeliverNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Deliver(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error on 502")
	}
	if got := perr.CodeOf(err); got != perr.ErrorCodeUnavailable {
		t.Fatalf("code = %v, want unavailable", got)
	}
}

func TestStdoutNeverFails(t *testing.T) {
	if err := NewStdout().Deliver(context.Background(), "anything"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}
