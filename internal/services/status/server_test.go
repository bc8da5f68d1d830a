package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"warwatch/internal/platform/config"
	"warwatch/internal/services/monitor/domain"
)

type fakeReader struct {
	view domain.StatusView
	err  error
}

func (f fakeReader) Status(context.Context) (domain.StatusView, error) { return f.view, f.err }

func TestHealthzOK(t *testing.T) {
	srv := NewServer(config.New(), Deps{
		Reader: fakeReader{},
		Guard:  func(context.Context) error { return nil },
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestHealthzStoreDown(t *testing.T) {
	srv := NewServer(config.New(), Deps{
		Reader: fakeReader{},
		Guard:  func(context.Context) error { return errors.New("no pong") },
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz status = %d, want 503", rec.Code)
	}
}

func TestStatusView(t *testing.T) {
	now := time.Date(2025, 8, 13, 7, 0, 0, 0, time.UTC)
	srv := NewServer(config.New(), Deps{
		Reader: fakeReader{view: domain.StatusView{
			Clan:              "#AAA",
			WarState:          domain.WarStateInWar,
			RaidActive:        true,
			LedgerSize:        7,
			LastLifecyclePoll: now,
			RateRemaining:     22,
		}},
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got domain.StatusView
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Clan != "#AAA" || got.WarState != domain.WarStateInWar || got.LedgerSize != 7 || got.RateRemaining != 22 {
		t.Fatalf("view mismatch: %+v", got)
	}
}

func TestStatusReaderError(t *testing.T) {
	srv := NewServer(config.New(), Deps{Reader: fakeReader{err: errors.New("db gone")}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
