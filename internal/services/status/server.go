// Package status exposes the monitor's read model over a small HTTP surface:
// GET /healthz for liveness (store reachability) and GET /status for the
// tracked state, ledger size and poll freshness
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"warwatch/internal/core/version"
	"warwatch/internal/platform/config"
	perr "warwatch/internal/platform/errors"
	"warwatch/internal/platform/logger"
	"warwatch/internal/platform/net/middleware"
	"warwatch/internal/services/monitor/domain"
)

// Deps are the collaborators the surface reads from
type Deps struct {
	// Reader serves the monitor read model
	Reader domain.ReaderPort

	// Guard reports store reachability for /healthz
	Guard func(context.Context) error
}

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *http.Server
	log  logger.Logger
}

// NewServer builds the status server. The listen port comes from
// STATUS_PORT (default 4600)
func NewServer(cfg config.Conf, deps Deps) *Server {
	addr := ":" + cfg.Prefix("STATUS_").MayString("PORT", "4600")

	m := chi.NewRouter()
	m.Use(middleware.RecoverJSON)
	m.Use(middleware.AccessLog(middleware.AccessLogOptions{Slow: time.Second}))
	m.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
		MaxAge:         300,
	}))
	mountRoutes(m, deps)

	return &Server{
		addr: addr,
		mux:  m,
		srv: &http.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: *logger.Named("status"),
	}
}

func mountRoutes(m *chi.Mux, deps Deps) {
	m.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Guard != nil {
			if err := deps.Guard(r.Context()); err != nil {
				writeError(w, perr.Wrap(err, perr.ErrorCodeUnavailable, "store unreachable"))
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": version.Info()})
	})

	m.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		view, err := deps.Reader.Status(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	})
}

// Handler exposes the mux for tests
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run starts the server and blocks until it is shut down
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Str("addr", s.addr).Msg("status listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code, wire := perr.HTTP(err)
	writeJSON(w, code, wire)
}
