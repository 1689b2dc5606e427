// Package server exposes the calculator over a read-only JSON API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/liftcalc/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Server holds the state snapshot that every request is evaluated against.
type Server struct {
	snapshot model.AppState
	formulas []model.Formula
	shareURL string
	router   chi.Router
}

// New creates a Server with all routes configured. The snapshot is copied and
// never written back.
func New(snapshot model.AppState, formulas []model.Formula, shareURL string) *Server {
	s := &Server{
		snapshot: snapshot.Clone(),
		formulas: append([]model.Formula(nil), formulas...),
		shareURL: shareURL,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging)
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/calculate", s.handleCalculate)
		r.Get("/warmup", s.handleWarmup)
		r.Get("/plates", s.handlePlates)
		r.Get("/state", s.handleState)
	})
}

// Serve runs the API on l until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(l)
	}()
	log.Infof("api listening on %s", l.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("api stopped")
	return nil
}
