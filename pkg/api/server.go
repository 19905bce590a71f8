// Package api serves the raffle signup pages, the JSON and export endpoints
// and Prometheus metrics over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// StartServer listens on config.Bind:config.Port and serves until ctx is
// cancelled, then shuts down gracefully
func StartServer(ctx context.Context, svc RecordService, config ServerConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	server := NewServer(svc, config, NewMetrics(reg), logger)

	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return server.Serve(ctx, ln)
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	m := s.metrics
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.sugar.Desugar()))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", m.Handler())
	r.Get("/health", m.InstrumentHandler("GET", "/health", s.handleHealth))

	// Pages
	r.Get("/", m.InstrumentHandler("GET", "/", s.handleIndex))
	r.Get("/success.html", m.InstrumentHandler("GET", "/success.html", s.handleSuccess))
	r.Post("/signup", m.InstrumentHandler("POST", "/signup", s.handleSignup))
	r.Get("/records", m.InstrumentHandler("GET", "/records", s.handleListRecords))
	r.Get("/records/{id}", m.InstrumentHandler("GET", "/records/{id}", s.handleShowRecord))
	r.Post("/records/{id}", m.InstrumentHandler("POST", "/records/{id}", s.handleUpdateRecord))
	r.Get("/raffle", m.InstrumentHandler("GET", "/raffle", s.handleRaffle))
	r.Get("/raffle/{id}", m.InstrumentHandler("GET", "/raffle/{id}", s.handleRaffleByID))

	// Data
	r.Get("/registrations", m.InstrumentHandler("GET", "/registrations", s.handleRegistrations))
	r.Get("/export.csv", m.InstrumentHandler("GET", "/export.csv", s.handleExportCSV))
	r.Get("/export.xlsx", m.InstrumentHandler("GET", "/export.xlsx", s.handleExportXLSX))
	r.Delete("/records/{id}", m.InstrumentHandler("DELETE", "/records/{id}", s.handleDeleteRecord))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, http.StatusNotFound, "page not found")
	})

	return r
}

// Serve handles connections on ln until ctx is cancelled, then waits up to
// ShutdownTimeout for in-flight requests
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	go s.startMetricsUpdater(done)

	errCh := make(chan error, 1)
	go func() {
		s.sugar.Infow("starting raffle server", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.sugar.Infow("shutting down raffle server", "timeout", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}
