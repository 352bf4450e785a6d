// Package api exposes the cleaning pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapclean/internal/session"
	"github.com/leapstack-labs/leapclean/internal/state"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

const cookieName = "leapclean"

// Config holds configuration for the API server.
type Config struct {
	Sessions      *session.Store
	History       state.HistoryStore
	Advisor       core.Advisor
	Port          int
	SessionSecret string
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// Server is the HTTP front of the cleaning pipeline. Mutating
// handlers serialize on one mutex: datasets are single-writer.
type Server struct {
	sessions *session.Store
	history  state.HistoryStore
	advisor  core.Advisor
	cookies  *sessions.CookieStore
	port     int
	sweep    time.Duration
	logger   *slog.Logger

	mu sync.Mutex
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	cookieStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cookieStore.MaxAge(86400 * 7)
	cookieStore.Options.Path = "/"
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	adv := cfg.Advisor
	if adv == nil {
		adv = noAdvisor{}
	}

	return &Server{
		sessions: cfg.Sessions,
		history:  cfg.History,
		advisor:  adv,
		cookies:  cookieStore,
		port:     cfg.Port,
		sweep:    cfg.SweepInterval,
		logger:   logger,
	}
}

// Routes builds the router. Split out from Serve so tests can drive
// handlers through httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Get("/sessions", s.handleListSessions)
	r.Delete("/sessions/{session}", s.handleDeleteSession)
	r.Get("/info/{session}", s.handleInfo)
	r.Post("/clean/drop", s.handleDropColumns)
	r.Get("/suggestions/{domain}/{session}", s.handleSuggestions)
	r.Post("/clean/{domain}", s.handleClean)
	r.Get("/analysis/univariate/{session}", s.handleUnivariate)
	r.Get("/analysis/bivariate/{session}", s.handleBivariate)
	r.Get("/log/{session}", s.handleLog)
	r.Get("/export/notebook/{session}", s.handleExportNotebook)
	r.Get("/export/csv/{session}", s.handleExportCSV)
	r.Post("/advise", s.handleAdvise)

	return r
}

// Serve starts the API server and blocks until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.sweep > 0 {
		eg.Go(func() error {
			s.sessions.Janitor(egctx, s.sweep)
			return nil
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// noAdvisor stands in when no advisor is configured.
type noAdvisor struct{}

func (noAdvisor) Validate(context.Context, string, string, []string, map[string]any) (*core.Advisory, error) {
	return nil, &core.AdvisoryUnavailableError{Cause: fmt.Errorf("no advisor configured")}
}
