package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/polyglot"
	"github.com/dmitrymomot/polyglot/middlewares"
	"github.com/dmitrymomot/polyglot/pkg/health"
	"github.com/dmitrymomot/polyglot/pkg/logger"
)

// Server exposes a polyglot Service over HTTP.
type Server struct {
	svc    *polyglot.Service
	router chi.Router
	logger *slog.Logger
	checks health.Checks

	scheduler      *Scheduler
	reloadSchedule string

	address         string
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
	shutdownHooks   []func(context.Context) error

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server for svc. The source readiness check is always
// registered.
func New(svc *polyglot.Service, opts ...Option) (*Server, error) {
	s := &Server{
		svc:             svc,
		logger:          logger.NewNope(),
		checks:          health.Checks{"source": svc.Healthcheck},
		address:         defaultAddress,
		requestTimeout:  defaultRequestTimeout,
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.reloadSchedule != "" {
		sched, err := NewScheduler(s.reloadSchedule, s.reload, s.logger)
		if err != nil {
			return nil, err
		}
		s.scheduler = sched
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the address the server listens on, or an empty string before
// Run has bound it.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(
		middlewares.RequestID(),
		middlewares.Logger(s.logger),
		middlewares.Recover(middlewares.WithRecoverLogger(s.logger)),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middlewares.DefaultErrorHandler(w, r, &middlewares.HTTPError{
			Status: http.StatusNotFound,
			Err:    errors.New(http.StatusText(http.StatusNotFound)),
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middlewares.DefaultErrorHandler(w, r, &middlewares.HTTPError{
			Status: http.StatusMethodNotAllowed,
			Err:    errors.New(http.StatusText(http.StatusMethodNotAllowed)),
		})
	})

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(s.checks, health.WithLogger(s.logger)))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middlewares.Timeout(s.requestTimeout, middlewares.WithTimeoutLogger(s.logger)))

		r.With(middlewares.Language(s.svc, middlewares.WithLanguageLogger(s.logger))).
			Get("/text", s.handleText)
		r.Get("/chain", s.handleChain)
		r.Post("/reset", s.handleReset)
		r.Get("/cache", s.handleCacheInfo)
		r.Delete("/cache", s.handleClearCache)
	})

	return r
}

func (s *Server) reload() {
	s.svc.Reset()
	s.logger.Info("scheduled language source reset")
}

// Run listens on the configured address and serves until ctx is done or the
// server fails. It then shuts the HTTP server down and runs the shutdown
// hooks, in registration order, within the shutdown timeout.
//
// Returns nil on clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if s.scheduler != nil {
		g.Go(func() error {
			return s.scheduler.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(srv)
	})

	return g.Wait()
}

func (s *Server) shutdown(srv *http.Server) error {
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error

	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	for _, hook := range s.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			s.logger.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		s.logger.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	s.logger.Info("shutdown completed")
	return nil
}
