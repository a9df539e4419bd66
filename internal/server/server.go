package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ucmodeler/internal/config"
	"ucmodeler/internal/database"
	"ucmodeler/internal/handlers"
	"ucmodeler/internal/metrics"
	"ucmodeler/internal/middlewares"
	"ucmodeler/internal/render"
	"ucmodeler/internal/repositories"
	"ucmodeler/internal/responses"
	"ucmodeler/internal/routes"
	"ucmodeler/internal/services"
	"ucmodeler/internal/web"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
)

type Server struct {
	cfg      *config.Config
	log      zerolog.Logger
	sessions repositories.SessionRepository
	registry *database.Registry
	handler  http.Handler
}

// Options carries the pieces main decides on; tests replace the opener.
type Options struct {
	Sessions repositories.SessionRepository
	Open     database.OpenFunc
}

func New(cfg *config.Config, log zerolog.Logger, opts Options) (*Server, error) {
	dialect, err := database.DialectFor(cfg.WarehouseDriver)
	if err != nil {
		return nil, err
	}

	open := opts.Open
	if open == nil {
		open = database.Opener(dialect, database.Options{
			PostgresUser: cfg.PostgresUser,
			UserAgent:    "ucmodeler",
		})
	}

	sessionRepo := opts.Sessions
	if sessionRepo == nil {
		sessionRepo = repositories.NewMemorySessionRepository(cfg.SessionTTL)
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		sessions: sessionRepo,
		registry: database.NewRegistry(open, cfg.SessionTTL, log),
	}

	m := metrics.New()

	// Dependency injection
	graphviz := render.NewGraphviz(cfg.GraphvizDot)
	network := render.NewNetwork()
	primary := render.Select(graphviz, network, log)

	runner := services.NewStatementRunner(m, log)
	schemaService := services.NewSchemaService(m)
	erdService := services.NewERDService(schemaService, primary, graphviz, network, m, log)
	sessionService := services.NewSessionService(cfg.Databricks, dialect, s.registry, runner, log)
	tableService := services.NewTableService(runner)
	designService := services.NewDesignService(dialect, schemaService, runner)
	queryService := services.NewQueryService(runner)

	h := routes.Handlers{
		Session: handlers.NewSessionHandler(sessionService),
		Schema:  handlers.NewSchemaHandler(schemaService, erdService),
		Table:   handlers.NewTableHandler(tableService, sessionService),
		Design:  handlers.NewDesignHandler(designService, erdService, sessionService),
		Query:   handlers.NewQueryHandler(queryService),
	}

	cookies := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cookies.Options.Path = "/"
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode

	if cfg.Level() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		responses.Fail(c, http.StatusInternalServerError, nil, "Internal server error")
		c.Abort()
	}), middlewares.RequestLogger(log, "/healthz", "/metrics"))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes.RegisterRoutes(router, h,
		middlewares.Session(cookies, sessionRepo, cfg.SessionTTL, log),
		middlewares.RequireConnection(sessionService),
	)
	web.Register(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.NoRoute(func(c *gin.Context) {
		responses.Fail(c, http.StatusNotFound, nil, "Not found")
	})

	reg := metrics.Registry(append(m.Collectors(), metrics.PoolsOpen(s.registry.Len))...)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	s.handler = router

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) httpServer(ctx context.Context) *http.Server {
	// Requests outlive the signal so Shutdown can drain them.
	base := context.WithoutCancel(ctx)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
		// Diagram rendering and warehouse statements can be slow.
		WriteTimeout: 2 * time.Minute,
		BaseContext:  func(_ net.Listener) context.Context { return base },
	}
}

// Run serves HTTP and sweeps idle sessions and pools until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := s.httpServer(ctx)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		s.sweep(egctx)
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		s.log.Info().Msg("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if cerr := s.registry.Close(); cerr != nil {
			s.log.Warn().Err(cerr).Msg("closing warehouse pools")
		}
		return err
	})

	return eg.Wait()
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sessions.Sweep(ctx)
			if err != nil {
				s.log.Warn().Err(err).Msg("sweeping sessions")
			}
			pools := s.registry.Sweep()
			if n > 0 || pools > 0 {
				s.log.Debug().Int("sessions", n).Int("pools", pools).Msg("expired idle state")
			}
		}
	}
}
