package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/uilayers/internal/api/http"
	"github.com/GriffinCanCode/uilayers/internal/api/middleware"
	"github.com/GriffinCanCode/uilayers/internal/api/ws"
	"github.com/GriffinCanCode/uilayers/internal/domain/frame"
	"github.com/GriffinCanCode/uilayers/internal/domain/registry"
	"github.com/GriffinCanCode/uilayers/internal/domain/ui"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/config"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/logging"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// StreamPath is served without compression so the WebSocket upgrade can hijack the connection
const StreamPath = "/stream"

// Server wraps the HTTP server and dependencies
type Server struct {
	config   *config.Config
	logger   *logging.Logger
	router   *gin.Engine
	handler  http.Handler
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	breakers *resilience.Group
	registry *registry.Registry
	seeder   *registry.Seeder
	manager  *ui.Manager
	loop     *frame.Loop
	hub      *ws.Hub

	unsubscribe func()
	background  sync.WaitGroup
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing UI host",
		zap.String("addr", cfg.Address()),
		zap.Int("frame_rate", cfg.Frame.Rate),
		zap.String("catalog", cfg.Catalog.Path),
	)

	// Metrics first; the manager, loop and hub report into them
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("uilayers", logger.Component("tracing"))

	var breakers *resilience.Group
	if cfg.Script.QuarantineAfter > 0 {
		breakers = resilience.NewGroup(resilience.Settings{
			Threshold: cfg.Script.QuarantineAfter,
			Cooldown:  cfg.Script.QuarantineCooldown,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn("Breaker state changed",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to))
			},
		})
	}

	scheduler := frame.NewScheduler()
	reg := registry.New(logger.Component("registry"), registry.Options{
		Delayer:       scheduler,
		ScriptTimeout: cfg.Script.Timeout,
		Breakers:      breakers,
	})
	seeder := registry.NewSeeder(reg, logger.Component("seeder"))

	manager := ui.NewManager(reg, logger.Component("ui")).WithRecorder(metrics)
	loop := frame.NewLoop(manager, scheduler, logger.Component("frame"), cfg.Frame.Rate).WithRecorder(metrics)

	hub := ws.NewHub(logger.Component("stream")).
		WithRecorder(metrics).
		WithSnapshot(func(ctx context.Context) (types.Snapshot, error) {
			var snap types.Snapshot
			err := loop.Do(ctx, func(m *ui.Manager) error {
				snap = m.Snapshot()
				return nil
			})
			return snap, err
		})
	unsubscribe := manager.Subscribe(hub.Publish)

	if cfg.Catalog.Path != "" {
		res, err := seeder.Seed(context.Background(), cfg.Catalog.Path)
		metrics.RecordCatalogReload(err)
		if err != nil {
			logger.Warn("Failed to seed catalog", zap.String("source", cfg.Catalog.Path), zap.Error(err))
		} else {
			logger.Info("Catalog loaded", zap.Int("templates", res.Templates), zap.Int("rejected", res.Rejected))
		}
	}
	metrics.SetRegistryTemplates(reg.Stats().TotalTemplates)

	// Create router
	if !cfg.Logging.Development && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(loop, reg, metrics, breakers, logger.Component("api"))
	if cfg.Catalog.Path != "" {
		handlers.WithCatalog(seeder, cfg.Catalog.Path)
	}
	handlers.RegisterRoutes(router)
	router.GET(StreamPath, hub.HandleConnection)

	gzip, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}
	compressed := gzip(router)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == StreamPath {
			router.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})

	logger.Info("Server initialized successfully")

	return &Server{
		config:      cfg,
		logger:      logger,
		router:      router,
		handler:     handler,
		metrics:     metrics,
		tracer:      tracer,
		breakers:    breakers,
		registry:    reg,
		seeder:      seeder,
		manager:     manager,
		loop:        loop,
		hub:         hub,
		unsubscribe: unsubscribe,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Loop returns the frame loop that owns the UI manager
func (s *Server) Loop() *frame.Loop {
	return s.loop
}

// Start runs the frame loop, the event hub and the catalog watcher until ctx is done
func (s *Server) Start(ctx context.Context) {
	s.loop.Start(ctx)

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.hub.Run(ctx)
	}()

	if s.config.Catalog.Watch && s.config.Catalog.Path != "" {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			if err := s.runCatalogWatch(ctx); err != nil {
				s.logger.Error("Catalog watch stopped", zap.Error(err))
			}
		}()
	}
}

func (s *Server) runCatalogWatch(ctx context.Context) error {
	source := s.config.Catalog.Path
	onReload := func(_ registry.SeedResult, err error) {
		s.metrics.RecordCatalogReload(err)
		s.metrics.SetRegistryTemplates(s.registry.Stats().TotalTemplates)
	}

	if registry.IsRemote(source) {
		poller := registry.NewPoller(s.seeder, source, s.logger.Component("catalog")).
			WithInterval(s.config.Catalog.PollInterval).
			OnReload(onReload)
		if s.breakers != nil {
			poller.WithBreaker(s.breakers.Get("catalog:" + source))
		}
		return poller.Run(ctx)
	}

	return registry.NewWatcher(s.seeder, source, s.logger.Component("catalog")).
		OnReload(onReload).
		Run(ctx)
}

// Run serves HTTP until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.Start(ctx)

	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}

	closeErr := s.Close(shutdownCtx)
	cancel()
	s.background.Wait()

	return errors.Join(serveErr, closeErr)
}

// Close dismisses every UI instance, stops the frame loop and flushes logs
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	// Reset on the loop so OnClose hooks run before it stops
	if err := s.loop.Do(ctx, func(m *ui.Manager) error {
		m.Reset()
		return nil
	}); err != nil && !errors.Is(err, frame.ErrLoopStopped) {
		s.logger.Warn("Failed to reset UI state", zap.Error(err))
	}
	s.loop.Stop()
	s.unsubscribe()
	s.tracer.Close()

	if err := s.logger.Sync(); err != nil {
		return fmt.Errorf("failed to sync logger: %w", err)
	}
	return nil
}
