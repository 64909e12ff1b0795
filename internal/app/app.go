package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"sapdash/internal/config"
	"sapdash/internal/dashboard"
	apierrors "sapdash/internal/errors"
	"sapdash/internal/infrastructure"
	"sapdash/internal/messaging"
	"sapdash/internal/metrics"
	customMiddleware "sapdash/internal/middleware"
	"sapdash/internal/services"
	"sapdash/internal/store"
	handlers "sapdash/internal/transport/http"
	"sapdash/internal/webui"
	ws "sapdash/internal/websocket"
	"sapdash/pkg/contracts"
)

// AppName is logged at startup.
const AppName = "SAP Integration Dashboard"

// Application represents the main application container
type Application struct {
	Config       *config.Config
	Router       *chi.Mux
	Server       *http.Server
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Store        store.EventStore
	Bus          messaging.Bus
	Consumer     *messaging.Consumer
	WebSocketHub *ws.Hub
	Surface      *ws.NotificationSurface
	Events       *services.EventService
	Health       *services.HealthService
	Seeder       *services.SampleDataGenerator
	Notifier     *dashboard.Notifier
	Refresh      *dashboard.AutoRefresh
	Exporter     *dashboard.Exporter
	Handlers     *HandlerContainer

	errorHandler *apierrors.ErrorHandler
	stopOnce     sync.Once
	stopErr      error
}

// HandlerContainer holds the HTTP handlers
type HandlerContainer struct {
	Dashboard     *handlers.DashboardHandler
	Export        *handlers.ExportHandler
	Events        *handlers.EventHandler
	Notifications *handlers.NotificationHandler
	Refresh       *handlers.RefreshHandler
	Health        *handlers.HealthHandler
	WebSocket     *handlers.WebSocketHandler
}

// NewApplication loads the configuration, initializes the logger and builds
// the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New builds an application from cfg. Nothing runs until Start.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}
	app.errorHandler = apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug")

	if err := app.initializeServices(); err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	st, err := a.openStore()
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	a.Store = st

	bus, err := a.openBus()
	if err != nil {
		return fmt.Errorf("failed to open message bus: %w", err)
	}
	a.Bus = bus

	a.WebSocketHub = ws.NewHub(a.Logger, ws.WithHubMetrics(a.Metrics))
	a.Surface = ws.NewNotificationSurface(a.WebSocketHub)
	a.Notifier = dashboard.NewNotifier(a.Surface, a.Logger, dashboard.WithNotifierMetrics(a.Metrics))

	msgCfg := a.Config.Messaging
	a.Events = services.NewEventService(a.Store, a.Bus, a.Logger,
		services.WithBroadcaster(a.WebSocketHub),
		services.WithTopics(services.Topics{Events: msgCfg.EventsTopic, Retry: msgCfg.RetryTopic}),
		services.WithMetrics(a.Metrics))
	if msgCfg.ConsumerEnabled {
		a.Consumer = messaging.NewConsumer(a.Bus, a.Events, msgCfg.EventsTopic, a.Logger)
	}
	a.Seeder = services.NewSampleDataGenerator(a.Store, nil, a.Logger)

	checks := map[string]services.Checker{}
	if pinger, ok := a.Store.(interface{ Ping(context.Context) error }); ok {
		checks["store"] = pinger.Ping
	}
	a.Health = services.NewHealthService(checks, a.WebSocketHub.ClientCount, a.Logger)

	hub := a.WebSocketHub
	a.Refresh = dashboard.NewAutoRefresh(a.Config.Dashboard.RefreshInterval, func(ctx context.Context) {
		hub.BroadcastRefresh(ctx, "auto-refresh")
	}, a.Logger)

	return a.initializeHandlers()
}

func (a *Application) initializeHandlers() error {
	renderer, err := webui.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to load dashboard templates: %w", err)
	}
	mode, err := dashboard.ParseQuoteMode(a.Config.Dashboard.CSVQuoting)
	if err != nil {
		return err
	}

	dash := handlers.NewDashboardHandler(a.Events, renderer, a.Refresh, a.errorHandler, a.Logger)
	downloader := dashboard.NewDownloader(dashboard.NewMemoryRegistry(a.Metrics), handlers.ResponseSaver(), a.Logger)
	a.Exporter = dashboard.NewExporter(webui.NewHTMLTableSource(dash.ExportPage), downloader, mode, a.Logger)

	wsCfg := a.Config.WebSocket
	a.Handlers = &HandlerContainer{
		Dashboard:     dash,
		Export:        handlers.NewExportHandler(a.Exporter, mode, a.Config.Dashboard.CSVBOM, a.Metrics, a.errorHandler, a.Logger),
		Events:        handlers.NewEventHandler(a.Events, a.Logger, a.errorHandler),
		Notifications: handlers.NewNotificationHandler(a.Notifier, a.Surface, a.Logger, a.errorHandler),
		Refresh:       handlers.NewRefreshHandler(a.Refresh, a.Logger, a.errorHandler),
		Health:        handlers.NewHealthHandler(a.Health, a.Logger),
		WebSocket:     handlers.NewWebSocketHandler(a.WebSocketHub, a.Config.Security.AllowedOrigins, wsCfg.ReadBufferSize, wsCfg.WriteBufferSize, a.Logger),
	}
	return nil
}

func (a *Application) openStore() (store.EventStore, error) {
	switch a.Config.Storage.Driver {
	case "memory":
		a.Logger.Info("Using in-memory event store")
		return store.NewMemoryStore(), nil
	default:
		a.Logger.Info("Using SQLite event store", slog.String("path", a.Config.Storage.Path))
		return store.NewSQLiteStore(a.Config.Storage.Path)
	}
}

func (a *Application) openBus() (messaging.Bus, error) {
	cfg := a.Config.Messaging
	switch cfg.Driver {
	case "kafka":
		a.Logger.Info("Using Kafka message bus", slog.Any("brokers", cfg.Brokers))
		return messaging.NewKafkaBus(messaging.KafkaConfig{
			Brokers:      cfg.Brokers,
			GroupID:      cfg.GroupID,
			BatchTimeout: cfg.BatchTimeout,
		}, a.Logger)
	default:
		a.Logger.Info("Using in-memory message bus")
		return messaging.NewMemoryBus(a.Logger), nil
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// These don't wrap the ResponseWriter, so the WebSocket upgrade still works.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.With(customMiddleware.Recoverer(a.Logger)).Handle("/ws", a.Handlers.WebSocket)
	r.With(customMiddleware.Recoverer(a.Logger)).Handle("/metrics", a.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(auditMutations(customMiddleware.AuditLog(a.Logger)))

		a.setupHTMLRoutes(r)
		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupHTMLRoutes configures the dashboard page, its form actions and assets
func (a *Application) setupHTMLRoutes(r chi.Router) {
	h := a.Handlers
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webui.Static()))))

	r.Get("/", h.Dashboard.Page)
	r.Post("/search", h.Dashboard.Search)
	r.Post("/filter", h.Dashboard.Filter)
	r.Post("/reprocess/{id}", h.Dashboard.Reprocess)
	r.Get("/summary/chart", h.Dashboard.SummaryChart)
	r.Get("/export.csv", h.Export.ExportCSV)
	r.Get("/health", h.Health.Dashboard)
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	h := a.Handlers
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", h.Health.HealthCheck)
		r.Get("/health/ready", h.Health.ReadinessCheck)
		r.Get("/health/live", h.Health.LivenessCheck)
		r.Get("/version", h.Health.Version)

		r.With(customMiddleware.ContentTypeValidator(a.errorHandler, "application/json")).
			Group(func(r chi.Router) {
				r.Mount("/events", h.Events.Routes(h.Export.Export))
				r.Mount("/notifications", h.Notifications.Routes())
				r.Put("/refresh", h.Refresh.Update)
			})
		r.Get("/refresh", h.Refresh.State)
		r.Get("/stats", h.Events.Stats)
		r.Get("/summary", h.Events.Summary)
	})
}

// auditMutations applies audit to requests that change state.
func auditMutations(audit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		audited := audit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				audited.ServeHTTP(w, r)
			}
		})
	}
}

// getCORSConfig returns CORS configuration for the dashboard API
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := a.Config.Security.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)}
	}
	return customMiddleware.CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start seeds the store and starts the background services. The HTTP
// server is started by Run.
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("storage", a.Config.Storage.Driver),
		slog.String("messaging", a.Config.Messaging.Driver))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		return err
	}

	seeded, err := a.Seeder.SeedIfEmpty(ctx, a.Config.Dashboard.SeedCount)
	if err != nil {
		return fmt.Errorf("failed to seed sample data: %w", err)
	}
	if seeded > 0 {
		a.Logger.InfoContext(ctx, "Sample data created", slog.Int("events", seeded))
	}

	a.WebSocketHub.Start()
	if a.Config.Dashboard.AutoRefresh {
		a.Refresh.Enable(ctx)
	}
	return nil
}

// Run starts the application and serves until ctx is cancelled, SIGINT or
// SIGTERM arrives, or a component fails. It always shuts down before
// returning.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return errors.Join(err, a.Stop(context.Background()))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening", slog.String("address", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if a.Consumer != nil {
		g.Go(func() error {
			if err := a.Consumer.Run(gctx); err != nil {
				return fmt.Errorf("consumer error: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(ctx, "Shutdown requested")
		return a.Stop(context.WithoutCancel(ctx))
	})
	return g.Wait()
}

// Stop gracefully stops the application. Later calls return the first
// result.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.Logger.InfoContext(ctx, "Shutting down application")

		shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
		a.Refresh.Disable()
		a.WebSocketHub.Stop()
		errs = append(errs, a.closeResources())

		a.stopErr = errors.Join(errs...)
		a.Logger.InfoContext(ctx, "Application shutdown complete")
	})
	return a.stopErr
}

func (a *Application) closeResources() error {
	var errs []error
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("bus close error: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close error: %w", err))
		}
	}
	return errors.Join(errs...)
}

// performStartupHealthCheck runs the readiness checks once before serving
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	status := a.Health.ReadinessCheck(ctx)
	if status.Status == "ready" {
		return nil
	}
	var errs []error
	for name, svc := range status.Services {
		if svc.Status != "ready" {
			errs = append(errs, fmt.Errorf("%s: %s", name, svc.Message))
		}
	}
	return fmt.Errorf("startup health check failed: %w", errors.Join(errs...))
}
