package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/magicspin/laundry-api/internal/api"
	apiMiddleware "github.com/magicspin/laundry-api/internal/api/middleware"
	"github.com/magicspin/laundry-api/internal/config"
	"github.com/magicspin/laundry-api/internal/events"
	"github.com/magicspin/laundry-api/internal/platform/mailer"
	"github.com/magicspin/laundry-api/internal/platform/postgres"
	"github.com/magicspin/laundry-api/internal/platform/stripe"
	"github.com/magicspin/laundry-api/internal/service"
	"github.com/magicspin/laundry-api/internal/service/auth"
	"github.com/magicspin/laundry-api/internal/store"
	"github.com/magicspin/laundry-api/internal/task"
)

// rateLimitSweepInterval is how often idle per-IP limiters are dropped.
const rateLimitSweepInterval = 5 * time.Minute

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	orderStore   store.OrderStore
	paymentStore store.PaymentStore
	priceStore   store.PriceStore
	taskStore    task.TaskStore

	jwtService auth.JWTService
	processor  *stripe.Client

	authService    *service.AuthService
	orderService   *service.OrderService
	paymentService *service.PaymentService
	userService    *service.UserService
	catalogService *service.CatalogService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
	rateLimiter  *apiMiddleware.RateLimiter
}

// newApplication creates a new application instance with all dependencies
// initialized. The task runner is created but not started; Run starts it.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	passwords := auth.NewBcryptVerifier(cfg.Auth.BCryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.orderStore = postgres.NewPostgresOrderStore(db, logger)
	app.paymentStore = postgres.NewPostgresPaymentStore(db, logger)
	app.priceStore = postgres.NewPostgresPriceStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.processor, err = stripe.NewClient(cfg.Payment, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment processor: %w", err)
	}

	if err := app.setupNotifications(); err != nil {
		return nil, err
	}

	app.authService, err = service.NewAuthService(
		app.userStore, app.jwtService, passwords, app.eventEmitter, cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	app.orderService, err = service.NewOrderService(
		app.orderStore, app.priceStore, cfg.Orders.StrictTransitions, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %w", err)
	}

	app.paymentService, err = service.NewPaymentService(
		app.paymentStore, app.orderStore, app.processor, db, cfg.Payment.Currency, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment service: %w", err)
	}

	app.userService, err = service.NewUserService(app.userStore, app.orderStore, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.catalogService, err = service.NewCatalogService(app.priceStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}

	app.rateLimiter = apiMiddleware.NewRateLimiter(
		cfg.Server.RateLimitRequests,
		time.Duration(cfg.Server.RateLimitWindowMinutes)*time.Minute)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupNotifications wires the event emitter to the email task pipeline:
// service events become persisted email tasks delivered by the runner.
func (app *application) setupNotifications() error {
	m, err := mailer.New(app.config.Email, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	notifier := mailer.NewNotifier(m, app.config.Email.FrontendURL)

	factory, err := task.NewEmailTaskFactory(notifier, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create email task factory: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.RunnerConfigFrom(app.config.Task), app.logger)
	app.taskRunner.RegisterDecoder(task.TaskTypeEmailDelivery, factory.Decode)

	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)
	app.eventEmitter.RegisterHandler(task.NewNotificationEventHandler(factory, app.taskRunner, app.logger))
	return nil
}

// handlers builds the HTTP layer from the application services.
func (app *application) handlers() routes {
	return routes{
		auth:     api.NewAuthHandler(app.authService, app.logger),
		orders:   api.NewOrderHandler(app.orderService, app.logger),
		payments: api.NewPaymentHandler(app.paymentService, app.logger),
		users:    api.NewUserHandler(app.userService, app.logger),
		catalog:  api.NewCatalogHandler(app.catalogService, app.logger),
		health:   api.NewHealthHandler(app.db, app.logger),

		authMiddleware: apiMiddleware.NewAuthMiddleware(app.jwtService, app.userStore, app.logger),
		rateLimiter:    app.rateLimiter,
		allowedOrigin:  app.config.Server.AllowedOrigin,
		logger:         app.logger,
	}
}

// Run starts the background workers and the HTTP server, blocking until
// ctx is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(); err != nil {
		app.cleanup()
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go app.rateLimiter.Run(sweepCtx, rateLimitSweepInterval, app.logger)

	router := newRouter(app.handlers())
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		closeDB(app.db, app.logger)
	}
	app.logger.Info("Application shutdown completed")
}
