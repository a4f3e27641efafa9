package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fairwayhq/fairway/config"
	"github.com/fairwayhq/fairway/internal/database/schema"
	"github.com/fairwayhq/fairway/internal/domain"
	httpHandler "github.com/fairwayhq/fairway/internal/http"
	"github.com/fairwayhq/fairway/internal/repository"
	"github.com/fairwayhq/fairway/internal/service"
	"github.com/fairwayhq/fairway/internal/service/queue"
	"github.com/fairwayhq/fairway/pkg/logger"
	"github.com/fairwayhq/fairway/pkg/mailer"
)

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB
	mailer mailer.Mailer
	mux    *http.ServeMux

	// Repositories
	txRunner     domain.TransactionRunner
	courseRepo   domain.CourseRepository
	locationRepo domain.LocationRepository
	customerRepo domain.CustomerRepository
	captureRepo  domain.CaptureRepository
	pipelineRepo domain.PipelineRepository
	segmentRepo  domain.SegmentRepository
	emailQueue   domain.EmailQueueRepository
	importRepo   domain.ImportRepository
	analytics    domain.AnalyticsRepository

	// Services
	captureService   *service.CaptureService
	customerService  *service.CustomerService
	importService    *service.ImportService
	prospectService  *service.ProspectService
	segmentService   *service.SegmentService
	analyticsService *service.AnalyticsService
	queueWorker      *queue.Worker

	server   *http.Server
	serverMu sync.RWMutex
}

// AppOption allows customizing the App for testing
type AppOption func(*App)

// WithMockDB injects a database connection instead of opening one
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithMockMailer injects a mailer instead of building the SMTP one
func WithMockMailer(m mailer.Mailer) AppOption {
	return func(a *App) {
		a.mailer = m
	}
}

// WithLogger injects a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	app := &App{
		config: cfg,
		logger: logger.NewLogger(cfg.LogLevel),
		mux:    http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitDB opens the connection and applies the table definitions. Every
// statement is idempotent (CREATE TABLE IF NOT EXISTS) so repeated startups
// are safe.
func (a *App) InitDB() error {
	if a.db == nil {
		a.logger.Info(fmt.Sprintf("Connecting to database %s:%d, dbname %s, sslmode %s",
			a.config.Database.Host, a.config.Database.Port, a.config.Database.DBName, a.config.Database.SSLMode))

		db, err := sql.Open("postgres", a.config.Database.ConnectionString())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		a.db = db
	}

	for _, stmt := range schema.TableDefinitions {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return nil
}

// InitMailer builds the SMTP mailer unless one was injected
func (a *App) InitMailer() error {
	if a.mailer != nil {
		return nil
	}

	a.mailer = mailer.NewSMTPMailer(&mailer.Config{
		SMTPHost:     a.config.SMTP.Host,
		SMTPPort:     a.config.SMTP.Port,
		SMTPUsername: a.config.SMTP.Username,
		SMTPPassword: a.config.SMTP.Password,
		FromEmail:    a.config.SMTP.FromEmail,
		FromName:     a.config.SMTP.FromName,
	})
	return nil
}

// InitRepositories creates all repositories
func (a *App) InitRepositories() error {
	if a.db == nil {
		return fmt.Errorf("database not initialized")
	}

	a.txRunner = repository.NewTransactionRunner(a.db)
	a.courseRepo = repository.NewCourseRepository(a.db)
	a.locationRepo = repository.NewLocationRepository(a.db)
	a.customerRepo = repository.NewCustomerRepository(a.db)
	a.captureRepo = repository.NewCaptureRepository(a.db)
	a.pipelineRepo = repository.NewPipelineRepository(a.db)
	a.segmentRepo = repository.NewSegmentRepository(a.db)
	a.emailQueue = repository.NewEmailQueueRepository(a.db)
	a.importRepo = repository.NewImportRepository(a.db)
	a.analytics = repository.NewAnalyticsRepository(a.db)

	return nil
}

// InitServices creates all services
func (a *App) InitServices() error {
	a.captureService = service.NewCaptureService(
		a.txRunner,
		a.courseRepo,
		a.locationRepo,
		a.customerRepo,
		a.captureRepo,
		a.pipelineRepo,
		a.emailQueue,
		a.logger,
	)
	a.customerService = service.NewCustomerService(a.customerRepo, a.emailQueue, a.logger)
	a.importService = service.NewImportService(a.txRunner, a.customerRepo, a.importRepo, a.logger)
	a.prospectService = service.NewProspectService(a.customerRepo, a.pipelineRepo, a.logger)
	a.segmentService = service.NewSegmentService(a.segmentRepo, a.emailQueue, a.logger)
	a.analyticsService = service.NewAnalyticsService(a.analytics, a.courseRepo, a.logger)

	a.queueWorker = queue.NewWorker(a.emailQueue, a.mailer, &queue.WorkerConfig{
		PollInterval: time.Duration(a.config.Queue.PollIntervalSeconds) * time.Second,
		BatchSize:    a.config.Queue.BatchSize,
	}, a.logger)

	return nil
}

// InitHandlers registers all HTTP routes
func (a *App) InitHandlers() error {
	captureHandler := httpHandler.NewCaptureHandler(a.captureService, a.logger)
	customerHandler := httpHandler.NewCustomerHandler(a.customerService, a.logger)
	importHandler := httpHandler.NewImportHandler(a.importService, a.logger)
	prospectHandler := httpHandler.NewProspectHandler(a.prospectService, a.logger)
	segmentHandler := httpHandler.NewSegmentHandler(a.segmentService, a.logger)
	analyticsHandler := httpHandler.NewAnalyticsHandler(a.analyticsService, a.logger)

	captureHandler.RegisterRoutes(a.mux)
	customerHandler.RegisterRoutes(a.mux)
	importHandler.RegisterRoutes(a.mux)
	prospectHandler.RegisterRoutes(a.mux)
	segmentHandler.RegisterRoutes(a.mux)
	analyticsHandler.RegisterRoutes(a.mux)

	a.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, a.config.Version)
	})

	return nil
}

// Initialize runs all initialization steps in order
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting fairway")

	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitMailer(); err != nil {
		return err
	}
	if err := a.InitRepositories(); err != nil {
		return err
	}
	if err := a.InitServices(); err != nil {
		return err
	}
	if err := a.InitHandlers(); err != nil {
		return err
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// Start launches the delivery worker and serves HTTP until Shutdown
func (a *App) Start() error {
	if err := a.queueWorker.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start delivery worker: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).Info("Server starting")

	a.serverMu.Lock()
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := a.server
	a.serverMu.Unlock()

	return server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server, the delivery worker and the
// database connection
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	var serverErr error
	if server != nil {
		serverErr = server.Shutdown(ctx)
	}

	// The worker finishes its in-flight batch before returning; anything
	// still pending stays in the queue for the next startup.
	if a.queueWorker != nil {
		a.queueWorker.Stop()
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Failed to close database")
		}
	}

	a.logger.Info("Shutdown complete")
	return serverErr
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app's logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the app's HTTP multiplexer
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetDB returns the app's database connection
func (a *App) GetDB() *sql.DB {
	return a.db
}

// GetMailer returns the app's mailer
func (a *App) GetMailer() mailer.Mailer {
	return a.mailer
}
