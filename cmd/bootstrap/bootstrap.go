package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"makerspace-booking/config"
	deliveryHttp "makerspace-booking/internal/delivery/http"
	"makerspace-booking/internal/delivery/http/handler"
	"makerspace-booking/internal/delivery/http/middleware"
	"makerspace-booking/internal/infrastructure/cache"
	"makerspace-booking/internal/infrastructure/database"
	"makerspace-booking/internal/repository"
	"makerspace-booking/internal/service"
	"makerspace-booking/internal/usecase"
	"makerspace-booking/pkg/jwt"
	"makerspace-booking/pkg/rabbitmq"
	"makerspace-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Publisher   *rabbitmq.Publisher
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	log := NewLogger(cfg.App)
	app.Log = log
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Redis only backs the availability cache
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warnf("Redis unavailable, availability cache disabled: %v", err)
	} else {
		app.RedisClient = redisClient
		log.Info("Redis connected successfully")
	}

	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warnf("RabbitMQ unavailable, booking messages disabled: %v", err)
		} else {
			app.Publisher = publisher
			log.Infof("Publishing booking messages to exchange %q", cfg.RabbitMQ.Exchange)
		}
	}

	// Initialize all layers
	app.Server = app.initializeServer()

	return app, nil
}

// NewLogger returns a JSON logger at the configured level, falling back to info
func NewLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() *http.Server {
	cfg := app.Config
	log := app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	transactor := repository.NewTransactor(app.DB)
	bookingRepo := repository.NewBookingRepository()
	eventRepo := repository.NewEventRepository()
	workshopRepo := repository.NewWorkshopRepository()
	serviceRepo := repository.NewServiceRepository()
	categoryRepo := repository.NewCategoryRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	availabilityCache := service.NewAvailabilityCache(app.RedisClient, cfg.Cache.AvailabilityTTL, log)
	var messagePublisher service.MessagePublisher
	if app.Publisher != nil {
		messagePublisher = app.Publisher
	}
	bookingPublisher := service.NewBookingEventPublisher(messagePublisher, log)

	// Initialize usecases
	capacityGuard := usecase.NewCapacityGuard(log, bookingRepo, eventRepo, workshopRepo)
	registrationGuard := usecase.NewRegistrationGuard(bookingRepo)
	roster := usecase.NewParticipantRoster(log, workshopRepo)

	bookingUsecase := usecase.NewBookingUsecase(transactor, log, bookingRepo, eventRepo, workshopRepo, serviceRepo,
		capacityGuard, registrationGuard, roster, auditService, availabilityCache, bookingPublisher)
	eventUsecase := usecase.NewEventUsecase(transactor, log, eventRepo, bookingRepo, categoryRepo, capacityGuard, auditService, availabilityCache)
	workshopUsecase := usecase.NewWorkshopUsecase(transactor, log, workshopRepo, bookingRepo, categoryRepo, capacityGuard, auditService, availabilityCache)
	availabilityUsecase := usecase.NewAvailabilityUsecase(transactor, log, capacityGuard, availabilityCache)
	categoryUsecase := usecase.NewCategoryUsecase(transactor, log, categoryRepo, auditService)
	serviceUsecase := usecase.NewServiceUsecase(transactor, log, serviceRepo, categoryRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(transactor, log, auditLogRepo)

	// Initialize handlers
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	eventHandler := handler.NewEventHandler(eventUsecase, availabilityUsecase, customValidator)
	workshopHandler := handler.NewWorkshopHandler(workshopUsecase, availabilityUsecase, customValidator)
	catalogHandler := handler.NewCatalogHandler(categoryUsecase, serviceUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(log, bookingHandler, eventHandler, workshopHandler, catalogHandler, auditLogHandler,
		authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, rabbitmq)
func (app *App) Close() {
	if app.Publisher != nil {
		app.Publisher.Close()
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
