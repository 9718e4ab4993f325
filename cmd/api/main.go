package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/monterra-as/installer-api/docs"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/config"
	"github.com/monterra-as/installer-api/internal/database"
	"github.com/monterra-as/installer-api/internal/http/handler"
	"github.com/monterra-as/installer-api/internal/http/middleware"
	"github.com/monterra-as/installer-api/internal/http/router"
	"github.com/monterra-as/installer-api/internal/jobs"
	"github.com/monterra-as/installer-api/internal/logger"
	"github.com/monterra-as/installer-api/internal/repository"
	"github.com/monterra-as/installer-api/internal/service"
	"github.com/monterra-as/installer-api/internal/storage"
	"go.uber.org/zap"
)

// @title Monterra Installer API
// @version 1.0
// @description Marketplace API for quotes, projects, contracts and installer onboarding

// @contact.name API Support
// @contact.email support@monterra.no

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "installer-api-staging.monterra.no"
	case "production":
		docs.SwaggerInfo.Host = "api.monterra.no"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets.
	// In development: uses environment variables.
	// In staging/production: fetches from Azure Key Vault.
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	documentStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("storage initialized", zap.String("mode", cfg.Storage.Mode))

	tokenIssuer, err := auth.NewTokenIssuer(&cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	contractRepo := repository.NewContractRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// Services
	notificationService := service.NewNotificationService(notificationRepo, log)
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	authService := service.NewAuthService(userRepo, tokenIssuer, db, log)
	catalogService := service.NewCatalogService(catalogRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, userRepo, numberSequenceService, notificationService, db, log)
	contractService := service.NewContractService(contractRepo, notificationService, db, log)
	documentService := service.NewDocumentService(documentRepo, contractRepo, documentStorage, log)
	projectService := service.NewProjectService(projectRepo, userRepo, numberSequenceService, notificationService, db, log)
	incidentService := service.NewIncidentService(incidentRepo, projectRepo, numberSequenceService, notificationService, db, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokenIssuer, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	contractHandler := handler.NewContractHandler(contractService, log)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	incidentHandler := handler.NewIncidentHandler(incidentService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		catalogHandler,
		quoteHandler,
		contractHandler,
		documentHandler,
		projectHandler,
		incidentHandler,
		notificationHandler,
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterExpirySweepJob(
			scheduler,
			quoteRepo,
			contractRepo,
			log,
			cfg.Jobs.ExpirySweepSchedule,
			5*time.Minute,
		); err != nil {
			log.Error("failed to register expiry sweep job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("scheduler started with expiry sweep job",
				zap.String("cron_expr", cfg.Jobs.ExpirySweepSchedule),
			)
		}
	} else {
		log.Info("background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("server stopped gracefully")
	}

	return nil
}
