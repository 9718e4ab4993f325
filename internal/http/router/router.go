package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/config"
	"github.com/monterra-as/installer-api/internal/database"
	"github.com/monterra-as/installer-api/internal/http/handler"
	"github.com/monterra-as/installer-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/monterra-as/installer-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	catalogHandler      *handler.CatalogHandler
	quoteHandler        *handler.QuoteHandler
	contractHandler     *handler.ContractHandler
	documentHandler     *handler.DocumentHandler
	projectHandler      *handler.ProjectHandler
	incidentHandler     *handler.IncidentHandler
	notificationHandler *handler.NotificationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	catalogHandler *handler.CatalogHandler,
	quoteHandler *handler.QuoteHandler,
	contractHandler *handler.ContractHandler,
	documentHandler *handler.DocumentHandler,
	projectHandler *handler.ProjectHandler,
	incidentHandler *handler.IncidentHandler,
	notificationHandler *handler.NotificationHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		catalogHandler:      catalogHandler,
		quoteHandler:        quoteHandler,
		contractHandler:     contractHandler,
		documentHandler:     documentHandler,
		projectHandler:      projectHandler,
		incidentHandler:     incidentHandler,
		notificationHandler: notificationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required), limited per client IP
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitByIP)

			r.Post("/auth/login", rt.authHandler.Login)
			r.Post("/auth/register-installer", rt.authHandler.RegisterInstaller)

			// Public quote acceptance flow
			r.Get("/quotes/public", rt.quoteHandler.ListPublished)
			r.Get("/quotes/public/{token}", rt.quoteHandler.GetPublicByToken)
			r.Post("/quotes/public/{token}/accept", rt.quoteHandler.AcceptPublic)

			// Public contract signing flow
			r.Get("/contracts/by-token/{token}", rt.contractHandler.FetchByToken)
			r.Post("/contracts/sign/{token}", rt.contractHandler.Sign)
		})

		// Protected routes, limited per user
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth & users
			r.Get("/auth/me", rt.authHandler.Me)
			r.With(rt.authMiddleware.RequireCapability(auth.CapUserManage)).
				Post("/users", rt.authHandler.CreateUser)

			// Catalog
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", rt.catalogHandler.ListCategories)
				r.Get("/{id}", rt.catalogHandler.GetCategory)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireCapability(auth.CapCatalogWrite))
					r.Post("/", rt.catalogHandler.CreateCategory)
					r.Put("/{id}", rt.catalogHandler.UpdateCategory)
				})
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", rt.catalogHandler.ListProducts)
				r.Get("/{id}", rt.catalogHandler.GetProduct)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireCapability(auth.CapCatalogWrite))
					r.Post("/", rt.catalogHandler.CreateProduct)
					r.Put("/{id}", rt.catalogHandler.UpdateProduct)
				})
			})

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.With(rt.authMiddleware.RequireCapability(auth.CapQuoteCreate)).
					Post("/", rt.quoteHandler.Create)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.Put("/{id}", rt.quoteHandler.Update)
				r.Put("/{id}/status", rt.quoteHandler.UpdateStatus)
				r.Delete("/{id}", rt.quoteHandler.Delete)
			})

			// Contracts
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", rt.contractHandler.List)
				r.With(rt.authMiddleware.RequireCapability(auth.CapContractCreate)).
					Post("/", rt.contractHandler.Create)
				r.Get("/{id}", rt.contractHandler.GetByID)
				r.With(rt.authMiddleware.RequireCapability(auth.CapContractDelete)).
					Delete("/{id}", rt.contractHandler.Delete)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireCapability(auth.CapContractLink))
					r.Post("/{id}/link", rt.contractHandler.GenerateLink)
					r.Delete("/{id}/link", rt.contractHandler.DeleteLink)
				})

				// Documents
				r.Route("/{id}/documents", func(r chi.Router) {
					r.Get("/", rt.documentHandler.List)
					r.Post("/", rt.documentHandler.Upload)
					r.Get("/{documentId}", rt.documentHandler.Download)
					r.Delete("/{documentId}", rt.documentHandler.Delete)
				})
			})

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.With(rt.authMiddleware.RequireCapability(auth.CapProjectCreate)).
					Post("/", rt.projectHandler.Create)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.Put("/{id}", rt.projectHandler.Update)
				r.Put("/{id}/status", rt.projectHandler.UpdateStatus)
				r.With(rt.authMiddleware.RequireCapability(auth.CapProjectAssign)).
					Put("/{id}/assign", rt.projectHandler.AssignInstaller)
				r.With(rt.authMiddleware.RequireCapability(auth.CapPriceProposal)).
					Put("/{id}/installer-price", rt.projectHandler.ProposeInstallerPrice)
				r.With(rt.authMiddleware.RequireCapability(auth.CapPriceResolve)).
					Put("/{id}/installer-price/resolve", rt.projectHandler.ResolveInstallerPrice)
				r.With(rt.authMiddleware.RequireCapability(auth.CapProjectDelete)).
					Delete("/{id}", rt.projectHandler.Delete)
			})

			// Incidents
			r.Route("/incidents", func(r chi.Router) {
				r.Get("/", rt.incidentHandler.List)
				r.With(rt.authMiddleware.RequireCapability(auth.CapIncidentCreate)).
					Post("/", rt.incidentHandler.Create)
				r.Get("/{id}", rt.incidentHandler.GetByID)
				r.Put("/{id}", rt.incidentHandler.Update)
				r.With(rt.authMiddleware.RequireCapability(auth.CapIncidentResolve)).
					Put("/{id}/status", rt.incidentHandler.UpdateStatus)
				r.Delete("/{id}", rt.incidentHandler.Delete)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
				r.Put("/{id}/unread", rt.notificationHandler.MarkAsUnread)
				r.Delete("/{id}", rt.notificationHandler.Delete)
			})
		})
	})

	return r
}
