package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"recall-backend/infrastructure/di"
	"recall-backend/interfaces/http/rest/handlers"
	"recall-backend/interfaces/http/rest/middleware"
	"recall-backend/pkg/auth"
	"recall-backend/pkg/common"
	"recall-backend/pkg/utils"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	cfg := rt.container.Config

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.container.Metrics.Middleware())

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and observability
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", rt.container.Metrics.Handler())

	// Auth is optional: with no secret configured the API runs open,
	// which is the local single-user mode.
	var validator *auth.JWTValidator
	if cfg.JWTSecret != "" {
		v, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
		})
		if err != nil {
			rt.logger.Error("Failed to create JWT validator, running unauthenticated", zap.Error(err))
		} else {
			validator = v
		}
	}
	limiter := auth.NewTokenBucketLimiter(cfg.RateLimitPerMinute, rateLimitRefill(cfg.RateLimitPerMinute))

	relatedHandler := handlers.NewRelatedHandler(rt.container.Related, rt.container.Links, rt.logger)
	linkHandler := handlers.NewLinkHandler(rt.container.Links, rt.logger)
	hierarchyHandler := handlers.NewHierarchyHandler(rt.container.Hierarchy, rt.logger)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(validator, limiter, rt.logger))

		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/related", relatedHandler.FindRelated)
			r.Get("/link-suggestions", relatedHandler.SuggestLinks)
			r.Get("/links", linkHandler.GetConnections)
		})

		r.Route("/links", func(r chi.Router) {
			r.Post("/", linkHandler.CreateLink)
			r.Delete("/", linkHandler.DeleteLink)
		})

		r.Get("/graph", linkHandler.GetGraph)

		r.Route("/hierarchy", func(r chi.Router) {
			r.Post("/nodes", hierarchyHandler.CreateNode)
			r.Get("/nodes/{taskID}", hierarchyHandler.GetNode)
			r.Post("/nodes/{taskID}/move", hierarchyHandler.MoveTask)
			r.Get("/tree", hierarchyHandler.GetTree)
		})
	})

	return router
}

// rateLimitRefill converts a per-minute budget into a refill interval
func rateLimitRefill(perMinute int) time.Duration {
	if perMinute <= 0 {
		perMinute = 60
	}
	return time.Minute / time.Duration(perMinute)
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   utils.NowRFC3339(),
	})
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   utils.NowRFC3339(),
	})
}
