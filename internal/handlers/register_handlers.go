package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/farmfeed/ledger_service/cmd/docs"
	portssvc "github.com/farmfeed/ledger_service/internal/core/ports/services"
	"github.com/farmfeed/ledger_service/internal/middleware"
	"github.com/farmfeed/ledger_service/internal/platform/config"
	"github.com/farmfeed/ledger_service/pkg/validator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOption customizes RegisterRoutes.
type RouteOption func(*routeOptions)

type routeOptions struct {
	gatherer    prometheus.Gatherer
	rateLimiter *limiter.Limiter
}

// WithMetricsGatherer exposes gatherer on GET /metrics.
func WithMetricsGatherer(g prometheus.Gatherer) RouteOption {
	return func(o *routeOptions) {
		o.gatherer = g
	}
}

// WithRateLimiter applies l to every /api/v1 route.
func WithRateLimiter(l *limiter.Limiter) RouteOption {
	return func(o *routeOptions) {
		o.rateLimiter = l
	}
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts ...RouteOption,
) {
	o := routeOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	// Binding tags such as "pairid" must exist before the first request is bound.
	if err := validator.RegisterGinValidators(); err != nil {
		slog.Error("Failed to register request validators", slog.String("error", err.Error()))
	}

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if o.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})))
	}

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, o)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	o routeOptions,
) {
	v1Handlers := []gin.HandlerFunc{middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)}
	if o.rateLimiter != nil {
		v1Handlers = append(v1Handlers, middleware.RateLimit(o.rateLimiter))
	}
	v1 := r.Group("/api/v1", v1Handlers...)

	registerLedgerRoutes(v1, service.Ledger)
	registerReconcileRoutes(v1, service.Reconciliation)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = origins
	return cc
}
