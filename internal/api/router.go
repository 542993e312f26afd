package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/intlpay/payments-portal/docs"
	"github.com/intlpay/payments-portal/internal/api/handler"
	"github.com/intlpay/payments-portal/internal/api/metrics"
	"github.com/intlpay/payments-portal/internal/api/middleware"
	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

const (
	defaultBodyLimit = "64K"
	msgRateLimited   = "Too many requests from this IP, please try again later."
)

// Deps is everything the router needs. Services and the token verifier are
// required; the rest have working defaults.
type Deps struct {
	Logger   zerolog.Logger
	Auth     ports.AuthService
	Users    ports.UserService
	Payments ports.PaymentService
	Tokens   ports.TokenVerifier

	// RateLimitStore backs the global per-IP limiter. Nil disables limiting.
	RateLimitStore echomiddleware.RateLimiterStore
	// Checks are pinged by GET /health/ready.
	Checks map[string]handler.Pinger
	// Registry receives HTTP and portal metrics and is exposed on /metrics.
	// A fresh registry is created when nil.
	Registry *prometheus.Registry

	AllowedOrigins []string
	Production     bool
	BodyLimit      string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Binder = handler.NewBinder()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := metrics.New(reg)

	bodyLimit := d.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.SecureWithConfig(secureConfig(d.Production)))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	if d.RateLimitStore != nil {
		e.Use(rateLimiter(d.RateLimitStore))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: reg,
		Skipper:    skipOperational,
	}))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.Checks)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, m)
	userHandler := handler.NewUserHandler(d.Users)
	paymentHandler := handler.NewPaymentHandler(d.Payments, m)
	authenticate := middleware.Authenticate(d.Tokens, m)

	apiGroup := e.Group("/api")

	auth := apiGroup.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	user := apiGroup.Group("/user", authenticate, middleware.RequireRole(m, domain.RoleCustomer, domain.RoleEmployee))
	user.GET("/me", userHandler.Me)
	user.GET("/customers", userHandler.Customers)

	employee := apiGroup.Group("/employee", authenticate, middleware.RequireRole(m, domain.RoleEmployee))
	employee.POST("/payments", paymentHandler.Submit)

	return e
}

func skipOperational(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/health") || p == "/metrics" || strings.HasPrefix(p, "/api-docs")
}

func secureConfig(production bool) echomiddleware.SecureConfig {
	cfg := echomiddleware.SecureConfig{
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none'",
	}
	if production {
		cfg.HSTSMaxAge = 15552000
	}
	return cfg
}

func rateLimiter(store echomiddleware.RateLimiterStore) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: skipOperational,
		Store:   store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client.").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, msgRateLimited)
		},
	})
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			var ev *zerolog.Event
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error().Err(v.Error)
			case v.Status >= http.StatusBadRequest:
				ev = log.Warn()
			default:
				ev = log.Info()
			}
			ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
