package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/skyline-residence/building-api/docs"
	"github.com/skyline-residence/building-api/internal/api/handler"
	"github.com/skyline-residence/building-api/internal/api/middleware"
	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
	"github.com/skyline-residence/building-api/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers and guards.
type Deps struct {
	Auth       ports.AuthService
	Users      ports.UserService
	Agreements ports.AgreementService
	Listings   ports.ListingService
	Payments   ports.PaymentService

	// Checks back the readiness probe.
	Checks []handlers.Check

	Logger      zerolog.Logger
	CORSOrigins []string

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"Idempotency-Key",
		},
	}))
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "building_http",
		Registerer: registerer,
	}))

	// --- Guards ---
	token := middleware.TokenGuard(d.Auth)
	authed := middleware.Chain(token)
	admin := middleware.Chain(token, middleware.RoleGuard(d.Users, domain.RoleAdmin))
	member := middleware.Chain(token, middleware.RoleGuard(d.Users, domain.RoleMember))
	self := middleware.Chain(token, middleware.SelfGuard("email"))
	memberSelf := middleware.Chain(token, middleware.SelfGuard("email"), middleware.RoleGuard(d.Users, domain.RoleMember))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users, d.Agreements)
	agreementHandler := handler.NewAgreementHandler(d.Agreements)
	listingHandler := handler.NewListingHandler(d.Listings)
	paymentHandler := handler.NewPaymentHandler(d.Payments)
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks...)

	e.GET("/", healthHandler.Root)

	// --- Auth ---
	e.POST("/jwt", authHandler.IssueToken)

	// --- Users ---
	e.GET("/users", userHandler.List, admin)
	e.POST("/users", userHandler.Register)
	e.GET("/users/admin/:email", userHandler.AdminStatus, self)
	e.GET("/users/member/:email", userHandler.MemberStatus, self)
	e.GET("/users/:email", userHandler.AgreementByEmail, authed)

	// --- Apartments & announcements ---
	e.GET("/apartments", listingHandler.ListApartments)
	e.GET("/apartments/:id", listingHandler.GetApartment)
	e.GET("/announcements", listingHandler.ListAnnouncements, authed)
	e.POST("/announcements", listingHandler.PublishAnnouncement, admin)

	// --- Agreements ---
	e.GET("/agreements", agreementHandler.List, admin)
	e.POST("/agreements", agreementHandler.Create)
	e.GET("/agreements/:email", agreementHandler.FindByEmail, authed)
	e.PATCH("/agreements-accept/:id/:email", agreementHandler.Approve, admin)
	e.PATCH("/agreements-reject/:id", agreementHandler.Reject, admin)
	e.PATCH("/member-remove/:id", agreementHandler.RemoveMember, admin)

	// --- Payments ---
	e.POST("/create-payment-intent", paymentHandler.CreateIntent)
	e.GET("/payments/:email", paymentHandler.ListByEmail, memberSelf)
	e.POST("/payments", paymentHandler.Record, member)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
