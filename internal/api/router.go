package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/vreta/crm-api/internal/api/handler"
	"github.com/vreta/crm-api/internal/api/middleware"
	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

const metricsSubsystem = "crm"

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth        ports.AuthService
	Admin       ports.AdminService
	Leads       ports.LeadService
	Tokens      middleware.TokenVerifier
	Health      *handler.HealthHandler
	Log         zerolog.Logger
	CORSOrigins []string
	// Registry receives the HTTP metrics; nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(accessLog(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
		AllowCredentials: true,
	}))
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	if d.Registry != nil {
		gatherer, registerer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: registerer,
	}))

	// --- Ops ---
	if d.Health != nil {
		e.GET("/health", d.Health.Liveness)
		e.GET("/health/ready", d.Health.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authn := middleware.Auth(d.Tokens)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Auth)
	auth := e.Group("/auth")
	auth.POST("/admin-login", authHandler.AdminLogin)
	auth.POST("/manager-login", authHandler.ManagerLogin)
	auth.POST("/employee-login", authHandler.EmployeeLogin)

	// --- Leads: public forms, staff follow-up ---
	leadHandler := handler.NewLeadHandler(d.Leads)
	contact := e.Group("/contact")
	contact.POST("", leadHandler.CaptureCustomer)
	contact.POST("/inquiries", leadHandler.SubmitContact)

	// Guarded per route so the public POST above stays unauthenticated.
	staff := []echo.MiddlewareFunc{authn, middleware.RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee)}
	contact.GET("/all", leadHandler.ListCustomers, staff...)
	contact.GET("/status/:status", leadHandler.ListByStatus, staff...)
	contact.PATCH("/update-status/:id", leadHandler.UpdateStatus, staff...)
	contact.GET("/stats", leadHandler.Stats, staff...)

	// --- Admin ---
	adminHandler := handler.NewAdminHandler(d.Admin)
	admin := e.Group("/admin", authn, middleware.RequireRole(domain.RoleAdmin))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.PATCH("/users/:id/status", adminHandler.ToggleUserStatus)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/customers", adminHandler.ListCustomers)
	admin.GET("/contacts", adminHandler.ListContacts)
	admin.GET("/search", adminHandler.Search)
	admin.GET("/analytics", adminHandler.Analytics)

	return e
}

// accessLog writes one zerolog line per request, tagged with the caller's
// role once the guard has authenticated it.
func accessLog(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev = ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP)
			if claims, ok := middleware.Claims(c); ok {
				ev = ev.Str("role", string(claims.Role)).Str("subject", claims.SubjectID)
			}
			ev.Msg("request")
			return nil
		},
	})
}
