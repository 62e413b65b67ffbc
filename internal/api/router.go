package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cogere/artifact-host/docs"
	"github.com/cogere/artifact-host/internal/api/handler"
	"github.com/cogere/artifact-host/internal/api/middleware"
	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

// multipartOverhead is added to the artifact size limit to leave room for
// the metadata field and part headers.
const multipartOverhead = 1 << 20

// Dependencies are the services and settings the HTTP surface is built from.
type Dependencies struct {
	Auth      ports.AuthService
	Plugins   ports.PluginService
	Admin     ports.AdminService
	Checks    map[string]handler.Check
	Cookie    handler.CookieConfig
	MaxUpload int64
	Log       zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// process-wide default registry.
	Registry *prometheus.Registry
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "cogere",
		Registerer: registerer,
	}))
	if deps.MaxUpload > 0 {
		e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dB", deps.MaxUpload+multipartOverhead)))
	}

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	pluginHandler := handler.NewPluginHandler(deps.Plugins, deps.MaxUpload)
	adminHandler := handler.NewAdminHandler(deps.Admin)

	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)

	identity := middleware.Identity(deps.Auth, deps.Cookie.Name)
	e.GET("/plugins", pluginHandler.List, identity)
	e.GET("/plugins/:id", pluginHandler.Download, identity)
	e.POST("/plugins", pluginHandler.Upload, identity, middleware.RequirePermission(deps.Log, domain.PermissionUploadPlugin))
	e.DELETE("/plugins/:id", pluginHandler.Delete, identity, middleware.RequirePermission(deps.Log, domain.PermissionDeletePlugin))
	e.GET("/machine-keys", adminHandler.ListMachineKeys, identity, middleware.RequirePermission(deps.Log, domain.PermissionManageUsers))

	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(deps.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
