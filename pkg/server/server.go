package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/middleware"
	enrollmentroutes "github.com/Ramsey-B/fern/pkg/routes/enrollment"
	grouproutes "github.com/Ramsey-B/fern/pkg/routes/group"
	grouptyperoutes "github.com/Ramsey-B/fern/pkg/routes/grouptype"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	tenantroutes "github.com/Ramsey-B/fern/pkg/routes/tenant"
	userroutes "github.com/Ramsey-B/fern/pkg/routes/user"
)

// Version is stamped at build time
var Version = "dev"

// Server wraps the HTTP server and its route tree
type Server struct {
	echo    *echo.Echo
	cfg     config.Config
	logger  ectologger.Logger
	checker *health.Checker
}

// New assembles the HTTP server: middleware, routes, and health checks
func New(cfg config.Config, logger ectologger.Logger, db database.DB) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	checker := health.NewChecker(db, Version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	grouptyperoutes.Register(api.Group("/group-types"))
	grouproutes.Register(api.Group("/groups"))

	users := api.Group("/users")
	userroutes.Register(users)
	enrollmentroutes.Register(users)

	tenantroutes.Register(api.Group("/tenant"))

	return &Server{
		echo:    e,
		cfg:     cfg,
		logger:  logger,
		checker: checker,
	}
}

// SetReady flips the readiness probe
func (s *Server) SetReady(ready bool) {
	s.checker.SetReady(ready)
}

// Start blocks serving HTTP until the server is shut down
func (s *Server) Start() error {
	s.logger.WithField("port", s.cfg.Port).Infof("Starting HTTP server on port %d", s.cfg.Port)
	return s.echo.Start(fmt.Sprintf(":%d", s.cfg.Port))
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.checker.SetReady(false)
	return s.echo.Shutdown(ctx)
}
