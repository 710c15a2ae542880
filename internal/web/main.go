// Package web serves the json api with fiber.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/appconfig"
	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/config"
	"github.com/mirror-ball/mirrorball/internal/gallery"
	fiberlogger "github.com/mirror-ball/mirrorball/internal/logger/adapter/fiber"
	"github.com/mirror-ball/mirrorball/internal/web/handler"
	oidchandler "github.com/mirror-ball/mirrorball/internal/web/handler/auth/oidc"
	"github.com/mirror-ball/mirrorball/internal/web/handler/configuration"
	"github.com/mirror-ball/mirrorball/internal/web/handler/health"
	"github.com/mirror-ball/mirrorball/internal/web/handler/images"
	"github.com/mirror-ball/mirrorball/internal/web/handler/uploads"
	"github.com/mirror-ball/mirrorball/internal/web/session"
)

const (
	allowMethods = "GET,POST,DELETE,OPTIONS"
	allowHeaders = "Authorization,Content-Type,X-Request-ID"
	corsMaxAge   = 600
)

// Deps are the services behind the routes.
type Deps struct {
	Gallery       *gallery.Service
	AppConfig     *appconfig.Service
	Authenticator *auth.Authenticator
	HostedUI      *auth.HostedUI // nil disables hosted login
	Sessions      *session.Store
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	sessions     *session.Store
}

// Start listens on addr and blocks until the server is shut down.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("fiber listen error")
		return err //nolint:wrapcheck
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so the health check returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	if err := s.sessions.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close shared state storage")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the service accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, deps Deps) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if deps.Gallery == nil || deps.AppConfig == nil || deps.Authenticator == nil {
		panic("gallery, app config and authenticator are required")
	}

	if deps.Sessions == nil {
		deps.Sessions = session.New(nil)
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize:        max(cfg.Webserver.ReadBufferSize, 4096), //nolint:mnd
			AppName:               cfg.Title,
			CaseSensitive:         true,
			Prefork:               false,
			Immutable:             true,
			DisableStartupMessage: !cfg.DevMode,
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
			ErrorHandler:          ErrorHandler,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode,
		sessions:     deps.Sessions,
	}
	service.alive.Store(true)

	app.Use(countRequests)
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Config: cfg.Log}))
	app.Use(cors.New(cors.Config{
		Next:         func(c *fiber.Ctx) bool { return c.Method() == fiber.MethodOptions },
		AllowOrigins: cfg.Webserver.AllowOrigins,
		AllowMethods: allowMethods,
		AllowHeaders: allowHeaders,
		MaxAge:       corsMaxAge,
	}))

	app.Use(preflight(cfg.Webserver.AllowOrigins))

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	health.New(service.Alive).Init(app)

	api := app.Group(handler.APIPath)

	uploads.New(deps.Gallery).Init(api, deps.Authenticator, presignLimiter(cfg.Webserver.RateLimit, deps.Sessions))
	images.New(deps.Gallery).Init(api, deps.Authenticator)
	configuration.New(deps.AppConfig).Init(api, deps.Authenticator)
	oidchandler.New(deps.HostedUI, deps.Sessions, cfg.Webserver.FrontendURL).Init(api)

	return service
}

// presignLimiter limits upload url requests per client IP. Counters share the session storage.
func presignLimiter(cfg config.RateLimit, sessions *session.Store) fiber.Handler {
	if !cfg.Enabled {
		return nil
	}

	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Expiration,
		Storage:    sessions.Storage,
		LimitReached: func(_ *fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	})
}

// preflight answers every OPTIONS request with the allow headers and {"ok": true}.
// It is middleware rather than a route so unknown paths keep answering 404 for other methods.
func preflight(allowOrigins string) fiber.Handler {
	origins := strings.Split(strings.ReplaceAll(allowOrigins, " ", ""), ",")

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}

		origin := c.Get(fiber.HeaderOrigin)

		switch {
		case allowOrigins == "" || allowOrigins == "*":
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Vary(fiber.HeaderOrigin)
		}

		c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)
		c.Set(fiber.HeaderAccessControlMaxAge, strconv.Itoa(corsMaxAge))

		return c.JSON(handler.OK{OK: true})
	}
}
