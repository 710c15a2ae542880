// Package configuration reads and replaces the global configuration.
package configuration

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/appconfig"
	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/web/handler"
)

const (
	// Path is the configuration route.
	Path = "/config"

	// InvalidConfig is the error message for a rejected body.
	InvalidConfig = "Invalid configuration data"
)

// Response is the configuration as seen by the caller.
type Response struct {
	UserRestriction string `json:"userRestriction"`
	IsRestricted    bool   `json:"isRestricted"`
}

// Body replaces the configuration. A missing restriction clears it.
type Body struct {
	UserRestriction *string `json:"userRestriction,omitempty" validate:"omitempty,max=255"`
}

// SetResponse echoes the stored configuration.
type SetResponse struct {
	OK     bool             `json:"ok"`
	Config models.AppConfig `json:"config"`
}

// Service is the configuration handler service.
type Service struct {
	configs   *appconfig.Service
	validator *validator.Validate
}

// New creates the configuration handler.
func New(configs *appconfig.Service) *Service {
	return &Service{configs: configs, validator: handler.NewValidator()}
}

// Init registers the routes. Reading needs a valid token, writing the admin group.
func (s *Service) Init(router fiber.Router, authenticator *auth.Authenticator) {
	if router == nil || authenticator == nil || s.configs == nil {
		log.Fatal().Msg(handler.ErrNilFatalLogMsg)
		return
	}

	router.Get(Path, auth.Authenticate(authenticator), s.Get)
	router.Post(Path,
		auth.Authenticate(authenticator),
		auth.RequireAnyGroup(auth.ErrAdminOnly, auth.GroupAdmin),
		s.Set,
	)
}

// Get returns the restriction and whether it shuts out the caller.
func (s *Service) Get(c *fiber.Ctx) error {
	cfg := s.configs.Get(c.UserContext())
	principal := auth.PrincipalFrom(c)

	return c.JSON(Response{
		UserRestriction: cfg.UserRestriction,
		IsRestricted:    cfg.IsRestricted() && !auth.EmailMatches(principal.Claims.Email, cfg.UserRestriction),
	})
}

// Set replaces the configuration and drops the cached copy.
func (s *Service) Set(c *fiber.Ctx) error {
	var body Body
	if err := handler.BindAndValidate(c, s.validator, &body, InvalidConfig); err != nil {
		return err
	}

	cfg := models.DefaultAppConfig()
	if body.UserRestriction != nil {
		cfg.UserRestriction = *body.UserRestriction
	}

	if err := s.configs.Set(c.UserContext(), cfg); err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Str("owner", auth.PrincipalFrom(c).Claims.Owner()).
		Str("userRestriction", cfg.UserRestriction).Msg("global configuration replaced")

	return c.JSON(SetResponse{OK: true, Config: cfg})
}
