package oidc

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/apierror"
	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/web/handler"
	"github.com/mirror-ball/mirrorball/internal/web/session"
)

const (
	// LoginPath is the path to initiate the hosted login.
	LoginPath = "/auth/login"

	// CallbackPath is the path the provider redirects back to.
	CallbackPath = "/auth/callback"

	// LogoutPath is the path for hosted logout.
	LogoutPath = "/auth/logout"
)

// Service is the hosted login handler service.
type Service struct {
	hostedUI    *auth.HostedUI
	states      *session.Store
	frontendURL string
}

// New creates the handler. A nil hostedUI leaves the routes unregistered.
func New(hostedUI *auth.HostedUI, states *session.Store, frontendURL string) *Service {
	return &Service{hostedUI: hostedUI, states: states, frontendURL: frontendURL}
}

// Init registers the login routes when hosted login is configured.
func (s *Service) Init(router fiber.Router) {
	if router == nil || s.states == nil {
		log.Fatal().Msg(handler.ErrNilFatalLogMsg)
		return
	}

	if s.hostedUI == nil {
		log.Info().Msg("hosted login is disabled by configuration")
		return
	}

	router.Get(LoginPath, s.Login)
	router.Get(CallbackPath, s.Callback)
	router.Get(LogoutPath, s.Logout)
}

// Login initiates the hosted login flow.
func (s *Service) Login(c *fiber.Ctx) error {
	// Generate state token for CSRF protection
	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate state token")
		return err //nolint:wrapcheck
	}

	if err = s.states.PutState(state); err != nil {
		log.Error().Err(err).Msg("Failed to store state token")
		return err //nolint:wrapcheck
	}

	return c.Redirect(s.hostedUI.AuthURL(state))
}

// Callback handles the provider redirect.
func (s *Service) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		log.Warn().Msg("Missing code or state in login callback")
		return apierror.New(fiber.StatusBadRequest, "Invalid callback parameters", nil)
	}

	ok, err := s.states.TakeState(state)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if !ok {
		log.Warn().Msg("Invalid or expired state token")
		return apierror.New(fiber.StatusBadRequest, "Invalid state token", nil)
	}

	rawIDToken, claims, err := s.hostedUI.Exchange(c.UserContext(), code)
	if err != nil {
		log.Error().Err(err).Msg("hosted login failed")
		return apierror.New(fiber.StatusUnauthorized, "Authentication failed", nil)
	}

	log.Info().Str("owner", claims.Owner()).Msg("User logged in via hosted login")

	return c.Redirect(s.frontendURL + "#id_token=" + rawIDToken)
}

// Logout redirects to the hosted logout page.
func (s *Service) Logout(c *fiber.Ctx) error {
	return c.Redirect(s.hostedUI.LogoutURL())
}
