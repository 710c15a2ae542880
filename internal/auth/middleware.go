package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// LocalsPrincipal is the fiber.Locals key of the authenticated Principal.
const LocalsPrincipal = "principal"

// Authenticate creates Fiber middleware that requires a valid bearer token.
func Authenticate(a *Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := a.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		c.Locals(LocalsPrincipal, principal)

		return c.Next()
	}
}

// PrincipalFrom returns the caller stored by Authenticate, nil on unauthenticated routes.
func PrincipalFrom(c *fiber.Ctx) *Principal {
	principal, _ := c.Locals(LocalsPrincipal).(*Principal)
	return principal
}

// RequireAnyGroup creates Fiber middleware that requires membership in one of groups.
// denied is returned otherwise.
func RequireAnyGroup(denied error, groups ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if principal == nil {
			return ErrMissingBearer
		}

		if !principal.HasAnyGroup(groups...) {
			log.Warn().Str("owner", principal.Claims.Owner()).Strs("groups", principal.Groups).
				Strs("required", groups).Msg("User lacks required group")

			return denied
		}

		return c.Next()
	}
}

// RequireEmailAllowed creates Fiber middleware that re-checks the email restriction.
func RequireEmailAllowed(a *Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if principal == nil {
			return ErrMissingBearer
		}

		if !a.EmailAllowed(c.UserContext(), principal.Claims.Email) {
			return ErrUploadsRestricted
		}

		return c.Next()
	}
}
