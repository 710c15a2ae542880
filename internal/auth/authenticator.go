package auth

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

const bearerPrefix = "Bearer "

// RestrictionSource yields the active email restriction, empty when unrestricted.
type RestrictionSource interface {
	Restriction(ctx context.Context) string
}

// Authenticator turns an Authorization header into a Principal.
type Authenticator struct {
	verifier     Verifier
	groups       GroupAssigner
	restrictions RestrictionSource
	defaultGroup string
}

// NewAuthenticator wires the checks. A nil verifier answers every request with ErrNotConfigured,
// a nil group assigner disables auto assignment, a nil restriction source means unrestricted.
func NewAuthenticator(verifier Verifier, groups GroupAssigner, restrictions RestrictionSource, defaultGroup string) *Authenticator {
	if defaultGroup == "" {
		defaultGroup = GroupDev
	}

	return &Authenticator{
		verifier:     verifier,
		groups:       groups,
		restrictions: restrictions,
		defaultGroup: defaultGroup,
	}
}

// Authenticate verifies the bearer token in header and applies group assignment and the email restriction.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, ErrMissingBearer
	}

	if a.verifier == nil {
		log.Error().Msg("token verifier not initialized, user pool id missing")
		return nil, ErrNotConfigured
	}

	claims, err := a.verifier.Verify(ctx, strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("token validation failed")
		return nil, &TokenError{Err: err}
	}

	principal := &Principal{Claims: *claims, Groups: claims.Groups}
	if len(principal.Groups) == 0 {
		principal.Groups = a.assignDefaultGroup(ctx, claims)
	}

	restriction := a.restriction(ctx)
	if !EmailMatches(claims.Email, restriction) {
		log.Ctx(ctx).Info().Str("email", claims.Email).Str("restriction", restriction).Msg("access denied by restriction")
		return nil, ErrRestricted
	}

	return principal, nil
}

// EmailAllowed re-checks the restriction for write routes.
func (a *Authenticator) EmailAllowed(ctx context.Context, email string) bool {
	return EmailMatches(email, a.restriction(ctx))
}

func (a *Authenticator) restriction(ctx context.Context) string {
	if a.restrictions == nil {
		return ""
	}

	return a.restrictions.Restriction(ctx)
}

// assignDefaultGroup adds a group-less user to the default group.
// A failure is logged and the request proceeds without groups.
func (a *Authenticator) assignDefaultGroup(ctx context.Context, claims *Claims) []string {
	if a.groups == nil {
		return nil
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}

	log.Ctx(ctx).Info().Str("username", username).Str("group", a.defaultGroup).Msg("auto-assigning default group")

	if err := a.groups.AddUserToGroup(ctx, username, a.defaultGroup); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("username", username).Msg("failed to auto-assign group")
		return nil
	}

	return []string{a.defaultGroup}
}
