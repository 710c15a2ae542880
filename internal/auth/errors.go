package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrMissingBearer is returned when the request carries no bearer token.
	ErrMissingBearer = errors.New("Missing Bearer token") //nolint:staticcheck

	// ErrNotConfigured is returned when no user pool or issuer is configured.
	ErrNotConfigured = errors.New("Auth not configured") //nolint:staticcheck

	// ErrInvalidToken is matched by TokenError.
	ErrInvalidToken = errors.New("Invalid token") //nolint:staticcheck

	// ErrRestricted is returned when the caller's email does not fit the global restriction.
	ErrRestricted = errors.New("Access restricted. Your email does not fit criteria.") //nolint:staticcheck

	// ErrForbidden is returned when the caller is neither developer nor admin.
	ErrForbidden = errors.New("Forbidden") //nolint:staticcheck

	// ErrAdminOnly is returned when an admin route is called by a non-admin.
	ErrAdminOnly = errors.New("Admin only") //nolint:staticcheck

	// ErrUploadsRestricted is returned by write routes when the caller's email does not fit the restriction.
	ErrUploadsRestricted = errors.New("Uploads restricted to company domain") //nolint:staticcheck

	// ErrHostedUIDisabled is returned when no hosted login domain or client id is configured.
	ErrHostedUIDisabled = errors.New("hosted login is not configured")

	// ErrInvalidState is returned when a login callback carries an unknown or expired state.
	ErrInvalidState = errors.New("invalid login state")
)

// TokenError wraps the verification failure of a bearer token.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string {
	return ErrInvalidToken.Error() + ": " + e.Err.Error()
}

// Unwrap returns the verification failure.
func (e *TokenError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidToken) true.
func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// Details is sent to the client next to the error message.
func (e *TokenError) Details() any {
	return e.Err.Error()
}
