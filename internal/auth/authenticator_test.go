package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/auth/authtest"
	"github.com/mirror-ball/mirrorball/internal/mock"
)

const testPool = "us-west-2_test"

func TestAuthenticate(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	other := authtest.NewIssuer(t)

	tests := []struct {
		name        string
		header      string
		restriction string
		wantErr     error
		wantGroups  []string
	}{
		{
			name:    "no header",
			header:  "",
			wantErr: auth.ErrMissingBearer,
		},
		{
			name:    "basic scheme",
			header:  "Basic dXNlcjpwYXNz",
			wantErr: auth.ErrMissingBearer,
		},
		{
			name:    "garbage token",
			header:  "Bearer not-a-jwt",
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "foreign signing key",
			header:  other.Bearer(t, map[string]any{"sub": "u1"}),
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "wrong issuer",
			header:  issuer.Bearer(t, map[string]any{"sub": "u1", "iss": "https://issuer.example.com"}),
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "expired",
			header:  issuer.Bearer(t, map[string]any{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:       "groups from token",
			header:     issuer.Bearer(t, map[string]any{"sub": "u1", "cognito:groups": []string{"admin"}}),
			wantGroups: []string{"admin"},
		},
		{
			name:       "no groups gets default",
			header:     issuer.Bearer(t, map[string]any{"sub": "u1", "cognito:username": "alice"}),
			wantGroups: []string{"dev"},
		},
		{
			name:        "restriction matches ignoring case",
			header:      issuer.Bearer(t, map[string]any{"sub": "u1", "email": "Alice@Example.COM", "cognito:groups": []string{"dev"}}),
			restriction: "example.com",
			wantGroups:  []string{"dev"},
		},
		{
			name:        "restriction does not match",
			header:      issuer.Bearer(t, map[string]any{"sub": "u1", "email": "alice@other.org", "cognito:groups": []string{"dev"}}),
			restriction: "example.com",
			wantErr:     auth.ErrRestricted,
		},
		{
			name:        "restriction without email",
			header:      issuer.Bearer(t, map[string]any{"sub": "u1", "cognito:groups": []string{"dev"}}),
			restriction: "example.com",
			wantErr:     auth.ErrRestricted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cognito := &mock.CognitoClient{}
			a := auth.NewAuthenticator(
				issuer.Verifier(),
				auth.NewCognitoGroups(cognito, testPool),
				authtest.Restriction(tt.restriction),
				auth.GroupDev,
			)

			principal, err := a.Authenticate(context.Background(), tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, principal)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantGroups, principal.Groups)
		})
	}
}

func TestAuthenticateNotConfigured(t *testing.T) {
	a := auth.NewAuthenticator(nil, nil, nil, "")

	_, err := a.Authenticate(context.Background(), "Bearer abc")
	require.ErrorIs(t, err, auth.ErrNotConfigured)
}

func TestAuthenticateTokenErrorDetails(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	a := auth.NewAuthenticator(issuer.Verifier(), nil, nil, "")

	_, err := a.Authenticate(context.Background(), "Bearer not-a-jwt")

	var tokenErr *auth.TokenError
	require.ErrorAs(t, err, &tokenErr)
	assert.NotEmpty(t, tokenErr.Details())
	assert.Contains(t, err.Error(), "Invalid token")
}

func TestAuthenticateAutoAssign(t *testing.T) {
	issuer := authtest.NewIssuer(t)

	t.Run("username preferred", func(t *testing.T) {
		cognito := &mock.CognitoClient{}
		a := auth.NewAuthenticator(issuer.Verifier(), auth.NewCognitoGroups(cognito, testPool), nil, "")

		_, err := a.Authenticate(context.Background(),
			issuer.Bearer(t, map[string]any{"sub": "sub-1", "cognito:username": "alice"}))
		require.NoError(t, err)

		assert.Equal(t, []mock.GroupAssignment{{UserPoolID: testPool, Username: "alice", Group: "dev"}}, cognito.Calls())
	})

	t.Run("falls back to subject", func(t *testing.T) {
		cognito := &mock.CognitoClient{}
		a := auth.NewAuthenticator(issuer.Verifier(), auth.NewCognitoGroups(cognito, testPool), nil, "")

		_, err := a.Authenticate(context.Background(), issuer.Bearer(t, map[string]any{"sub": "sub-1"}))
		require.NoError(t, err)

		calls := cognito.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "sub-1", calls[0].Username)
	})

	t.Run("failure proceeds without groups", func(t *testing.T) {
		cognito := &mock.CognitoClient{Err: errors.New("AccessDenied")}
		a := auth.NewAuthenticator(issuer.Verifier(), auth.NewCognitoGroups(cognito, testPool), nil, "")

		principal, err := a.Authenticate(context.Background(), issuer.Bearer(t, map[string]any{"sub": "sub-1"}))
		require.NoError(t, err)
		assert.Empty(t, principal.Groups)
	})

	t.Run("existing groups skip assignment", func(t *testing.T) {
		cognito := &mock.CognitoClient{}
		a := auth.NewAuthenticator(issuer.Verifier(), auth.NewCognitoGroups(cognito, testPool), nil, "")

		_, err := a.Authenticate(context.Background(),
			issuer.Bearer(t, map[string]any{"sub": "sub-1", "cognito:groups": []string{"admin"}}))
		require.NoError(t, err)
		assert.Empty(t, cognito.Calls())
	})

	t.Run("no assigner configured", func(t *testing.T) {
		a := auth.NewAuthenticator(issuer.Verifier(), nil, nil, "")

		principal, err := a.Authenticate(context.Background(), issuer.Bearer(t, map[string]any{"sub": "sub-1"}))
		require.NoError(t, err)
		assert.Empty(t, principal.Groups)
	})
}

func TestAuthenticateClaims(t *testing.T) {
	issuer := authtest.NewIssuer(t)
	a := auth.NewAuthenticator(issuer.Verifier(), nil, nil, "")

	principal, err := a.Authenticate(context.Background(), issuer.Bearer(t, map[string]any{
		"sub":              "sub-1",
		"email":            "alice@example.com",
		"cognito:username": "alice",
		"cognito:groups":   []string{"dev", "admin"},
	}))
	require.NoError(t, err)

	assert.Equal(t, auth.Claims{
		Subject:  "sub-1",
		Email:    "alice@example.com",
		Username: "alice",
		Groups:   []string{"dev", "admin"},
	}, principal.Claims)
	assert.True(t, principal.HasGroup("admin"))
	assert.True(t, principal.HasAnyGroup("ops", "dev"))
	assert.False(t, principal.HasGroup("ops"))
}

func TestEmailAllowed(t *testing.T) {
	a := auth.NewAuthenticator(nil, nil, authtest.Restriction("@example.com"), "")

	assert.True(t, a.EmailAllowed(context.Background(), "bob@EXAMPLE.com"))
	assert.False(t, a.EmailAllowed(context.Background(), "bob@example.org"))
	assert.False(t, a.EmailAllowed(context.Background(), ""))

	unrestricted := auth.NewAuthenticator(nil, nil, nil, "")
	assert.True(t, unrestricted.EmailAllowed(context.Background(), ""))
}
