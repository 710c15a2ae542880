// Package authtest issues signed tokens for tests.
package authtest

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/mirror-ball/mirrorball/internal/auth"
)

// DefaultIssuer is the issuer of tokens signed by NewIssuer.
const DefaultIssuer = "https://cognito-idp.us-west-2.amazonaws.com/us-west-2_test"

// Issuer signs tokens with a throwaway RSA key.
type Issuer struct {
	URL    string
	KeySet *oidc.StaticKeySet
	key    *rsa.PrivateKey
}

// NewIssuer generates a signing key for DefaultIssuer.
func NewIssuer(t testing.TB) *Issuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048) //nolint:mnd
	require.NoError(t, err)

	return &Issuer{
		URL:    DefaultIssuer,
		KeySet: &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
		key:    key,
	}
}

// Verifier returns a bearer token verifier trusting this issuer.
func (i *Issuer) Verifier() *auth.TokenVerifier {
	return auth.NewTokenVerifier(i.URL, i.KeySet)
}

// Token signs claims. iss, iat and exp are filled when absent.
func (i *Issuer) Token(t testing.TB, claims map[string]any) string {
	t.Helper()

	body := map[string]any{
		"iss": i.URL,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range claims {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: i.key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(t, err)

	signed, err := signer.Sign(payload)
	require.NoError(t, err)

	raw, err := signed.CompactSerialize()
	require.NoError(t, err)

	return raw
}

// Bearer signs claims and returns an Authorization header value.
func (i *Issuer) Bearer(t testing.TB, claims map[string]any) string {
	t.Helper()

	return "Bearer " + i.Token(t, claims)
}

// Restriction is a fixed restriction source.
type Restriction string

// Restriction implements auth.RestrictionSource.
func (r Restriction) Restriction(_ context.Context) string {
	return string(r)
}
