// Package oidc provides the HTTP handlers of the hosted login flow.
//
// The flow is the OAuth2 authorization code flow:
//  1. GET /api/auth/login stores a random state and redirects to the hosted login page.
//  2. The provider redirects back to GET /api/auth/callback with code and state.
//  3. The state is consumed, the code is exchanged and the ID token is verified.
//  4. The browser is sent to the frontend with the ID token in the url fragment.
//
// GET /api/auth/logout redirects to the hosted logout page, which returns to the frontend.
package oidc
