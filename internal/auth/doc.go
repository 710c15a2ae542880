// Package auth verifies bearer tokens issued by the identity provider and decides who may call what.
//
// Authenticator.Authenticate runs the checks in order:
//   - the Authorization header must carry a Bearer token
//   - a verifier must be configured
//   - the token signature and issuer are checked against the issuer's key set
//   - callers without any group are added to the default group
//   - the dynamic email restriction from the global configuration is applied
//
// The fiber middlewares wrap these checks for route protection:
//
//	api.Post("/presign-upload",
//	    auth.Authenticate(authenticator),
//	    auth.RequireAnyGroup(auth.ErrForbidden, auth.GroupDev, auth.GroupAdmin),
//	    auth.RequireEmailAllowed(authenticator),
//	    handler,
//	)
//
// HostedUI drives the authorization code flow of the provider's hosted login pages.
package auth
