package auth

import (
	"slices"
	"strings"
)

// Groups known to the API.
const (
	GroupDev   = "dev"
	GroupAdmin = "admin"
)

const unknownOwner = "unknown"

// Claims are the decoded fields of a verified token.
type Claims struct {
	Subject  string   `json:"sub"`
	Email    string   `json:"email,omitempty"`
	Username string   `json:"cognito:username,omitempty"`
	Groups   []string `json:"cognito:groups,omitempty"`
}

// Owner names the caller on stored images: username, else email, else "unknown".
func (c *Claims) Owner() string {
	switch {
	case c.Username != "":
		return c.Username
	case c.Email != "":
		return c.Email
	default:
		return unknownOwner
	}
}

// Principal is an authenticated caller with its effective groups.
type Principal struct {
	Claims Claims
	Groups []string
}

// HasGroup reports group membership.
func (p *Principal) HasGroup(group string) bool {
	return slices.Contains(p.Groups, group)
}

// HasAnyGroup reports membership in at least one of groups.
func (p *Principal) HasAnyGroup(groups ...string) bool {
	return slices.ContainsFunc(groups, p.HasGroup)
}

// EmailMatches applies the restriction rule: an empty restriction admits everyone,
// otherwise the email must be present and contain the restriction, ignoring case.
func EmailMatches(email, restriction string) bool {
	if restriction == "" {
		return true
	}

	if email == "" {
		return false
	}

	return strings.Contains(strings.ToLower(email), strings.ToLower(restriction))
}
