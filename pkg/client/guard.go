package client

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Decision is the outcome of a Guard check.
type Decision int

const (
	RedirectLogin Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "redirect-login"
}

// Guard decides whether a client-side view may render for the stored token.
//
// The token payload is decoded without verifying the signature, so a Guard
// only shapes navigation. Access control is enforced by the server.
type Guard struct {
	AllowedRoles []string
}

// Check returns Allow when a token is stored and its role claim is one of
// AllowedRoles. Missing, undecodable or role-less tokens redirect to login.
func (g Guard) Check(store TokenStore) Decision {
	raw := store.Token()
	if raw == "" {
		return RedirectLogin
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return RedirectLogin
	}
	role, _ := claims["role"].(string)
	if role == "" || !slices.Contains(g.AllowedRoles, role) {
		return RedirectLogin
	}
	return Allow
}
