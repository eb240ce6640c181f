package auth

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleClient  = "CLIENT"
)

// RolesFromToken extracts the roles claim from a bearer token without
// verifying the signature. The middleware does full validation separately;
// this is only used to decide which screens and menu entries a session can
// see. Every decode failure is swallowed: the caller gets an empty slice and
// the guard treats the session as role-less.
func RolesFromToken(token string) []string {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		slog.Error("failed to decode token for roles", slog.String("Error", err.Error()))
		return []string{}
	}

	rawRoles, ok := claims["roles"].([]interface{})
	if !ok {
		return []string{}
	}

	roles := make([]string, 0, len(rawRoles))
	for _, r := range rawRoles {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

// TokenExpiry returns the exp claim of a token without verifying the
// signature. ok is false when the token cannot be decoded or carries no
// expiry, in which case the token must be treated as expired.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
