// Package roles resolves the caller's canonical role from the claims carried in a
// backend-issued access token.
package roles

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fitplate/dashboard"
)

// Role is one of the canonical roles the dashboard trusts for authorization decisions
type Role string

const (
	// None means no recognized role could be resolved; it is never treated as a role
	None  Role = ""
	Admin Role = "ADMIN"
	User  Role = "USER"
)

// ErrMalformedToken is returned when an access token's payload cannot be decoded
var ErrMalformedToken = errors.New("access token payload could not be decoded")

// Valid reports whether r is one of the canonical roles
func (r Role) Valid() bool {
	return r == Admin || r == User
}

// Normalize reduces a raw role claim value to a canonical role. Matching is
// case-insensitive and by substring, with ADMIN taking precedence over USER, so that
// values like "ROLE_ADMIN" or "app-user" resolve as expected. Anything else is None.
func Normalize(raw string) Role {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, string(Admin)):
		return Admin
	case strings.Contains(upper, string(User)):
		return User
	}
	return None
}

// ExtractClaim finds the raw role value in a decoded token payload. The first of
// these that yields a value wins:
//
//  1. a claim named exactly "role"
//  2. any claim whose name contains "role", case-insensitively, in sorted key order
//  3. the first element of a "roles" list
//  4. the first element of an "authorities" list
//
// An empty string means no role claim was found.
func ExtractClaim(claims map[string]any) string {
	if v := claimString(claims["role"]); v != "" {
		return v
	}

	// TODO: step 2 papers over inconsistent claim names from the backend; drop it once
	// the backend commits to a single role claim
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), "role") {
			if v := claimString(claims[k]); v != "" {
				return v
			}
		}
	}

	if v := firstListElement(claims["roles"]); v != "" {
		return v
	}
	return firstListElement(claims["authorities"])
}

// FromClaims extracts and normalizes the role claim from a decoded token payload
func FromClaims(claims map[string]any) Role {
	return Normalize(ExtractClaim(claims))
}

// FromAccessToken decodes the payload of a JWT access token and resolves its role.
// The signature is not checked: the backend verifies tokens on every call, and the
// dashboard only needs to know which landing page and guards apply.
func FromAccessToken(token string) (Role, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return None, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return FromClaims(claims), nil
}

// LandingPath returns the default destination for a caller with the given role
func LandingPath(role Role) string {
	switch role {
	case Admin:
		return dashboard.AdminLandingPath
	case User:
		return dashboard.UserLandingPath
	}
	return dashboard.LoginPath
}

func claimString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		return firstListElement(v)
	case []string:
		return firstListElement(v)
	}
	return ""
}

func firstListElement(value any) string {
	switch v := value.(type) {
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
