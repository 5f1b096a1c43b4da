package roles

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Normalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"ADMIN", Admin},
		{"admin", Admin},
		{"ROLE_ADMIN", Admin},
		{"SuperAdmin", Admin},
		{"USER", User},
		{"role_user", User},
		{"app-User", User},
		{"USER_ADMIN", Admin},
		{"", None},
		{"GUEST", None},
		{"moderator", None},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func Test_ExtractClaim(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   string
	}{
		{
			"direct role claim wins",
			map[string]any{"role": "ROLE_ADMIN", "roles": []any{"USER"}},
			"ROLE_ADMIN",
		},
		{
			"empty direct role falls through to other claims",
			map[string]any{"role": "", "userRole": "USER"},
			"USER",
		},
		{
			"claim name containing role is matched case-insensitively",
			map[string]any{"sub": "42", "https://fitplate.app/ROLE": "admin"},
			"admin",
		},
		{
			"keys containing role are scanned in sorted order",
			map[string]any{"zRole": "USER", "aRole": "ADMIN"},
			"ADMIN",
		},
		{
			"roles list uses first element",
			map[string]any{"roles": []any{"ROLE_USER", "ROLE_ADMIN"}},
			"ROLE_USER",
		},
		{
			"authorities list uses first element",
			map[string]any{"authorities": []any{"ROLE_ADMIN"}},
			"ROLE_ADMIN",
		},
		{
			"empty lists yield nothing",
			map[string]any{"roles": []any{}, "authorities": []any{}},
			"",
		},
		{
			"non-string claim values are ignored",
			map[string]any{"role": 7, "authorities": []any{3}},
			"",
		},
		{
			"no claims",
			map[string]any{},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractClaim(tt.claims))
		})
	}
}

func Test_FromAccessToken(t *testing.T) {
	sign := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unrelated-secret"))
		require.NoError(t, err)
		return token
	}

	t.Run("ROLE_ADMIN claim resolves to ADMIN", func(t *testing.T) {
		role, err := FromAccessToken(sign(jwt.MapClaims{"role": "ROLE_ADMIN"}))
		assert.NoError(t, err)
		assert.Equal(t, Admin, role)
		assert.Equal(t, "/admin/foods", LandingPath(role))
	})
	t.Run("authorities claim resolves to USER", func(t *testing.T) {
		role, err := FromAccessToken(sign(jwt.MapClaims{"authorities": []string{"ROLE_USER"}}))
		assert.NoError(t, err)
		assert.Equal(t, User, role)
		assert.Equal(t, "/user/current-plan", LandingPath(role))
	})
	t.Run("unrecognized role resolves to None without error", func(t *testing.T) {
		role, err := FromAccessToken(sign(jwt.MapClaims{"role": "ROLE_COACH"}))
		assert.NoError(t, err)
		assert.Equal(t, None, role)
		assert.False(t, role.Valid())
		assert.Equal(t, "/login", LandingPath(role))
	})
	t.Run("opaque token is malformed", func(t *testing.T) {
		role, err := FromAccessToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrMalformedToken)
		assert.Equal(t, None, role)
	})
}
