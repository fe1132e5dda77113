package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestGenerateToken(t *testing.T) {
	t.Run("Successfully generate token", func(t *testing.T) {
		token, err := GenerateToken(1, "staff@ptf.example", RoleStaff, testSecret)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("Fail with empty secret", func(t *testing.T) {
		token, err := GenerateToken(1, "staff@ptf.example", RoleStaff, "")

		assert.Error(t, err)
		assert.Equal(t, ErrEmptyJWTSecret, err)
		assert.Empty(t, token)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("Valid token round trip", func(t *testing.T) {
		token, err := GenerateToken(7, "desk@ptf.example", RoleStaff, testSecret)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.PrincipalID)
		assert.Equal(t, "desk@ptf.example", claims.Email)
		assert.Equal(t, RoleStaff, claims.Role)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := GenerateToken(7, "desk@ptf.example", RoleStaff, testSecret)
		require.NoError(t, err)

		_, err = ValidateToken(token, "other-secret")
		assert.Error(t, err)
	})

	t.Run("Expired token", func(t *testing.T) {
		claims := &Claims{
			PrincipalID: 7,
			Email:       "desk@ptf.example",
			Role:        RoleStaff,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  []string{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = ValidateToken(signed, testSecret)
		assert.Equal(t, ErrTokenExpired, err)
	})

	t.Run("Garbage token", func(t *testing.T) {
		_, err := ValidateToken("not-a-token", testSecret)
		assert.Error(t, err)
	})

	t.Run("Empty secret", func(t *testing.T) {
		_, err := ValidateToken("whatever", "")
		assert.Equal(t, ErrEmptyJWTSecret, err)
	})
}

func TestPrincipalIsSuperuser(t *testing.T) {
	assert.True(t, Principal{Role: RoleSuperuser}.IsSuperuser())
	assert.False(t, Principal{Role: RoleStaff}.IsSuperuser())
}
