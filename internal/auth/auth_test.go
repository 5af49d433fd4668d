package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestHashPassword(t *testing.T) {
	t.Run("Successfully hash password", func(t *testing.T) {
		hashed, err := HashPassword("reception2024")

		assert.NoError(t, err)
		assert.NotEmpty(t, hashed)
		assert.NotEqual(t, "reception2024", hashed)
	})

	t.Run("Different hashes for same password", func(t *testing.T) {
		hash1, _ := HashPassword("samePassword")
		hash2, _ := HashPassword("samePassword")

		// bcrypt солит каждый хеш
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestCheckPassword(t *testing.T) {
	hashed, _ := HashPassword("correctPassword")

	assert.True(t, CheckPassword(hashed, "correctPassword"))
	assert.False(t, CheckPassword(hashed, "wrongPassword"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestGenerateTokens(t *testing.T) {
	t.Run("Pair carries matching claims", func(t *testing.T) {
		pair, err := GenerateTokens(7, "desk@challenger.kg", RoleManager, testSecret)
		require.NoError(t, err)

		access, err := ValidateToken(pair.AccessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, int64(7), access.StaffID)
		assert.Equal(t, RoleManager, access.Role)
		assert.Equal(t, tokenAccess, access.TokenType)

		refresh, err := ValidateToken(pair.RefreshToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, tokenRefresh, refresh.TokenType)
		assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
	})

	t.Run("Fail with empty secret", func(t *testing.T) {
		_, err := GenerateTokens(1, "desk@challenger.kg", RoleAdmin, "")
		assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("Fail with wrong secret", func(t *testing.T) {
		token, _ := GenerateAccessToken(1, "a@b.kg", RoleAdmin, testSecret)

		claims, err := ValidateToken(token, "wrong-secret")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with invalid token format", func(t *testing.T) {
		claims, err := ValidateToken("invalid.token.format", testSecret)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		token, err := signToken(1, "a@b.kg", RoleAdmin, tokenAccess, testSecret, time.Minute, past)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		assert.Equal(t, ErrTokenExpired, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with foreign issuer", func(t *testing.T) {
		claims := &Claims{
			StaffID:   1,
			TokenType: tokenAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				Audience:  []string{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

		_, err := ValidateToken(token, testSecret)
		assert.Error(t, err)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	t.Run("Successfully refresh access token", func(t *testing.T) {
		refresh, _ := GenerateRefreshToken(3, "admin@challenger.kg", RoleAdmin, testSecret)

		access, claims, err := RefreshAccessToken(refresh, testSecret)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.Equal(t, int64(3), claims.StaffID)
	})

	t.Run("Access token cannot refresh", func(t *testing.T) {
		access, _ := GenerateAccessToken(3, "admin@challenger.kg", RoleAdmin, testSecret)

		_, _, err := RefreshAccessToken(access, testSecret)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleManager))
	assert.False(t, ValidRole("member"))
}
