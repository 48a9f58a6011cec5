package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                strings.Repeat("s", 32),
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "fambrifarms-backend",
	})
}

func TestGenerateToken(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	issued, err := svc.GenerateToken(userID, "karl", RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)
}

func TestValidateToken(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	issued, err := svc.GenerateToken(userID, "karl", RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "karl", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "fambrifarms-backend", claims.Issuer)

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
	assert.True(t, claims.IsAdmin())
	assert.Greater(t, claims.GetRemainingTTL(), time.Duration(0))
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                strings.Repeat("s", 32),
		AccessTokenExpiration: -time.Minute,
		Issuer:                "fambrifarms-backend",
	})

	issued, err := svc.GenerateToken(uuid.New(), "karl", RoleStaff)
	require.NoError(t, err)

	_, err = svc.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestService()
	issued, err := svc.GenerateToken(uuid.New(), "karl", RoleStaff)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                strings.Repeat("x", 32),
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "fambrifarms-backend",
	})

	_, err = other.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSigningMethod(t *testing.T) {
	svc := newTestService()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: uuid.New().String(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_MissingUserID(t *testing.T) {
	svc := newTestService()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: "karl",
	})
	signed, err := token.SignedString([]byte(strings.Repeat("s", 32)))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestService()
	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
