package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuth() *AuthService {
	return NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})
}

func TestTokenRoundTrip(t *testing.T) {
	s := testAuth()
	id := uuid.New()

	token, err := s.GenerateToken(id, "ada@uni.test", model.RoleProfessor, 0)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, model.RoleProfessor, claims.Role)
	assert.Equal(t, "ada@uni.test", claims.Email)
	assert.Equal(t, Actor{ID: id, Role: model.RoleProfessor}, claims.Actor())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateTokenRejects(t *testing.T) {
	s := testAuth()

	_, err := s.GenerateToken(uuid.New(), "", model.Role("guest"), time.Minute)
	assert.ErrorIs(t, err, ErrInvalidRole)

	past := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		UserID:           uuid.New(),
		Role:             model.RoleStudent,
	})
	signed, err := past.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.ValidateToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour})
	foreign, err := other.GenerateToken(uuid.New(), "", model.RoleAdmin, 0)
	require.NoError(t, err)
	_, err = s.ValidateToken(foreign)
	assert.Error(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: model.RoleStudent})
	signed, err = noUser.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.ValidateToken(signed)
	assert.Error(t, err)
}
