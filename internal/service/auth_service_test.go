package service_test

import (
	"context"
	"testing"
	"time"

	"weeklygrind/plan-tracker/internal/repository/memory"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func newAuthService() service.AuthService {
	repos := memory.NewRepositories(memory.NewStore(), true)
	return service.NewAuthService(repos.Users, testJWTSecret, time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	user, err := auth.Register(ctx, " Lifter@Example.com ", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "lifter@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	token, loggedIn, err := auth.Login(ctx, "lifter@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims["uid"])

	got, err := auth.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "lifter@example.com", got.Email)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()
	_, err := auth.Register(ctx, "taken@example.com", "longenough")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		expected error
	}{
		{name: "bad email", email: "not-an-email", password: "longenough", expected: service.ErrValidationFailed},
		{name: "short password", email: "new@example.com", password: "short", expected: service.ErrValidationFailed},
		{name: "duplicate", email: "TAKEN@example.com", password: "longenough", expected: service.ErrUserAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()
	_, err := auth.Register(ctx, "lifter@example.com", "correct-horse")
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "lifter@example.com", "wrong-horse")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)

	_, _, err = auth.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)

	_, _, err = auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, service.ErrValidationFailed)
}
