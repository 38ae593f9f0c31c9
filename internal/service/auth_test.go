package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-at-least-32-bytes!!"

func newTestAuthService(t *testing.T, password string) (*AuthService, *fakeUserRepository) {
	t.Helper()

	hash, err := HashPassword(password)
	require.NoError(t, err)

	users := newFakeUserRepository(&model.User{
		ID:           "w1",
		Email:        "worker@example.com",
		Name:         "Worker",
		Role:         model.RoleWorker,
		PasswordHash: &hash,
	})
	return NewAuthService(users, testSecret, time.Hour, true), users
}

func TestAuthService_Login(t *testing.T) {
	svc, users := newTestAuthService(t, "correct horse battery")
	ctx := context.Background()

	user, err := svc.Login(ctx, " Worker@Example.com ", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "w1", user.ID)

	_, err = svc.Login(ctx, "worker@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "correct horse battery")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.users["w1"].PasswordHash = nil
	_, err = svc.Login(ctx, "worker@example.com", "correct horse battery")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc, users := newTestAuthService(t, "correct horse battery")
	ctx := context.Background()

	token, expiresAt, err := svc.GenerateJWT(users.users["w1"])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := svc.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "w1", userID)

	caller, err := svc.Caller(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, &model.Caller{ID: "w1", Role: model.RoleWorker}, caller)

	// Role changes apply without a new token
	users.users["w1"].Role = model.RoleAdmin
	caller, err = svc.Caller(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, caller.Role)

	delete(users.users, "w1")
	_, err = svc.Caller(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_VerifyJWTRejects(t *testing.T) {
	svc, _ := newTestAuthService(t, "correct horse battery")

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	valid := jwt.MapClaims{"user_id": "w1", "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("another-secret"), valid)},
		{"expired", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": "w1", "exp": time.Now().Add(-time.Minute).Unix()})},
		{"missing user id", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})},
		{"none algorithm", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyJWT(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthService_Cookies(t *testing.T) {
	svc, _ := newTestAuthService(t, "correct horse battery")

	rec := httptest.NewRecorder()
	svc.SetJWTCookie(rec, "token-value", time.Now().Add(time.Hour))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AuthCookieName, cookies[0].Name)
	assert.Equal(t, "token-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	rec = httptest.NewRecorder()
	svc.ClearJWTCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
