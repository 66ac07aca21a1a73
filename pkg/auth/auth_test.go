package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfshrms/worktracker/pkg/auth"
	"github.com/tfshrms/worktracker/pkg/config"
	"github.com/tfshrms/worktracker/pkg/logger"
)

func newVerifier() *auth.Verifier {
	return auth.NewVerifier(&config.JWTConfig{Secret: "test-secret", Issuer: "worktracker"})
}

func serve(t *testing.T, required bool, req *http.Request) (*httptest.ResponseRecorder, int64, bool) {
	t.Helper()
	var (
		got   int64
		found bool
	)
	h := auth.Middleware(newVerifier(), required, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = auth.ViewerID(r)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, got, found
}

func TestVerifier_SignAndVerify(t *testing.T) {
	v := newVerifier()
	token, err := v.Sign(auth.Claims{UserID: 42, Role: "qa"})
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "qa", claims.Role)
}

func TestVerifier_SubjectFallback(t *testing.T) {
	v := newVerifier()
	token, err := v.Sign(auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "17"}})
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(17), claims.UserID)
}

func TestVerifier_RejectsWrongSecretAndExpired(t *testing.T) {
	other := auth.NewVerifier(&config.JWTConfig{Secret: "other", Issuer: "worktracker"})
	token, err := other.Sign(auth.Claims{UserID: 1})
	require.NoError(t, err)
	_, err = newVerifier().Verify(token)
	assert.Error(t, err)

	expired, err := newVerifier().Sign(auth.Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	require.NoError(t, err)
	_, err = newVerifier().Verify(expired)
	assert.Error(t, err)
}

func TestMiddleware_Bearer(t *testing.T) {
	token, err := newVerifier().Sign(auth.Claims{UserID: 9})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr, id, ok := serve(t, true, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
}

func TestMiddleware_RequiredWithoutToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "9")

	rr, _, _ := serve(t, true, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddleware_InvalidTokenRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	rr, _, _ := serve(t, false, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddleware_Fallbacks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?logged_in_user_id=12", nil)
	_, id, ok := serve(t, false, req)
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "not-a-number")
	_, _, ok = serve(t, false, req)
	assert.False(t, ok)
}
