package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/auth"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/common"
	"github.com/pcpc0424-creator/b2b-mall-sub000/internal/pricing"
)

func newTokens() *auth.Tokens {
	return &auth.Tokens{
		Secret:    []byte("test-secret-test-secret-test-1234"),
		Issuer:    "mall-api",
		Audience:  "mall-clients",
		AccessTTL: 15 * time.Minute,
	}
}

func TestSignParseRoundTrip(t *testing.T) {
	t.Parallel()

	tokens := newTokens()
	signed, _, err := tokens.Sign(auth.Claims{UserID: "user-1", Tier: "premium", Role: "admin"})
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "premium", claims.Tier)
	require.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signed, _, err := newTokens().Sign(auth.Claims{UserID: "user-1"})
	require.NoError(t, err)

	other := newTokens()
	other.Secret = []byte("another-secret-another-secret-xx")
	_, err = other.Parse(signed)
	require.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	tokens := newTokens()
	tokens.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, _, err := tokens.Sign(auth.Claims{UserID: "user-1"})
	require.NoError(t, err)

	tokens.Now = nil
	_, err = tokens.Parse(signed)
	require.Error(t, err)
}

func TestAuthenticateAttachesTier(t *testing.T) {
	t.Parallel()

	tokens := newTokens()
	signed, _, err := tokens.Sign(auth.Claims{UserID: "user-1", Tier: "vip"})
	require.NoError(t, err)

	mw := auth.Middleware{Tokens: tokens}
	var seen pricing.Tier
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, _ := common.TierName(r.Context())
		seen = pricing.ParseTier(name)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart/abc", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, pricing.TierVIP, seen)
}

func TestAuthenticateLetsAnonymousThroughAsGuest(t *testing.T) {
	t.Parallel()

	mw := auth.Middleware{Tokens: newTokens()}
	var seen pricing.Tier
	var called bool
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		name, _ := common.TierName(r.Context())
		seen = pricing.ParseTier(name)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/tee", nil))
	require.True(t, called)
	require.Equal(t, pricing.TierGuest, seen)
}

func TestRequireAdminForbidsShoppers(t *testing.T) {
	t.Parallel()

	tokens := newTokens()
	signed, _, err := tokens.Sign(auth.Claims{UserID: "user-1", Tier: "member"})
	require.NoError(t, err)

	mw := auth.Middleware{Tokens: tokens}
	handler := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPut, "/admin/products/x/options", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	t.Parallel()

	mw := auth.Middleware{Tokens: newTokens()}
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCookieFallback(t *testing.T) {
	t.Parallel()

	tokens := newTokens()
	signed, _, err := tokens.Sign(auth.Claims{UserID: "user-2", Tier: "member"})
	require.NoError(t, err)

	mw := auth.Middleware{Tokens: tokens, AccessCookie: "access_token"}
	var userID string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ = common.UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart/abc", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signed})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "user-2", userID)
}
