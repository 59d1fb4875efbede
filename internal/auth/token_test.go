package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-adoption-marketplace/internal/config"
	domainUser "pet-adoption-marketplace/internal/domain/user"
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "pet-adoption-test",
	}
}

func testUser() *domainUser.User {
	return &domainUser.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Example",
		Role:     domainUser.RoleUser,
	}
}

func TestNewTokenService_RejectsBadSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSecret = ""
	_, err := NewTokenService(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	_, err = NewTokenService(cfg)
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	tokens, err := NewTokenService(testConfig())
	require.NoError(t, err)
	u := testUser()

	access, expiresAt, err := tokens.IssueAccessToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := tokens.Verify(access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, u.Username, claims.Username)
	assert.Equal(t, u.Role, claims.Role)
	assert.Equal(t, "pet-adoption-test", claims.Issuer)

	refresh, _, err := tokens.IssueRefreshToken(u)
	require.NoError(t, err)
	claims, err = tokens.Verify(refresh, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Empty(t, claims.Email)
}

func TestTokenService_KindsDoNotCross(t *testing.T) {
	tokens, err := NewTokenService(testConfig())
	require.NoError(t, err)
	u := testUser()

	access, _, err := tokens.IssueAccessToken(u)
	require.NoError(t, err)
	refresh, _, err := tokens.IssueRefreshToken(u)
	require.NoError(t, err)

	_, err = tokens.Verify(access, RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tokens.Verify(refresh, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Expired(t *testing.T) {
	tokens, err := NewTokenService(testConfig())
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	tokens.WithClock(func() time.Time { return issued })
	access, _, err := tokens.IssueAccessToken(testUser())
	require.NoError(t, err)

	tokens.WithClock(time.Now)
	_, err = tokens.Verify(access, AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_RejectsTamperedAndForeignTokens(t *testing.T) {
	tokens, err := NewTokenService(testConfig())
	require.NoError(t, err)

	access, _, err := tokens.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = tokens.Verify(access+"x", AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tokens.Verify("", AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tokens.Verify("not.a.jwt", AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// HS512 with the right secret is still refused.
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("access-secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(signed, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// No expiry.
	unbounded := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: uuid.NewString()})
	signed, err = unbounded.SignedString([]byte("access-secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(signed, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Subject that is not a user id.
	badID := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err = badID.SignedString([]byte("access-secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(signed, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticator(t *testing.T) {
	tokens, err := NewTokenService(testConfig())
	require.NoError(t, err)
	authn := NewAuthenticator(tokens)
	u := testUser()

	access, _, err := tokens.IssueAccessToken(u)
	require.NoError(t, err)

	p, err := authn.Authenticate(access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, "alice", p.Username)
	assert.False(t, p.IsSuperAdmin())

	_, err = authn.Authenticate("garbage")
	appErr, ok := appErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeUnauthenticated, appErr.Code)

	tokens.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	stale, _, err := tokens.IssueAccessToken(u)
	require.NoError(t, err)
	tokens.WithClock(time.Now)

	_, err = authn.Authenticate(stale)
	appErr, ok = appErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeTokenExpired, appErr.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "Bearer   abc  ", token: "abc", ok: true},
		{header: "bearer abc"},
		{header: "Basic abc"},
		{header: "Bearer "},
		{header: ""},
	}

	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, "header %q", tt.header)
		assert.Equal(t, tt.token, token, "header %q", tt.header)
	}
}

func TestHandshakeToken_Precedence(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=from-query", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"})
	assert.Equal(t, "from-query", HandshakeToken(r))

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "bearer from-header")
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"})
	assert.Equal(t, "from-header", HandshakeToken(r))

	r = httptest.NewRequest("GET", "/ws?token=%20%20", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", HandshakeToken(r))

	r = httptest.NewRequest("GET", "/ws", nil)
	assert.Empty(t, HandshakeToken(r))
}
