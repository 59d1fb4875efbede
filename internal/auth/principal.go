package auth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	domainUser "pet-adoption-marketplace/internal/domain/user"
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/google/uuid"
)

// AccessTokenCookie is read during the socket handshake as a last resort.
const AccessTokenCookie = "accessToken"

// Principal is the authenticated caller.
type Principal struct {
	ID       uuid.UUID
	Username string
	Email    string
	FullName string
	Role     string
}

func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == domainUser.RoleSuperAdmin
}

func PrincipalFromClaims(claims *Claims) (*Principal, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Principal{
		ID:       id,
		Username: claims.Username,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     claims.Role,
	}, nil
}

// Authenticator turns access tokens into principals.
type Authenticator struct {
	tokens *TokenService
}

func NewAuthenticator(tokens *TokenService) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authenticate verifies an access token. The returned error is an AppError
// with code TOKEN_EXPIRED or UNAUTHENTICATED.
func (a *Authenticator) Authenticate(token string) (*Principal, error) {
	claims, err := a.tokens.Verify(token, AccessToken)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, appErrors.TokenExpired(err)
		}
		return nil, appErrors.Unauthenticated("Invalid or malformed token", err)
	}

	principal, err := PrincipalFromClaims(claims)
	if err != nil {
		return nil, appErrors.Unauthenticated("Invalid or malformed token", err)
	}
	return principal, nil
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

var bearerPrefix = regexp.MustCompile(`(?i)^bearer\s+`)

// HandshakeToken finds the access token of a socket handshake. The auth
// payload (the "token" query parameter) wins over the Authorization header,
// which wins over the access token cookie.
func HandshakeToken(r *http.Request) string {
	candidates := []string{r.URL.Query().Get("token"), r.Header.Get("Authorization")}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		candidates = append(candidates, cookie.Value)
	}

	for _, candidate := range candidates {
		token := strings.TrimSpace(bearerPrefix.ReplaceAllString(strings.TrimSpace(candidate), ""))
		if token != "" {
			return token
		}
	}
	return ""
}
