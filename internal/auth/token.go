package auth

import (
	"errors"
	"fmt"
	"time"

	"pet-adoption-marketplace/internal/config"
	domainUser "pet-adoption-marketplace/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// TokenKind selects the secret a token is signed and verified with.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// Claims carried by both token kinds. Refresh tokens only set UserID.
type Claims struct {
	UserID   string `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullname,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessExpiry,
		refreshTTL:    cfg.RefreshExpiry,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccessToken signs the short-lived token that identifies a user on
// every authenticated request.
func (s *TokenService) IssueAccessToken(u *domainUser.User) (string, time.Time, error) {
	claims := Claims{
		UserID:   u.ID.String(),
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
	return s.issue(AccessToken, u.ID, claims)
}

// IssueRefreshToken signs the long-lived token that can only mint new access
// tokens.
func (s *TokenService) IssueRefreshToken(u *domainUser.User) (string, time.Time, error) {
	return s.issue(RefreshToken, u.ID, Claims{UserID: u.ID.String()})
}

func (s *TokenService) issue(kind TokenKind, userID uuid.UUID, claims Claims) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl(kind))

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret(kind))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signed, expiresAt, nil
}

// Verify checks signature, algorithm and expiry of a token of the given kind.
// Expired tokens yield ErrExpiredToken, anything else wrong ErrInvalidToken.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret(kind), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *TokenService) secret(kind TokenKind) []byte {
	if kind == RefreshToken {
		return s.refreshSecret
	}
	return s.accessSecret
}

func (s *TokenService) ttl(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return s.refreshTTL
	}
	return s.accessTTL
}
