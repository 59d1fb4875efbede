package user

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser       = "user"
	RoleSuperAdmin = "superadmin"
)

// User represents a user entity in the domain
type User struct {
	ID           uuid.UUID
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Phone        string
	Role         string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// PasswordResetToken represents a single-use password reset token
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsExpired checks if the token is past its expiry at the given instant
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsUsable checks if the token can still be redeemed
func (t *PasswordResetToken) IsUsable(now time.Time) bool {
	return !t.Used && !t.IsExpired(now)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DefaultAvatar builds the generated initials avatar used when a user has
// not uploaded one.
func DefaultAvatar(username, fullName string) string {
	seed := strings.TrimSpace(username)
	if seed == "" {
		seed = strings.TrimSpace(fullName)
	}
	if seed == "" {
		seed = "friend"
	}
	seed = strings.ToLower(whitespaceRun.ReplaceAllString(seed, "-"))

	return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(seed) + "&backgroundType=gradientLinear"
}
