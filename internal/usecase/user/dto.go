package user

import (
	"time"

	domainUser "pet-adoption-marketplace/internal/domain/user"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	FullName string `json:"fullname" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=16"`
	Avatar   string `json:"avatar" validate:"omitempty,max=500"`
	// ContactPhone is preferred; Phone is accepted from older clients.
	ContactPhone string `json:"contactPhone"`
	Phone        string `json:"phone"`
}

// LoginRequest identifies the account by email, username, or a free-form
// identifier that is treated as an email when it contains "@".
type LoginRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullname" validate:"omitempty,min=2,max=80"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=500"`
	Phone    *string `json:"phone"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResponse is returned by register and login. RefreshToken is empty when
// the refresh token travels in a cookie.
type AuthResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	ExpiresAt    int64         `json:"expiresAt"`

	// refresh token for the cookie, never serialized
	RefreshCookie string        `json:"-"`
	RefreshTTL    time.Duration `json:"-"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

type ForgotPasswordResponse struct {
	// Link is only populated outside production or when explicitly enabled.
	Link string `json:"link,omitempty"`
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponses(users []*domainUser.User) []*UserResponse {
	responses := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(u))
	}
	return responses
}
