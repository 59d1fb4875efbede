package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption-marketplace/internal/auth"
	"pet-adoption-marketplace/internal/config"
	domainUser "pet-adoption-marketplace/internal/domain/user"
	"pet-adoption-marketplace/internal/logger"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15

	msgDuplicateAccount  = "Email or username already in use"
	msgInvalidPhone      = "Phone must be 10-15 digits (numbers only)"
	msgInvalidCredential = "Invalid credentials"
)

// Service implements user use cases
type Service struct {
	userRepo  domainUser.Repository
	resetRepo domainUser.ResetTokenRepository
	tokens    *auth.TokenService
	notifier  ResetNotifier
	authCfg   config.AuthConfig
	resetCfg  config.PasswordResetConfig
	now       func() time.Time
}

// NewService creates a new user service
func NewService(
	userRepo domainUser.Repository,
	resetRepo domainUser.ResetTokenRepository,
	tokens *auth.TokenService,
	notifier ResetNotifier,
	authCfg config.AuthConfig,
	resetCfg config.PasswordResetConfig,
) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		tokens:    tokens,
		notifier:  notifier,
		authCfg:   authCfg,
		resetCfg:  resetCfg,
		now:       time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Username = utils.SanitizeString(req.Username)
	req.FullName = utils.SanitizeString(req.FullName)
	req.Email = utils.SanitizeEmail(req.Email)
	req.Avatar = strings.TrimSpace(req.Avatar)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	rawPhone := req.ContactPhone
	if rawPhone == "" {
		rawPhone = req.Phone
	}
	phone, ok := normalizePhone(rawPhone)
	if !ok {
		return nil, appErrors.Validation(msgInvalidPhone, appErrors.FieldError{Field: "contactPhone", Message: msgInvalidPhone})
	}

	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		logger.Warn("Registration attempt with existing email or username",
			zap.String("email", req.Email),
			zap.String("username", req.Username),
			zap.String("event", "registration_failed_duplicate"),
		)
		return nil, appErrors.Conflict(msgDuplicateAccount, domainUser.ErrUserAlreadyExists)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	avatar := req.Avatar
	if avatar == "" {
		avatar = domainUser.DefaultAvatar(req.Username, req.FullName)
	}

	now := s.now()
	user := &domainUser.User{
		ID:           uuid.New(),
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Phone:        phone,
		Role:         domainUser.RoleUser,
		Avatar:       avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			return nil, appErrors.Conflict(msgDuplicateAccount, err)
		}
		return nil, err
	}

	logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("username", user.Username),
		zap.String("event", "user_registered"),
	)

	return s.issueSession(user)
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)

	email := utils.SanitizeEmail(req.Email)
	if email == "" && strings.Contains(identifier, "@") {
		email = utils.SanitizeEmail(identifier)
	}
	username := strings.TrimSpace(req.Username)
	if username == "" && email == "" {
		username = identifier
	}

	if req.Password == "" || (email == "" && username == "") {
		return nil, appErrors.Validation("Provide email or username and password")
	}

	var (
		user *domainUser.User
		err  error
	)
	if email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, username)
	}
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Login attempt with unknown identity",
				zap.String("email", email),
				zap.String("username", username),
				zap.String("event", "user_not_found"),
			)
			return nil, appErrors.Unauthenticated(msgInvalidCredential, appErrors.ErrInvalidCredentials)
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.Unauthenticated(msgInvalidCredential, appErrors.ErrInvalidCredentials)
	}

	logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
		zap.String("event", "login_success"),
	)

	return s.issueSession(user)
}

// Refresh exchanges a valid refresh token for a new access token. Refresh
// tokens are stateless, so the old one stays valid until it expires.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	if refreshToken == "" {
		return nil, appErrors.Unauthenticated("Refresh token missing", auth.ErrInvalidToken)
	}

	claims, err := s.tokens.Verify(refreshToken, auth.RefreshToken)
	if err != nil {
		logger.Warn("Token refresh attempt with invalid token",
			zap.String("event", "token_refresh_failed_invalid_token"),
			zap.Error(err),
		)
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, appErrors.NewAppError(appErrors.CodeTokenExpired, "Refresh token expired", err)
		}
		return nil, appErrors.Unauthenticated("Invalid refresh token", err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, appErrors.Unauthenticated("Invalid refresh token", auth.ErrInvalidToken)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.Unauthenticated("User not found", err)
		}
		return nil, err
	}

	accessToken, expiresAt, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	logger.Debug("Access token refreshed",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "token_refreshed"),
	)

	return &RefreshResponse{AccessToken: accessToken, ExpiresAt: expiresAt.Unix()}, nil
}

func (s *Service) issueSession(user *domainUser.User) (*AuthResponse, error) {
	accessToken, expiresAt, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	resp := &AuthResponse{
		User:          ToUserResponse(user),
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		ExpiresAt:     expiresAt.Unix(),
		RefreshCookie: refreshToken,
		RefreshTTL:    s.tokens.RefreshTTL(),
	}
	if s.authCfg.UseRefreshCookie {
		resp.RefreshToken = ""
	}
	return resp, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		logger.Warn("Password change attempt with invalid current password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "password_change_failed_invalid_old_password"),
		)
		return appErrors.Validation("Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password changed successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_change_success"),
	)

	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToUserResponse(user), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*UserResponse, error) {
	if req.FullName != nil {
		trimmed := utils.SanitizeString(*req.FullName)
		req.FullName = &trimmed
	}
	if req.Avatar != nil {
		trimmed := strings.TrimSpace(*req.Avatar)
		req.Avatar = &trimmed
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil && *req.FullName != "" {
		user.FullName = *req.FullName
	}
	if req.Avatar != nil && *req.Avatar != "" {
		user.Avatar = *req.Avatar
	}
	if req.Phone != nil {
		phone, ok := normalizePhone(*req.Phone)
		if !ok {
			return nil, appErrors.Validation(msgInvalidPhone, appErrors.FieldError{Field: "phone", Message: msgInvalidPhone})
		}
		user.Phone = phone
	}
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.NotFound("User not found", err)
		}
		return nil, err
	}

	return ToUserResponse(user), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	return ToUserResponses(users), nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	return s.GetProfile(ctx, userID)
}

func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return appErrors.NotFound("User not found", err)
		}
		return err
	}

	logger.Info("User deleted successfully",
		zap.String("user_id", userID.String()),
		zap.String("event", "user_deleted"),
	)

	return nil
}

func (s *Service) getUser(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.NotFound("User not found", err)
		}
		return nil, err
	}
	return user, nil
}

// normalizePhone keeps the digits of raw and checks the 10-15 digit range.
func normalizePhone(raw string) (string, bool) {
	digits := utils.DigitsOnly(raw)
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", false
	}
	return digits, true
}
