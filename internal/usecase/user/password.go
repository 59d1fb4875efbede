package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	domainUser "pet-adoption-marketplace/internal/domain/user"
	"pet-adoption-marketplace/internal/logger"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resetTokenBytes = 32

// ResetNotifier delivers a password reset link to its owner.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *domainUser.User, link string) error
}

// LogNotifier writes reset links to the log instead of mailing them.
type LogNotifier struct{}

func (LogNotifier) SendPasswordReset(_ context.Context, user *domainUser.User, link string) error {
	logger.Info("Password reset link issued",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("reset_link", link),
		zap.String("event", "password_reset_link"),
	)
	return nil
}

// ForgotPassword issues a fresh reset token. It succeeds whether or not the
// email belongs to an account.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) (*ForgotPasswordResponse, error) {
	email := utils.SanitizeEmail(req.Email)
	if email == "" {
		return &ForgotPasswordResponse{}, nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Info("Password reset requested for non-existent email",
				zap.String("email", email),
				zap.String("event", "password_reset_requested_non_existent_email"),
			)
			return &ForgotPasswordResponse{}, nil
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.resetRepo.InvalidateActive(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to invalidate reset tokens: %w", err)
	}

	token, err := utils.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	now := s.now()
	resetToken := &domainUser.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(s.resetCfg.TTL),
		CreatedAt: now,
	}
	if err := s.resetRepo.Create(ctx, resetToken); err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	link := s.resetLink(token)
	if err := s.notifier.SendPasswordReset(ctx, user, link); err != nil {
		logger.Error("Failed to deliver password reset link",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	logger.Info("Password reset token generated",
		zap.String("user_id", user.ID.String()),
		zap.String("token_id", resetToken.ID.String()),
		zap.Time("expires_at", resetToken.ExpiresAt),
		zap.String("event", "password_reset_token_generated"),
	)

	if s.resetCfg.ShouldExposeResetLink() {
		return &ForgotPasswordResponse{Link: link}, nil
	}
	return &ForgotPasswordResponse{}, nil
}

// ResetPassword redeems a reset token. The token is burned before the
// password changes so that concurrent redemptions cannot both succeed.
func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	req.Token = strings.TrimSpace(req.Token)
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	invalid := appErrors.Validation("Invalid or expired token")
	invalid.Err = appErrors.ErrResetTokenInvalid

	resetToken, err := s.resetRepo.FindActive(ctx, req.Token)
	if err != nil {
		if errors.Is(err, domainUser.ErrResetTokenNotFound) {
			logger.Warn("Password reset attempt with invalid token",
				zap.String("event", "password_reset_failed_invalid_token"),
			)
			return invalid
		}
		return err
	}
	if !resetToken.IsUsable(s.now()) {
		return invalid
	}

	if _, err := s.userRepo.GetByID(ctx, resetToken.UserID); err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return appErrors.Validation("Invalid token")
		}
		return err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.resetRepo.Consume(ctx, resetToken.ID); err != nil {
		if errors.Is(err, domainUser.ErrResetTokenUsed) {
			return invalid
		}
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, resetToken.UserID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password reset successfully",
		zap.String("user_id", resetToken.UserID.String()),
		zap.String("token_id", resetToken.ID.String()),
		zap.String("event", "password_reset_success"),
	)

	return nil
}

func (s *Service) resetLink(token string) string {
	base := strings.TrimRight(s.resetCfg.AppBaseURL, "/")
	return base + "/reset-password?token=" + url.QueryEscape(token)
}
