package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainUser "pet-adoption-marketplace/internal/domain/user"
	"pet-adoption-marketplace/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResetTokenRepository struct {
	db *DB
}

func NewResetTokenRepository(db *DB) domainUser.ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, t *domainUser.PasswordResetToken) error {
	row := &models.PasswordResetTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		CreatedAt: t.CreatedAt,
	}
	if err := r.db.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) InvalidateActive(ctx context.Context, userID uuid.UUID) error {
	err := r.db.DB.WithContext(ctx).
		Model(&models.PasswordResetTokenModel{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate reset tokens: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) FindActive(ctx context.Context, token string) (*domainUser.PasswordResetToken, error) {
	var row models.PasswordResetTokenModel
	err := r.db.DB.WithContext(ctx).
		Where("token = ? AND used = ?", token, false).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrResetTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return &domainUser.PasswordResetToken{
		ID:        row.ID,
		UserID:    row.UserID,
		Token:     row.Token,
		ExpiresAt: row.ExpiresAt,
		Used:      row.Used,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *ResetTokenRepository) Consume(ctx context.Context, tokenID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.PasswordResetTokenModel{}).
		Where("id = ? AND used = ?", tokenID, false).
		Update("used", true)
	if result.Error != nil {
		return fmt.Errorf("failed to consume reset token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrResetTokenUsed
	}
	return nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("expires_at < ? OR used = ?", before, true).
		Delete(&models.PasswordResetTokenModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
