package user

import (
	"context"
	"time"

	"pet-adoption-marketplace/internal/logger"

	"go.uber.org/zap"
)

// StartResetTokenCleanupJob purges expired password reset tokens until ctx
// is cancelled.
func (s *Service) StartResetTokenCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Reset token cleanup job started",
		zap.Duration("interval", interval),
	)

	s.cleanupExpiredResetTokens(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reset token cleanup job stopped")
			return
		case <-ticker.C:
			s.cleanupExpiredResetTokens(ctx)
		}
	}
}

func (s *Service) cleanupExpiredResetTokens(ctx context.Context) {
	removed, err := s.resetRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		logger.Error("Failed to delete expired reset tokens", zap.Error(err))
		return
	}

	logger.Debug("Expired reset tokens cleaned up",
		zap.Int64("removed", removed),
	)
}
