package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainUser "pet-adoption-marketplace/internal/domain/user"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ResetTokenRepository struct {
	tokens *mongo.Collection
}

func NewResetTokenRepository(db *DB) domainUser.ResetTokenRepository {
	return &ResetTokenRepository{tokens: db.collection(resetTokensCollection)}
}

func (r *ResetTokenRepository) Create(ctx context.Context, t *domainUser.PasswordResetToken) error {
	if _, err := r.tokens.InsertOne(ctx, toResetTokenDocument(t)); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) InvalidateActive(ctx context.Context, userID uuid.UUID) error {
	_, err := r.tokens.UpdateMany(ctx,
		bson.D{{Key: "userId", Value: userID.String()}, {Key: "used", Value: false}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "used", Value: true}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate reset tokens: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) FindActive(ctx context.Context, token string) (*domainUser.PasswordResetToken, error) {
	var doc resetTokenDocument
	err := r.tokens.FindOne(ctx, bson.D{{Key: "token", Value: token}, {Key: "used", Value: false}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainUser.ErrResetTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return toResetTokenEntity(&doc)
}

func (r *ResetTokenRepository) Consume(ctx context.Context, tokenID uuid.UUID) error {
	res, err := r.tokens.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: tokenID.String()}, {Key: "used", Value: false}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "used", Value: true}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domainUser.ErrResetTokenUsed
	}
	return nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.tokens.DeleteMany(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "expiresAt", Value: bson.D{{Key: "$lt", Value: before}}}},
		bson.D{{Key: "used", Value: true}},
	}}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return res.DeletedCount, nil
}
