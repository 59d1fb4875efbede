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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository implements domain user.Repository on MongoDB
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) domainUser.Repository {
	return &UserRepository{users: db.collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *domainUser.User) error {
	if _, err := r.users.InsertOne(ctx, toUserDocument(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainUser.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: userID.String()}})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domainUser.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}},
		options.FindOne().SetCollation(caseInsensitive))
}

func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "username", Value: username}},
	}}}

	n, err := r.users.CountDocuments(ctx, filter,
		options.Count().SetCollation(caseInsensitive).SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domainUser.User, error) {
	cursor, err := r.users.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]*domainUser.User, 0, len(docs))
	for i := range docs {
		u, err := toUserEntity(&docs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", docs[i].ID, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domainUser.User) error {
	res, err := r.users.UpdateByID(ctx, u.ID.String(), bson.D{{Key: "$set", Value: bson.D{
		{Key: "fullname", Value: u.FullName},
		{Key: "phone", Value: u.Phone},
		{Key: "avatar", Value: u.Avatar},
		{Key: "updatedAt", Value: u.UpdatedAt},
	}}})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	res, err := r.users.UpdateByID(ctx, userID.String(), bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: passwordHash},
		{Key: "updatedAt", Value: time.Now()},
	}}})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	res, err := r.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: userID.String()}})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D, opts ...*options.FindOneOptions) (*domainUser.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUserEntity(&doc)
}
