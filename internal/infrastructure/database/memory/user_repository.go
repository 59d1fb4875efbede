package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainUser "pet-adoption-marketplace/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domainUser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID: make(map[uuid.UUID]domainUser.User),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domainUser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[user.ID]; exists {
		return domainUser.ErrUserAlreadyExists
	}
	if r.conflicts(user.Email, user.Username) {
		return domainUser.ErrUserAlreadyExists
	}
	r.byID[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID uuid.UUID) (*domainUser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[userID]
	if !ok {
		return nil, domainUser.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domainUser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domainUser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (r *UserRepository) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.conflicts(email, username), nil
}

func (r *UserRepository) List(_ context.Context) ([]*domainUser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domainUser.User, 0, len(r.byID))
	for _, u := range r.byID {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, user *domainUser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	stored.FullName = user.FullName
	stored.Phone = user.Phone
	stored.Avatar = user.Avatar
	stored.UpdatedAt = user.UpdatedAt
	r.byID[user.ID] = stored
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[userID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = time.Now()
	r.byID[userID] = stored
	return nil
}

func (r *UserRepository) Delete(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[userID]; !ok {
		return domainUser.ErrUserNotFound
	}
	delete(r.byID, userID)
	return nil
}

// conflicts must be called with the lock held.
func (r *UserRepository) conflicts(email, username string) bool {
	for _, u := range r.byID {
		if u.Email == email || strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

type ResetTokenRepository struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domainUser.PasswordResetToken
}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{
		byID: make(map[uuid.UUID]domainUser.PasswordResetToken),
	}
}

func (r *ResetTokenRepository) Create(_ context.Context, token *domainUser.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[token.ID] = *token
	return nil
}

func (r *ResetTokenRepository) InvalidateActive(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.byID {
		if t.UserID == userID && !t.Used {
			t.Used = true
			r.byID[id] = t
		}
	}
	return nil
}

func (r *ResetTokenRepository) FindActive(_ context.Context, token string) (*domainUser.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.byID {
		if t.Token == token && !t.Used {
			return &t, nil
		}
	}
	return nil, domainUser.ErrResetTokenNotFound
}

func (r *ResetTokenRepository) Consume(_ context.Context, tokenID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[tokenID]
	if !ok || t.Used {
		return domainUser.ErrResetTokenUsed
	}
	t.Used = true
	r.byID[tokenID] = t
	return nil
}

func (r *ResetTokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, t := range r.byID {
		if t.ExpiresAt.Before(before) {
			delete(r.byID, id)
			removed++
		}
	}
	return removed, nil
}
