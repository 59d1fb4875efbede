package pet

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// Repository defines the interface for pet listing storage
type Repository interface {
	Find(ctx context.Context, filter Filter, sort Sort, skip, limit int) ([]*Pet, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	GetByID(ctx context.Context, petID uuid.UUID) (*Pet, error)
	Create(ctx context.Context, pet *Pet) error
	// Update applies the whitelisted changes and returns the stored result.
	Update(ctx context.Context, petID uuid.UUID, changes Changes) (*Pet, error)
	UpdateStatus(ctx context.Context, petID uuid.UUID, status Status) error
	Delete(ctx context.Context, petID uuid.UUID) error
}

// Filter is a conjunction of listing predicates. Zero values are unset.
type Filter struct {
	// Query adds a disjunction of full-text and substring matches on name,
	// breed, description, city and otherSpecies.
	Query        string
	Species      Species
	Gender       Gender
	Size         Size
	Status       Status
	City         string // case-insensitive substring
	OtherSpecies string // case-insensitive substring
	Vaccinated   *bool
	Dewormed     *bool
	Sterilized   *bool
	MinAge       *int
	MaxAge       *int
	ListedBy     *uuid.UUID
}

// Changes is the set of fields an update may touch. Nil means untouched.
type Changes struct {
	Name         *string
	Species      *Species
	OtherSpecies *string
	Breed        *string
	Gender       *Gender
	AgeMonths    *int
	Size         *Size
	City         *string
	Vaccinated   *bool
	Dewormed     *bool
	Sterilized   *bool
	Description  *string
	Photos       []string
	Status       *Status
	ContactPhone *string
}

