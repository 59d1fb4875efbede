package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-adoption-marketplace/internal/domain/pet"

	"github.com/google/uuid"
)

type PetRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]pet.Pet
	now  func() time.Time
}

func NewPetRepository() *PetRepository {
	return &PetRepository{
		byID: make(map[uuid.UUID]pet.Pet),
		now:  time.Now,
	}
}

func (r *PetRepository) Find(_ context.Context, filter pet.Filter, order pet.Sort, skip, limit int) ([]*pet.Pet, error) {
	r.mu.RLock()
	matched := r.match(filter)
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], order)
	})

	if skip >= len(matched) {
		return []*pet.Pet{}, nil
	}
	end := len(matched)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return matched[skip:end], nil
}

func (r *PetRepository) Count(_ context.Context, filter pet.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.match(filter))), nil
}

func (r *PetRepository) GetByID(_ context.Context, petID uuid.UUID) (*pet.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[petID]
	if !ok {
		return nil, pet.ErrPetNotFound
	}
	return clonePet(p), nil
}

func (r *PetRepository) Create(_ context.Context, p *pet.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[p.ID] = *clonePet(*p)
	return nil
}

func (r *PetRepository) Update(_ context.Context, petID uuid.UUID, changes pet.Changes) (*pet.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[petID]
	if !ok {
		return nil, pet.ErrPetNotFound
	}
	p.Apply(changes)
	p.UpdatedAt = r.now()
	r.byID[petID] = p
	return clonePet(p), nil
}

func (r *PetRepository) UpdateStatus(_ context.Context, petID uuid.UUID, status pet.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[petID]
	if !ok {
		return pet.ErrPetNotFound
	}
	p.Status = status
	p.UpdatedAt = r.now()
	r.byID[petID] = p
	return nil
}

func (r *PetRepository) Delete(_ context.Context, petID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[petID]; !ok {
		return pet.ErrPetNotFound
	}
	delete(r.byID, petID)
	return nil
}

// match must be called with the read lock held.
func (r *PetRepository) match(f pet.Filter) []*pet.Pet {
	out := make([]*pet.Pet, 0)
	for _, p := range r.byID {
		if Matches(&p, f) {
			out = append(out, clonePet(p))
		}
	}
	return out
}

// Matches evaluates a listing filter against a single pet.
func Matches(p *pet.Pet, f pet.Filter) bool {
	if f.Species != "" && p.Species != f.Species {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.Size != "" && p.Size != f.Size {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.City != "" && !containsFold(p.City, f.City) {
		return false
	}
	if f.OtherSpecies != "" && !containsFold(p.OtherSpecies, f.OtherSpecies) {
		return false
	}
	if f.Vaccinated != nil && p.Vaccinated != *f.Vaccinated {
		return false
	}
	if f.Dewormed != nil && p.Dewormed != *f.Dewormed {
		return false
	}
	if f.Sterilized != nil && p.Sterilized != *f.Sterilized {
		return false
	}
	if f.MinAge != nil && p.AgeMonths < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && p.AgeMonths > *f.MaxAge {
		return false
	}
	if f.ListedBy != nil && p.ListedBy != *f.ListedBy {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		return textMatch(p, q) || substringMatch(p, q)
	}
	return true
}

// textMatch approximates a full-text index: any term of q equal to a word of
// the indexed fields.
func textMatch(p *pet.Pet, q string) bool {
	words := make(map[string]struct{})
	for _, field := range []string{p.Name, p.Breed, p.Description, p.City} {
		for _, w := range strings.Fields(strings.ToLower(field)) {
			words[strings.Trim(w, ".,;:!?\"'()")] = struct{}{}
		}
	}
	for _, term := range strings.Fields(strings.ToLower(q)) {
		if _, ok := words[term]; ok {
			return true
		}
	}
	return false
}

func substringMatch(p *pet.Pet, q string) bool {
	for _, field := range []string{p.Name, p.Breed, p.Description, p.City, p.OtherSpecies} {
		if containsFold(field, q) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func less(a, b *pet.Pet, order pet.Sort) bool {
	var cmp int
	switch order.Field {
	case pet.SortByAgeMonths:
		cmp = a.AgeMonths - b.AgeMonths
	case pet.SortByName:
		cmp = strings.Compare(a.Name, b.Name)
	default:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	}
	if cmp == 0 {
		return strings.Compare(a.ID.String(), b.ID.String()) < 0
	}
	if order.Descending {
		return cmp > 0
	}
	return cmp < 0
}

func clonePet(p pet.Pet) *pet.Pet {
	p.Photos = append([]string(nil), p.Photos...)
	return &p
}
