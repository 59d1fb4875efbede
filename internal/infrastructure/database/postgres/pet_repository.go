package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainPet "pet-adoption-marketplace/internal/domain/pet"
	"pet-adoption-marketplace/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const searchDocument = `to_tsvector('simple', coalesce(name, '') || ' ' || coalesce(breed, '') || ' ' || coalesce(description, '') || ' ' || coalesce(city, ''))`

var sortColumns = map[domainPet.SortField]string{
	domainPet.SortByCreatedAt: "created_at",
	domainPet.SortByAgeMonths: "age_months",
	domainPet.SortByName:      "name",
}

// PetRepository implements domain pet.Repository interface
type PetRepository struct {
	db  *DB
	now func() time.Time
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db *DB) domainPet.Repository {
	return &PetRepository{db: db, now: time.Now}
}

func (r *PetRepository) Find(ctx context.Context, filter domainPet.Filter, order domainPet.Sort, skip, limit int) ([]*domainPet.Pet, error) {
	column, ok := sortColumns[order.Field]
	if !ok {
		column, order = "created_at", domainPet.DefaultSort
	}
	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}

	var rows []models.PetModel
	err := applyFilter(r.db.DB.WithContext(ctx).Model(&models.PetModel{}), filter).
		Order(column + " " + direction).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pets: %w", err)
	}

	pets := make([]*domainPet.Pet, 0, len(rows))
	for i := range rows {
		pets = append(pets, toPetEntity(&rows[i]))
	}
	return pets, nil
}

func (r *PetRepository) Count(ctx context.Context, filter domainPet.Filter) (int64, error) {
	var count int64
	err := applyFilter(r.db.DB.WithContext(ctx).Model(&models.PetModel{}), filter).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pets: %w", err)
	}
	return count, nil
}

func (r *PetRepository) GetByID(ctx context.Context, petID uuid.UUID) (*domainPet.Pet, error) {
	return r.get(r.db.DB.WithContext(ctx), petID)
}

func (r *PetRepository) Create(ctx context.Context, p *domainPet.Pet) error {
	if err := r.db.DB.WithContext(ctx).Create(toPetModel(p)).Error; err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

func (r *PetRepository) Update(ctx context.Context, petID uuid.UUID, changes domainPet.Changes) (*domainPet.Pet, error) {
	var updated *domainPet.Pet

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		values := changeColumns(changes)
		values["updated_at"] = r.now()

		result := tx.Model(&models.PetModel{}).Where("id = ?", petID).Updates(values)
		if result.Error != nil {
			return fmt.Errorf("failed to update pet: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainPet.ErrPetNotFound
		}

		var err error
		updated, err = r.get(tx, petID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PetRepository) UpdateStatus(ctx context.Context, petID uuid.UUID, status domainPet.Status) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.PetModel{}).
		Where("id = ?", petID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": r.now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update pet status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainPet.ErrPetNotFound
	}
	return nil
}

func (r *PetRepository) Delete(ctx context.Context, petID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.PetModel{}, "id = ?", petID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete pet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainPet.ErrPetNotFound
	}
	return nil
}

func (r *PetRepository) get(db *gorm.DB, petID uuid.UUID) (*domainPet.Pet, error) {
	var row models.PetModel
	err := db.Where("id = ?", petID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainPet.ErrPetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return toPetEntity(&row), nil
}

// applyFilter adds the listing predicates as bound parameters.
func applyFilter(db *gorm.DB, f domainPet.Filter) *gorm.DB {
	if f.Species != "" {
		db = db.Where("species = ?", string(f.Species))
	}
	if f.Gender != "" {
		db = db.Where("gender = ?", string(f.Gender))
	}
	if f.Size != "" {
		db = db.Where("size = ?", string(f.Size))
	}
	if f.Status != "" {
		db = db.Where("status = ?", string(f.Status))
	}
	if f.City != "" {
		db = db.Where("city ILIKE ?", likePattern(f.City))
	}
	if f.OtherSpecies != "" {
		db = db.Where("other_species ILIKE ?", likePattern(f.OtherSpecies))
	}
	if f.Vaccinated != nil {
		db = db.Where("vaccinated = ?", *f.Vaccinated)
	}
	if f.Dewormed != nil {
		db = db.Where("dewormed = ?", *f.Dewormed)
	}
	if f.Sterilized != nil {
		db = db.Where("sterilized = ?", *f.Sterilized)
	}
	if f.MinAge != nil {
		db = db.Where("age_months >= ?", *f.MinAge)
	}
	if f.MaxAge != nil {
		db = db.Where("age_months <= ?", *f.MaxAge)
	}
	if f.ListedBy != nil {
		db = db.Where("listed_by = ?", *f.ListedBy)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := likePattern(q)
		db = db.Where(
			"("+searchDocument+" @@ plainto_tsquery('simple', ?)"+
				" OR name ILIKE ? OR breed ILIKE ? OR description ILIKE ? OR city ILIKE ? OR other_species ILIKE ?)",
			q, pattern, pattern, pattern, pattern, pattern,
		)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring ILIKE with wildcards escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func changeColumns(ch domainPet.Changes) map[string]interface{} {
	values := make(map[string]interface{})

	if ch.Name != nil {
		values["name"] = *ch.Name
	}
	if ch.Species != nil {
		values["species"] = string(*ch.Species)
	}
	if ch.OtherSpecies != nil {
		values["other_species"] = nullable(*ch.OtherSpecies)
	}
	if ch.Breed != nil {
		values["breed"] = nullable(*ch.Breed)
	}
	if ch.Gender != nil {
		values["gender"] = string(*ch.Gender)
	}
	if ch.AgeMonths != nil {
		values["age_months"] = *ch.AgeMonths
	}
	if ch.Size != nil {
		values["size"] = string(*ch.Size)
	}
	if ch.City != nil {
		values["city"] = nullable(*ch.City)
	}
	if ch.Vaccinated != nil {
		values["vaccinated"] = *ch.Vaccinated
	}
	if ch.Dewormed != nil {
		values["dewormed"] = *ch.Dewormed
	}
	if ch.Sterilized != nil {
		values["sterilized"] = *ch.Sterilized
	}
	if ch.Description != nil {
		values["description"] = nullable(*ch.Description)
	}
	if ch.Photos != nil {
		values["photos"] = pq.StringArray(ch.Photos)
	}
	if ch.Status != nil {
		values["status"] = string(*ch.Status)
	}
	if ch.ContactPhone != nil {
		values["contact_phone"] = nullable(*ch.ContactPhone)
	}
	return values
}

func toPetModel(p *domainPet.Pet) *models.PetModel {
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	return &models.PetModel{
		ID:           p.ID,
		Name:         p.Name,
		Species:      string(p.Species),
		OtherSpecies: nullable(p.OtherSpecies),
		Breed:        nullable(p.Breed),
		Gender:       string(p.Gender),
		AgeMonths:    p.AgeMonths,
		Size:         string(p.Size),
		City:         nullable(p.City),
		Vaccinated:   p.Vaccinated,
		Dewormed:     p.Dewormed,
		Sterilized:   p.Sterilized,
		Description:  nullable(p.Description),
		Photos:       pq.StringArray(photos),
		Status:       string(p.Status),
		ListedBy:     p.ListedBy,
		ContactPhone: nullable(p.ContactPhone),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toPetEntity(m *models.PetModel) *domainPet.Pet {
	return &domainPet.Pet{
		ID:           m.ID,
		Name:         m.Name,
		Species:      domainPet.Species(m.Species),
		OtherSpecies: deref(m.OtherSpecies),
		Breed:        deref(m.Breed),
		Gender:       domainPet.Gender(m.Gender),
		AgeMonths:    m.AgeMonths,
		Size:         domainPet.Size(m.Size),
		City:         deref(m.City),
		Vaccinated:   m.Vaccinated,
		Dewormed:     m.Dewormed,
		Sterilized:   m.Sterilized,
		Description:  deref(m.Description),
		Photos:       []string(m.Photos),
		Status:       domainPet.Status(m.Status),
		ListedBy:     m.ListedBy,
		ContactPhone: deref(m.ContactPhone),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
