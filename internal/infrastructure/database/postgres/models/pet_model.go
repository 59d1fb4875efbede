package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PetModel represents the database model for a pet listing
type PetModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key"`
	Name         string         `gorm:"type:varchar(100);not null"`
	Species      string         `gorm:"type:varchar(20);not null;index:idx_pets_status_species,priority:2"`
	OtherSpecies *string        `gorm:"type:varchar(60)"`
	Breed        *string        `gorm:"type:varchar(100)"`
	Gender       string         `gorm:"type:varchar(20);not null;default:'unknown'"`
	AgeMonths    int            `gorm:"type:integer;not null;default:0"`
	Size         string         `gorm:"type:varchar(20);not null;default:'medium'"`
	City         *string        `gorm:"type:varchar(60)"`
	Vaccinated   bool           `gorm:"not null;default:false"`
	Dewormed     bool           `gorm:"not null;default:false"`
	Sterilized   bool           `gorm:"not null;default:false"`
	Description  *string        `gorm:"type:text"`
	Photos       pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Status       string         `gorm:"type:varchar(20);not null;default:'available';index:idx_pets_status_species,priority:1"`
	ListedBy     uuid.UUID      `gorm:"type:uuid;not null;index"`
	ContactPhone *string        `gorm:"type:varchar(15)"`
	CreatedAt    time.Time      `gorm:"not null;index"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

func (PetModel) TableName() string {
	return "pets"
}
