package pet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesRabbit Species = "rabbit"
	SpeciesBird   Species = "bird"
	SpeciesOther  Species = "other"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesRabbit, SpeciesBird, SpeciesOther:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Status of a listing. Every status may move to every other one.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusAdopted   Status = "adopted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusAdopted:
		return true
	}
	return false
}

const (
	MaxNameLength         = 100
	MaxOtherSpeciesLength = 60
	MaxBreedLength        = 100
	MaxCityLength         = 60
	MaxDescriptionLength  = 2000
	MaxAgeMonths          = 600
	MaxPhotos             = 10
	MaxPhotoURLLength     = 500
	MinContactPhoneDigits = 10
	MaxContactPhoneDigits = 15
)

// Pet represents an adoption listing
type Pet struct {
	ID           uuid.UUID
	Name         string
	Species      Species
	OtherSpecies string
	Breed        string
	Gender       Gender
	AgeMonths    int
	Size         Size
	City         string
	Vaccinated   bool
	Dewormed     bool
	Sterilized   bool
	Description  string
	Photos       []string
	Status       Status
	ListedBy     uuid.UUID
	ContactPhone string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AgeLabel renders the age for display: "5 mo", "2y", "2y 3m".
func (p *Pet) AgeLabel() string {
	if p.AgeMonths < 12 {
		return fmt.Sprintf("%d mo", p.AgeMonths)
	}
	years, months := p.AgeMonths/12, p.AgeMonths%12
	if months == 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dy %dm", years, months)
}

// Apply copies every set field of ch onto p.
func (p *Pet) Apply(ch Changes) {
	if ch.Name != nil {
		p.Name = *ch.Name
	}
	if ch.Species != nil {
		p.Species = *ch.Species
	}
	if ch.OtherSpecies != nil {
		p.OtherSpecies = *ch.OtherSpecies
	}
	if ch.Breed != nil {
		p.Breed = *ch.Breed
	}
	if ch.Gender != nil {
		p.Gender = *ch.Gender
	}
	if ch.AgeMonths != nil {
		p.AgeMonths = *ch.AgeMonths
	}
	if ch.Size != nil {
		p.Size = *ch.Size
	}
	if ch.City != nil {
		p.City = *ch.City
	}
	if ch.Vaccinated != nil {
		p.Vaccinated = *ch.Vaccinated
	}
	if ch.Dewormed != nil {
		p.Dewormed = *ch.Dewormed
	}
	if ch.Sterilized != nil {
		p.Sterilized = *ch.Sterilized
	}
	if ch.Description != nil {
		p.Description = *ch.Description
	}
	if ch.Photos != nil {
		p.Photos = append([]string(nil), ch.Photos...)
	}
	if ch.Status != nil {
		p.Status = *ch.Status
	}
	if ch.ContactPhone != nil {
		p.ContactPhone = *ch.ContactPhone
	}
}

// Owner is the public contact summary of the user who listed a pet.
type Owner struct {
	ID       uuid.UUID
	FullName string
	Username string
	Phone    string
}
