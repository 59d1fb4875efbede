package pet

import (
	"time"

	domainPet "pet-adoption-marketplace/internal/domain/pet"

	"github.com/google/uuid"
)

type PetResponse struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Species      string         `json:"species"`
	OtherSpecies string         `json:"otherSpecies,omitempty"`
	Breed        string         `json:"breed,omitempty"`
	Gender       string         `json:"gender"`
	AgeMonths    int            `json:"ageMonths"`
	AgeLabel     string         `json:"ageLabel"`
	Size         string         `json:"size"`
	City         string         `json:"city,omitempty"`
	Vaccinated   bool           `json:"vaccinated"`
	Dewormed     bool           `json:"dewormed"`
	Sterilized   bool           `json:"sterilized"`
	Description  string         `json:"description,omitempty"`
	Photos       []string       `json:"photos"`
	Status       string         `json:"status"`
	ListedBy     uuid.UUID      `json:"listedBy"`
	OwnerID      uuid.UUID      `json:"ownerId"`
	ContactPhone string         `json:"contactPhone,omitempty"`
	Owner        *OwnerResponse `json:"owner,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type OwnerResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullname"`
	Username string    `json:"username"`
	Phone    string    `json:"phone,omitempty"`
}

// ListMeta describes the page returned by the listing engine.
type ListMeta struct {
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	HasNext bool   `json:"hasNext"`
	Sort    string `json:"sort"`
}

type ListResult struct {
	Items []*PetResponse
	Meta  ListMeta
}

type StatusResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type DeleteResponse struct {
	ID uuid.UUID `json:"id"`
}

// ToPetResponse shapes a listing for clients, exposing the owner under both
// listedBy and ownerId.
func ToPetResponse(p *domainPet.Pet) *PetResponse {
	if p == nil {
		return nil
	}
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	return &PetResponse{
		ID:           p.ID,
		Name:         p.Name,
		Species:      string(p.Species),
		OtherSpecies: p.OtherSpecies,
		Breed:        p.Breed,
		Gender:       string(p.Gender),
		AgeMonths:    p.AgeMonths,
		AgeLabel:     p.AgeLabel(),
		Size:         string(p.Size),
		City:         p.City,
		Vaccinated:   p.Vaccinated,
		Dewormed:     p.Dewormed,
		Sterilized:   p.Sterilized,
		Description:  p.Description,
		Photos:       photos,
		Status:       string(p.Status),
		ListedBy:     p.ListedBy,
		OwnerID:      p.ListedBy,
		ContactPhone: p.ContactPhone,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToPetResponses(pets []*domainPet.Pet) []*PetResponse {
	out := make([]*PetResponse, 0, len(pets))
	for _, p := range pets {
		out = append(out, ToPetResponse(p))
	}
	return out
}

func toOwnerResponse(o *domainPet.Owner) *OwnerResponse {
	if o == nil {
		return nil
	}
	return &OwnerResponse{ID: o.ID, FullName: o.FullName, Username: o.Username, Phone: o.Phone}
}
