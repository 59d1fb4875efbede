package mongo

import (
	"time"

	domainPet "pet-adoption-marketplace/internal/domain/pet"
	domainUser "pet-adoption-marketplace/internal/domain/user"

	"github.com/google/uuid"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	FullName     string    `bson:"fullname"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Phone        string    `bson:"phone,omitempty"`
	Role         string    `bson:"role"`
	Avatar       string    `bson:"avatar,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type resetTokenDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expiresAt"`
	Used      bool      `bson:"used"`
	CreatedAt time.Time `bson:"createdAt"`
}

type petDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Species      string    `bson:"species"`
	OtherSpecies string    `bson:"otherSpecies,omitempty"`
	Breed        string    `bson:"breed,omitempty"`
	Gender       string    `bson:"gender"`
	AgeMonths    int       `bson:"ageMonths"`
	Size         string    `bson:"size"`
	City         string    `bson:"city,omitempty"`
	Vaccinated   bool      `bson:"vaccinated"`
	Dewormed     bool      `bson:"dewormed"`
	Sterilized   bool      `bson:"sterilized"`
	Description  string    `bson:"description,omitempty"`
	Photos       []string  `bson:"photos"`
	Status       string    `bson:"status"`
	ListedBy     string    `bson:"listedBy"`
	ContactPhone string    `bson:"contactPhone,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toUserDocument(u *domainUser.User) *userDocument {
	return &userDocument{
		ID:           u.ID.String(),
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Role:         u.Role,
		Avatar:       u.Avatar,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUserEntity(d *userDocument) (*domainUser.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &domainUser.User{
		ID:           id,
		Username:     d.Username,
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Phone:        d.Phone,
		Role:         d.Role,
		Avatar:       d.Avatar,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func toResetTokenDocument(t *domainUser.PasswordResetToken) *resetTokenDocument {
	return &resetTokenDocument{
		ID:        t.ID.String(),
		UserID:    t.UserID.String(),
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		CreatedAt: t.CreatedAt,
	}
}

func toResetTokenEntity(d *resetTokenDocument) (*domainUser.PasswordResetToken, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	return &domainUser.PasswordResetToken{
		ID:        id,
		UserID:    userID,
		Token:     d.Token,
		ExpiresAt: d.ExpiresAt,
		Used:      d.Used,
		CreatedAt: d.CreatedAt,
	}, nil
}

func toPetDocument(p *domainPet.Pet) *petDocument {
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	return &petDocument{
		ID:           p.ID.String(),
		Name:         p.Name,
		Species:      string(p.Species),
		OtherSpecies: p.OtherSpecies,
		Breed:        p.Breed,
		Gender:       string(p.Gender),
		AgeMonths:    p.AgeMonths,
		Size:         string(p.Size),
		City:         p.City,
		Vaccinated:   p.Vaccinated,
		Dewormed:     p.Dewormed,
		Sterilized:   p.Sterilized,
		Description:  p.Description,
		Photos:       photos,
		Status:       string(p.Status),
		ListedBy:     p.ListedBy.String(),
		ContactPhone: p.ContactPhone,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toPetEntity(d *petDocument) (*domainPet.Pet, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	listedBy, err := uuid.Parse(d.ListedBy)
	if err != nil {
		return nil, err
	}
	return &domainPet.Pet{
		ID:           id,
		Name:         d.Name,
		Species:      domainPet.Species(d.Species),
		OtherSpecies: d.OtherSpecies,
		Breed:        d.Breed,
		Gender:       domainPet.Gender(d.Gender),
		AgeMonths:    d.AgeMonths,
		Size:         domainPet.Size(d.Size),
		City:         d.City,
		Vaccinated:   d.Vaccinated,
		Dewormed:     d.Dewormed,
		Sterilized:   d.Sterilized,
		Description:  d.Description,
		Photos:       d.Photos,
		Status:       domainPet.Status(d.Status),
		ListedBy:     listedBy,
		ContactPhone: d.ContactPhone,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}
