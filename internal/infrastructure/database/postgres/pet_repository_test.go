package postgres

import (
	"testing"

	domainPet "pet-adoption-marketplace/internal/domain/pet"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hanoi", "%Hanoi%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\d`, `%c:\\d%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likePattern(tt.in), tt.in)
	}
}

func TestChangeColumns(t *testing.T) {
	name := "Rex"
	breed := ""
	status := domainPet.StatusReserved
	age := 0

	values := changeColumns(domainPet.Changes{
		Name:      &name,
		Breed:     &breed,
		Status:    &status,
		AgeMonths: &age,
		Photos:    []string{"/uploads/a.png"},
	})

	assert.Len(t, values, 5)
	assert.Equal(t, "Rex", values["name"])
	assert.Nil(t, values["breed"])
	assert.Equal(t, "reserved", values["status"])
	assert.Equal(t, 0, values["age_months"])
	assert.Equal(t, pq.StringArray{"/uploads/a.png"}, values["photos"])
}

func TestPetModelRoundTrip(t *testing.T) {
	p := &domainPet.Pet{
		Name:    "Mochi",
		Species: domainPet.SpeciesCat,
		Gender:  domainPet.GenderFemale,
		Size:    domainPet.SizeSmall,
		Status:  domainPet.StatusAvailable,
	}

	m := toPetModel(p)
	assert.Nil(t, m.City)
	assert.NotNil(t, m.Photos)

	back := toPetEntity(m)
	assert.Equal(t, "", back.City)
	assert.Equal(t, []string{}, back.Photos)
	assert.Equal(t, p.Species, back.Species)
}
