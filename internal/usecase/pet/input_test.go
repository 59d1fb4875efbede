package pet

import (
	"strings"
	"testing"

	domainPet "pet-adoption-marketplace/internal/domain/pet"
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(errs []appErrors.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestNormalizeInput_CoercesJSONValues(t *testing.T) {
	d, errs := NormalizeInput(Payload{
		"name":         "  Rex  ",
		"species":      "Dog",
		"gender":       "MALE",
		"ageMonths":    float64(14),
		"size":         "small",
		"vaccinated":   true,
		"dewormed":     float64(1),
		"sterilized":   "false",
		"photos":       []any{" a.jpg ", "", "b.png"},
		"contactPhone": "+1 (555) 123-4567",
		"unknown":      "dropped",
	})
	require.Empty(t, errs)

	assert.Equal(t, "Rex", *d.Name)
	assert.Equal(t, domainPet.SpeciesDog, *d.Species)
	assert.Equal(t, domainPet.GenderMale, *d.Gender)
	assert.Equal(t, 14, *d.AgeMonths)
	assert.Equal(t, domainPet.SizeSmall, *d.Size)
	assert.True(t, *d.Vaccinated)
	assert.True(t, *d.Dewormed)
	assert.False(t, *d.Sterilized)
	assert.Equal(t, []string{"a.jpg", "b.png"}, d.Photos)
	assert.Equal(t, "15551234567", *d.ContactPhone)
	assert.Nil(t, d.City)
	assert.Nil(t, d.Status)
}

func TestNormalizeInput_FormValues(t *testing.T) {
	p := PayloadFromForm(map[string][]string{
		"name":       {"Tom"},
		"species":    {"cat"},
		"ageMonths":  {"8"},
		"vaccinated": {"1"},
		"photos":     {"x.jpg", "y.jpg"},
		"empty":      {},
	})
	assert.NotContains(t, p, "empty")

	d, errs := NormalizeInput(p)
	require.Empty(t, errs)
	assert.Equal(t, "Tom", *d.Name)
	assert.Equal(t, 8, *d.AgeMonths)
	assert.True(t, *d.Vaccinated)
	assert.Equal(t, []string{"x.jpg", "y.jpg"}, d.Photos)
}

func TestNormalizeInput_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		field   string
	}{
		{name: "empty name", payload: Payload{"name": "   "}, field: "name"},
		{name: "long name", payload: Payload{"name": strings.Repeat("a", 101)}, field: "name"},
		{name: "unknown species", payload: Payload{"species": "dragon"}, field: "species"},
		{name: "unknown gender", payload: Payload{"gender": "both"}, field: "gender"},
		{name: "unknown size", payload: Payload{"size": "huge"}, field: "size"},
		{name: "fractional age", payload: Payload{"ageMonths": 2.5}, field: "ageMonths"},
		{name: "negative age", payload: Payload{"ageMonths": "-1"}, field: "ageMonths"},
		{name: "age too high", payload: Payload{"ageMonths": 601}, field: "ageMonths"},
		{name: "age not a number", payload: Payload{"ageMonths": "two"}, field: "ageMonths"},
		{name: "description too long", payload: Payload{"description": strings.Repeat("d", 2001)}, field: "description"},
		{name: "too many photos", payload: Payload{"photos": []any{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}}, field: "photos"},
		{name: "photo not a string", payload: Payload{"photos": []any{1}}, field: "photos"},
		{name: "short phone", payload: Payload{"contactPhone": "12345"}, field: "contactPhone"},
		{name: "legacy other species too long", payload: Payload{"speciesOther": strings.Repeat("o", 61)}, field: "otherSpecies"},
		{name: "name is an object", payload: Payload{"name": map[string]any{"$gt": ""}}, field: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := NormalizeInput(tt.payload)
			assert.Equal(t, []string{tt.field}, fieldsOf(errs))
		})
	}
}

func TestNormalizeInput_BlankPhoneIsIgnored(t *testing.T) {
	d, errs := NormalizeInput(Payload{"contactPhone": "  "})
	require.Empty(t, errs)
	assert.Nil(t, d.ContactPhone)
}

func TestNormalizeInput_OtherSpeciesPrefersCanonicalKey(t *testing.T) {
	d, errs := NormalizeInput(Payload{"otherSpecies": "Ferret", "speciesOther": "Hamster"})
	require.Empty(t, errs)
	assert.Equal(t, "Ferret", *d.OtherSpecies)
}

func TestDraftChanges(t *testing.T) {
	d, errs := NormalizeInput(Payload{"name": "Rex", "city": "Austin"})
	require.Empty(t, errs)

	status := domainPet.StatusReserved
	ch := d.Changes(&status)
	assert.Equal(t, "Rex", *ch.Name)
	assert.Equal(t, "Austin", *ch.City)
	assert.Equal(t, domainPet.StatusReserved, *ch.Status)
	assert.Nil(t, ch.Species)
	assert.Nil(t, ch.Photos)
}
