package mongo

import (
	"testing"

	domainPet "pet-adoption-marketplace/internal/domain/pet"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func lookup(t *testing.T, d bson.D, key string) any {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q not present in %v", key, d)
	return nil
}

func TestBuildPetFilter_Empty(t *testing.T) {
	assert.Empty(t, buildPetFilter(domainPet.Filter{}))
}

func TestBuildPetFilter_Equality(t *testing.T) {
	yes, no := true, false
	owner := uuid.New()

	f := buildPetFilter(domainPet.Filter{
		Species:    domainPet.SpeciesDog,
		Gender:     domainPet.GenderFemale,
		Size:       domainPet.SizeSmall,
		Status:     domainPet.StatusAvailable,
		Vaccinated: &yes,
		Dewormed:   &no,
		ListedBy:   &owner,
	})

	assert.Equal(t, "dog", lookup(t, f, "species"))
	assert.Equal(t, "female", lookup(t, f, "gender"))
	assert.Equal(t, "small", lookup(t, f, "size"))
	assert.Equal(t, "available", lookup(t, f, "status"))
	assert.Equal(t, true, lookup(t, f, "vaccinated"))
	assert.Equal(t, false, lookup(t, f, "dewormed"))
	assert.Equal(t, owner.String(), lookup(t, f, "listedBy"))

	for _, e := range f {
		assert.NotEqual(t, "sterilized", e.Key)
	}
}

func TestBuildPetFilter_AgeRange(t *testing.T) {
	lo, hi := 6, 24

	f := buildPetFilter(domainPet.Filter{MinAge: &lo, MaxAge: &hi})
	assert.Equal(t, bson.D{{Key: "$gte", Value: 6}, {Key: "$lte", Value: 24}}, lookup(t, f, "ageMonths"))

	f = buildPetFilter(domainPet.Filter{MaxAge: &hi})
	assert.Equal(t, bson.D{{Key: "$lte", Value: 24}}, lookup(t, f, "ageMonths"))
}

func TestBuildPetFilter_SubstringIsEscaped(t *testing.T) {
	f := buildPetFilter(domainPet.Filter{City: "St. (Louis)*"})

	re, ok := lookup(t, f, "city").(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `St\. \(Louis\)\*`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestBuildPetFilter_QueryDisjunction(t *testing.T) {
	f := buildPetFilter(domainPet.Filter{Query: "  golden  "})

	or, ok := lookup(t, f, "$or").(bson.A)
	require.True(t, ok)
	require.Len(t, or, 1+len(searchFields))

	text := or[0].(bson.D)
	assert.Equal(t, bson.D{{Key: "$search", Value: "golden"}}, lookup(t, text, "$text"))

	for i, field := range searchFields {
		branch := or[i+1].(bson.D)
		re := lookup(t, branch, field).(primitive.Regex)
		assert.Equal(t, "golden", re.Pattern)
	}
}

func TestSortSpec(t *testing.T) {
	assert.Equal(t,
		bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}},
		sortSpec(domainPet.DefaultSort))
	assert.Equal(t,
		bson.D{{Key: "ageMonths", Value: 1}, {Key: "_id", Value: 1}},
		sortSpec(domainPet.ParseSort("ageMonths")))
	assert.Equal(t,
		bson.D{{Key: "name", Value: -1}, {Key: "_id", Value: 1}},
		sortSpec(domainPet.ParseSort("-name")))
}
