package pet

import (
	"testing"

	"pet-adoption-marketplace/internal/auth"
	domainPet "pet-adoption-marketplace/internal/domain/pet"
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveListQuery_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
		wantSkip  int
	}{
		{name: "defaults", wantPage: 1, wantLimit: 12, wantSkip: 0},
		{name: "explicit", page: "3", limit: "10", wantPage: 3, wantLimit: 10, wantSkip: 20},
		{name: "limit clamped high", limit: "500", wantPage: 1, wantLimit: 50},
		{name: "limit clamped low", limit: "0", wantPage: 1, wantLimit: 1},
		{name: "page floor", page: "-4", wantPage: 1, wantLimit: 12},
		{name: "garbage falls back", page: "abc", limit: "xyz", wantPage: 1, wantLimit: 12},
		{name: "fractional truncates", page: "2.7", limit: "5.9", wantPage: 2, wantLimit: 5, wantSkip: 5},
		{name: "overflowing limit clamps high", limit: "99999999999999999999", wantPage: 1, wantLimit: 50},
		{name: "exponent limit clamps high", limit: "1e12", wantPage: 1, wantLimit: 50},
		{name: "overflowing negative limit clamps low", limit: "-99999999999999999999", wantPage: 1, wantLimit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq, err := ResolveListQuery(ListQuery{Page: tt.page, Limit: tt.limit}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, rq.Page)
			assert.Equal(t, tt.wantLimit, rq.Limit)
			assert.Equal(t, tt.wantSkip, rq.Skip)
		})
	}
}

func TestResolveListQuery_Sort(t *testing.T) {
	tests := map[string]domainPet.Sort{
		"":           domainPet.DefaultSort,
		"name":       {Field: domainPet.SortByName},
		"-ageMonths": {Field: domainPet.SortByAgeMonths, Descending: true},
		"createdAt":  {Field: domainPet.SortByCreatedAt},
		"-password":  domainPet.DefaultSort,
		"$where":     domainPet.DefaultSort,
	}

	for token, want := range tests {
		rq, err := ResolveListQuery(ListQuery{Sort: token}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, rq.Sort, "token %q", token)
	}
}

func TestResolveListQuery_Filters(t *testing.T) {
	rq, err := ResolveListQuery(ListQuery{
		Q:            "  golden  ",
		Species:      "DOG",
		Gender:       "female",
		Size:         "Large",
		Status:       "reserved",
		City:         " Austin ",
		SpeciesOther: "ferret",
		Vaccinated:   "TRUE",
		Dewormed:     "0",
		MinAge:       "6",
		MaxAge:       "24",
	}, nil)
	require.NoError(t, err)

	f := rq.Filter
	assert.Equal(t, "golden", f.Query)
	assert.Equal(t, domainPet.SpeciesDog, f.Species)
	assert.Equal(t, domainPet.GenderFemale, f.Gender)
	assert.Equal(t, domainPet.SizeLarge, f.Size)
	assert.Equal(t, domainPet.StatusReserved, f.Status)
	assert.Equal(t, "Austin", f.City)
	assert.Equal(t, "ferret", f.OtherSpecies)
	require.NotNil(t, f.Vaccinated)
	assert.True(t, *f.Vaccinated)
	require.NotNil(t, f.Dewormed)
	assert.False(t, *f.Dewormed)
	assert.Nil(t, f.Sterilized)
	assert.Equal(t, 6, *f.MinAge)
	assert.Equal(t, 24, *f.MaxAge)
	assert.Nil(t, f.ListedBy)
}

func TestResolveListQuery_UnknownStatusIsIgnored(t *testing.T) {
	rq, err := ResolveListQuery(ListQuery{Status: "sold"}, nil)
	require.NoError(t, err)
	assert.Empty(t, rq.Filter.Status)
}

func TestResolveListQuery_RejectsBadInput(t *testing.T) {
	_, err := ResolveListQuery(ListQuery{Species: "dragon", Gender: "x", MinAge: "-1", MaxAge: "old"}, nil)
	require.Error(t, err)

	appErr, ok := appErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeValidation, appErr.Code)

	fields := make([]string, 0, len(appErr.Fields))
	for _, fe := range appErr.Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"species", "gender", "minAge", "maxAge"}, fields)
}

func TestResolveListQuery_Mine(t *testing.T) {
	_, err := ResolveListQuery(ListQuery{Mine: "1"}, nil)
	require.Error(t, err)
	appErr, _ := appErrors.As(err)
	assert.Equal(t, appErrors.CodeUnauthenticated, appErr.Code)

	caller := &auth.Principal{ID: uuid.New()}
	rq, err := ResolveListQuery(ListQuery{Mine: "true"}, caller)
	require.NoError(t, err)
	require.NotNil(t, rq.Filter.ListedBy)
	assert.Equal(t, caller.ID, *rq.Filter.ListedBy)

	rq, err = ResolveListQuery(ListQuery{Mine: "no"}, caller)
	require.NoError(t, err)
	assert.Nil(t, rq.Filter.ListedBy)
}

func TestHasNext(t *testing.T) {
	assert.True(t, HasNext(0, 12, 13))
	assert.False(t, HasNext(0, 12, 12))
	assert.False(t, HasNext(24, 0, 13))
	assert.True(t, HasNext(12, 1, 14))
}
