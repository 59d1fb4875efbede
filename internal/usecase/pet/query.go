package pet

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"pet-adoption-marketplace/internal/auth"
	domainPet "pet-adoption-marketplace/internal/domain/pet"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"
)

const (
	DefaultLimit = 12
	MaxLimit     = 50

	maxPage        = 1 << 20
	maxQueryLength = 200
	maxTermLength  = 60
)

// ListQuery holds the raw query string of GET /pets. Every field is a string
// so that binding never fails; ResolveListQuery decides what is acceptable.
type ListQuery struct {
	Q            string `form:"q"`
	Species      string `form:"species"`
	OtherSpecies string `form:"otherSpecies"`
	SpeciesOther string `form:"speciesOther"`
	Gender       string `form:"gender"`
	Size         string `form:"size"`
	Status       string `form:"status"`
	City         string `form:"city"`
	Vaccinated   string `form:"vaccinated"`
	Dewormed     string `form:"dewormed"`
	Sterilized   string `form:"sterilized"`
	MinAge       string `form:"minAge"`
	MaxAge       string `form:"maxAge"`
	Mine         string `form:"mine"`
	Sort         string `form:"sort"`
	Page         string `form:"page"`
	Limit        string `form:"limit"`
}

// MineQuery holds the query string of GET /pets/mine.
type MineQuery struct {
	Status string `form:"status"`
	Sort   string `form:"sort"`
	Page   string `form:"page"`
	Limit  string `form:"limit"`
}

// ResolvedQuery is a bounded repository query.
type ResolvedQuery struct {
	Filter domainPet.Filter
	Sort   domainPet.Sort
	Page   int
	Limit  int
	Skip   int
}

// ResolveListQuery validates and normalizes the listing parameters. Enum
// and age parameters are strict; status, sort, page and limit fall back to
// safe values instead of failing.
func ResolveListQuery(q ListQuery, principal *auth.Principal) (*ResolvedQuery, error) {
	var (
		f    domainPet.Filter
		errs []appErrors.FieldError
	)
	fail := func(field, message string) {
		errs = append(errs, appErrors.FieldError{Field: field, Message: message})
	}

	if text := strings.TrimSpace(q.Q); text != "" {
		if utf8.RuneCountInString(text) > maxQueryLength {
			fail("q", "must be at most 200 characters")
		}
		f.Query = text
	}

	if v := strings.TrimSpace(q.Species); v != "" {
		if s := domainPet.Species(strings.ToLower(v)); s.Valid() {
			f.Species = s
		} else {
			fail("species", "must be one of [dog cat rabbit bird other]")
		}
	}
	if v := strings.TrimSpace(q.Gender); v != "" {
		if g := domainPet.Gender(strings.ToLower(v)); g.Valid() {
			f.Gender = g
		} else {
			fail("gender", "must be one of [male female unknown]")
		}
	}
	if v := strings.TrimSpace(q.Size); v != "" {
		if s := domainPet.Size(strings.ToLower(v)); s.Valid() {
			f.Size = s
		} else {
			fail("size", "must be one of [small medium large]")
		}
	}
	if s := domainPet.Status(strings.ToLower(strings.TrimSpace(q.Status))); s.Valid() {
		f.Status = s
	}

	f.City = boundedTerm(q.City, "city", fail)
	otherSpecies := q.OtherSpecies
	if strings.TrimSpace(otherSpecies) == "" {
		otherSpecies = q.SpeciesOther
	}
	f.OtherSpecies = boundedTerm(otherSpecies, "otherSpecies", fail)

	f.Vaccinated = looseBool(q.Vaccinated)
	f.Dewormed = looseBool(q.Dewormed)
	f.Sterilized = looseBool(q.Sterilized)

	f.MinAge = ageBound(q.MinAge, "minAge", fail)
	f.MaxAge = ageBound(q.MaxAge, "maxAge", fail)

	if len(errs) > 0 {
		return nil, appErrors.Validation("Validation failed", errs...)
	}

	if utils.ParseLooseBool(q.Mine) {
		if principal == nil {
			return nil, appErrors.Unauthenticated("Login required to view your listings", appErrors.ErrUnauthorized)
		}
		owner := principal.ID
		f.ListedBy = &owner
	}

	return paginate(f, q.Sort, q.Page, q.Limit), nil
}

// ResolveMineQuery scopes a listing query to the caller's own records.
func ResolveMineQuery(q MineQuery, principal *auth.Principal) (*ResolvedQuery, error) {
	if principal == nil {
		return nil, appErrors.Unauthenticated("Authentication required", appErrors.ErrUnauthorized)
	}

	owner := principal.ID
	f := domainPet.Filter{ListedBy: &owner}
	if s := domainPet.Status(strings.ToLower(strings.TrimSpace(q.Status))); s.Valid() {
		f.Status = s
	}

	return paginate(f, q.Sort, q.Page, q.Limit), nil
}

func paginate(f domainPet.Filter, sortToken, pageRaw, limitRaw string) *ResolvedQuery {
	page := utils.ClampInt(utils.ParseIntOr(pageRaw, 1), 1, maxPage)
	limit := utils.ClampInt(utils.ParseIntOr(limitRaw, DefaultLimit), 1, MaxLimit)

	return &ResolvedQuery{
		Filter: f,
		Sort:   domainPet.ParseSort(sortToken),
		Page:   page,
		Limit:  limit,
		Skip:   (page - 1) * limit,
	}
}

// HasNext reports whether another page follows the one just fetched.
func HasNext(skip, returned int, total int64) bool {
	return int64(skip+returned) < total
}

func boundedTerm(raw, field string, fail func(string, string)) string {
	v := strings.TrimSpace(raw)
	if utf8.RuneCountInString(v) > maxTermLength {
		fail(field, "must be at most 60 characters")
		return ""
	}
	return v
}

func looseBool(raw string) *bool {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	b := utils.ParseLooseBool(raw)
	return &b
}

func ageBound(raw, field string, fail func(string, string)) *int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		fail(field, "must be a non-negative integer")
		return nil
	}
	return &n
}
