package pet

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	domainPet "pet-adoption-marketplace/internal/domain/pet"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"
)

const msgContactPhone = "contactPhone must be 10-15 digits (numbers only)"

// Payload is a create or update body as decoded from JSON or from multipart
// form fields. Values are loosely typed until NormalizeInput runs.
type Payload map[string]any

// PayloadFromForm converts multipart form values. Single values become
// strings; photos keeps every value.
func PayloadFromForm(values map[string][]string) Payload {
	p := make(Payload, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if key == "photos" {
			list := make([]any, 0, len(vals))
			for _, v := range vals {
				list = append(list, v)
			}
			p[key] = list
			continue
		}
		p[key] = vals[0]
	}
	return p
}

// Draft is the canonical form of a listing payload. A nil field was not
// supplied by the client.
type Draft struct {
	Name         *string
	Species      *domainPet.Species
	OtherSpecies *string
	Breed        *string
	Gender       *domainPet.Gender
	AgeMonths    *int
	Size         *domainPet.Size
	City         *string
	Vaccinated   *bool
	Dewormed     *bool
	Sterilized   *bool
	Description  *string
	Photos       []string
	Status       *string
	ContactPhone *string
}

// Changes projects the draft onto the update whitelist. Status is passed in
// separately because create and update resolve it differently.
func (d Draft) Changes(status *domainPet.Status) domainPet.Changes {
	return domainPet.Changes{
		Name:         d.Name,
		Species:      d.Species,
		OtherSpecies: d.OtherSpecies,
		Breed:        d.Breed,
		Gender:       d.Gender,
		AgeMonths:    d.AgeMonths,
		Size:         d.Size,
		City:         d.City,
		Vaccinated:   d.Vaccinated,
		Dewormed:     d.Dewormed,
		Sterilized:   d.Sterilized,
		Description:  d.Description,
		Photos:       d.Photos,
		Status:       status,
		ContactPhone: d.ContactPhone,
	}
}

// NormalizeInput coerces a payload into a Draft. Unknown keys are dropped.
// The returned field errors cover type, enum and length rules; rules that
// depend on the stored record are checked by the service.
func NormalizeInput(p Payload) (Draft, []appErrors.FieldError) {
	n := normalizer{payload: p}
	var d Draft

	d.Name = n.text("name", 1, domainPet.MaxNameLength)
	if species := n.enum("species"); species != nil {
		s := domainPet.Species(*species)
		if s.Valid() {
			d.Species = &s
		} else {
			n.fail("species", "must be one of [dog cat rabbit bird other]")
		}
	}

	// legacy clients send speciesOther
	if _, ok := p["otherSpecies"]; ok {
		d.OtherSpecies = n.text("otherSpecies", 0, domainPet.MaxOtherSpeciesLength)
	} else if _, ok := p["speciesOther"]; ok {
		d.OtherSpecies = n.textAs("speciesOther", "otherSpecies", 0, domainPet.MaxOtherSpeciesLength)
	}

	d.Breed = n.text("breed", 0, domainPet.MaxBreedLength)
	if gender := n.enum("gender"); gender != nil {
		g := domainPet.Gender(*gender)
		if g.Valid() {
			d.Gender = &g
		} else {
			n.fail("gender", "must be one of [male female unknown]")
		}
	}
	d.AgeMonths = n.integer("ageMonths", 0, domainPet.MaxAgeMonths)
	if size := n.enum("size"); size != nil {
		s := domainPet.Size(*size)
		if s.Valid() {
			d.Size = &s
		} else {
			n.fail("size", "must be one of [small medium large]")
		}
	}
	d.City = n.text("city", 0, domainPet.MaxCityLength)
	d.Vaccinated = n.boolean("vaccinated")
	d.Dewormed = n.boolean("dewormed")
	d.Sterilized = n.boolean("sterilized")
	d.Description = n.text("description", 0, domainPet.MaxDescriptionLength)
	d.Photos = n.photos("photos")
	d.Status = n.enum("status")

	if raw := n.text("contactPhone", 0, 64); raw != nil {
		if digits := utils.DigitsOnly(*raw); digits != "" {
			if len(digits) < domainPet.MinContactPhoneDigits || len(digits) > domainPet.MaxContactPhoneDigits {
				n.fail("contactPhone", msgContactPhone)
			} else {
				d.ContactPhone = &digits
			}
		}
	}

	return d, n.errs
}

type normalizer struct {
	payload Payload
	errs    []appErrors.FieldError
}

func (n *normalizer) fail(field, message string) {
	n.errs = append(n.errs, appErrors.FieldError{Field: field, Message: message})
}

// scalar renders a JSON or form scalar as a string.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		if len(t) == 1 {
			return scalar(t[0])
		}
	case []string:
		if len(t) == 1 {
			return t[0], true
		}
	}
	return "", false
}

func (n *normalizer) text(key string, minLen, maxLen int) *string {
	return n.textAs(key, key, minLen, maxLen)
}

func (n *normalizer) textAs(key, field string, minLen, maxLen int) *string {
	raw, ok := n.payload[key]
	if !ok || raw == nil {
		return nil
	}
	s, ok := scalar(raw)
	if !ok {
		n.fail(field, "must be a string")
		return nil
	}
	s = strings.TrimSpace(s)
	length := utf8.RuneCountInString(s)
	if length < minLen || length > maxLen {
		if minLen > 0 {
			n.fail(field, fmt.Sprintf("must be %d-%d characters", minLen, maxLen))
		} else {
			n.fail(field, fmt.Sprintf("must be at most %d characters", maxLen))
		}
		return nil
	}
	return &s
}

func (n *normalizer) enum(key string) *string {
	raw, ok := n.payload[key]
	if !ok || raw == nil {
		return nil
	}
	s, ok := scalar(raw)
	if !ok {
		n.fail(key, "must be a string")
		return nil
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return &s
}

func (n *normalizer) boolean(key string) *bool {
	raw, ok := n.payload[key]
	if !ok || raw == nil {
		return nil
	}
	var b bool
	switch t := raw.(type) {
	case bool:
		b = t
	case float64:
		b = t == 1
	default:
		s, ok := scalar(raw)
		if !ok {
			n.fail(key, "must be a boolean")
			return nil
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		b = utils.ParseLooseBool(s)
	}
	return &b
}

func (n *normalizer) integer(key string, lo, hi int) *int {
	raw, ok := n.payload[key]
	if !ok || raw == nil {
		return nil
	}
	s, ok := scalar(raw)
	if !ok {
		n.fail(key, "must be an integer")
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		n.fail(key, "must be an integer")
		return nil
	}
	if f < float64(lo) || f > float64(hi) {
		n.fail(key, fmt.Sprintf("must be between %d and %d", lo, hi))
		return nil
	}
	v := int(f)
	return &v
}

func (n *normalizer) photos(key string) []string {
	raw, ok := n.payload[key]
	if !ok || raw == nil {
		return nil
	}

	var items []string
	switch t := raw.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			items = append(items, s)
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
	case []any:
		for _, v := range t {
			s, ok := v.(string)
			if !ok {
				n.fail(key, "must be a list of strings")
				return nil
			}
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
	default:
		n.fail(key, "must be a list of strings")
		return nil
	}

	if len(items) > domainPet.MaxPhotos {
		n.fail(key, fmt.Sprintf("must contain at most %d entries", domainPet.MaxPhotos))
		return nil
	}
	for _, s := range items {
		if len(s) > domainPet.MaxPhotoURLLength {
			n.fail(key, fmt.Sprintf("entries must be at most %d characters", domainPet.MaxPhotoURLLength))
			return nil
		}
	}
	if items == nil {
		items = []string{}
	}
	return items
}
