package pet

import "strings"

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByAgeMonths SortField = "ageMonths"
	SortByName      SortField = "name"
)

// Sort orders listings by one field; ties break on id ascending.
type Sort struct {
	Field      SortField
	Descending bool
}

// DefaultSort is newest first.
var DefaultSort = Sort{Field: SortByCreatedAt, Descending: true}

// ParseSort resolves a "field" or "-field" token against the allow-list,
// falling back to DefaultSort.
func ParseSort(token string) Sort {
	token = strings.TrimSpace(token)
	desc := strings.HasPrefix(token, "-")
	field := SortField(strings.TrimPrefix(token, "-"))

	switch field {
	case SortByCreatedAt, SortByAgeMonths, SortByName:
		return Sort{Field: field, Descending: desc}
	default:
		return DefaultSort
	}
}

func (s Sort) String() string {
	if s.Descending {
		return "-" + string(s.Field)
	}
	return string(s.Field)
}
