package mongo

import (
	"regexp"
	"strings"

	domainPet "pet-adoption-marketplace/internal/domain/pet"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// searchFields are matched by substring when a free-text query is given.
var searchFields = []string{"name", "breed", "description", "city", "otherSpecies"}

// buildPetFilter translates a listing filter into a conjunction. User input
// only ever reaches the query as a quoted literal.
func buildPetFilter(f domainPet.Filter) bson.D {
	filter := bson.D{}

	if f.Species != "" {
		filter = append(filter, bson.E{Key: "species", Value: string(f.Species)})
	}
	if f.Gender != "" {
		filter = append(filter, bson.E{Key: "gender", Value: string(f.Gender)})
	}
	if f.Size != "" {
		filter = append(filter, bson.E{Key: "size", Value: string(f.Size)})
	}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.City != "" {
		filter = append(filter, bson.E{Key: "city", Value: containsRegex(f.City)})
	}
	if f.OtherSpecies != "" {
		filter = append(filter, bson.E{Key: "otherSpecies", Value: containsRegex(f.OtherSpecies)})
	}
	if f.Vaccinated != nil {
		filter = append(filter, bson.E{Key: "vaccinated", Value: *f.Vaccinated})
	}
	if f.Dewormed != nil {
		filter = append(filter, bson.E{Key: "dewormed", Value: *f.Dewormed})
	}
	if f.Sterilized != nil {
		filter = append(filter, bson.E{Key: "sterilized", Value: *f.Sterilized})
	}

	if f.MinAge != nil || f.MaxAge != nil {
		age := bson.D{}
		if f.MinAge != nil {
			age = append(age, bson.E{Key: "$gte", Value: *f.MinAge})
		}
		if f.MaxAge != nil {
			age = append(age, bson.E{Key: "$lte", Value: *f.MaxAge})
		}
		filter = append(filter, bson.E{Key: "ageMonths", Value: age})
	}

	if f.ListedBy != nil {
		filter = append(filter, bson.E{Key: "listedBy", Value: f.ListedBy.String()})
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		or := bson.A{bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: q}}}}}
		re := containsRegex(q)
		for _, field := range searchFields {
			or = append(or, bson.D{{Key: field, Value: re}})
		}
		filter = append(filter, bson.E{Key: "$or", Value: or})
	}

	return filter
}

func containsRegex(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

// sortSpec orders by the requested field then by _id so pages are stable.
func sortSpec(s domainPet.Sort) bson.D {
	dir := 1
	if s.Descending {
		dir = -1
	}
	field := string(s.Field)
	if field == "" {
		field = string(domainPet.DefaultSort.Field)
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}
