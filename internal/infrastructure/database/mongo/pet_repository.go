package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainPet "pet-adoption-marketplace/internal/domain/pet"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PetRepository implements domain pet.Repository on MongoDB
type PetRepository struct {
	pets *mongo.Collection
	now  func() time.Time
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db *DB) domainPet.Repository {
	return &PetRepository{pets: db.collection(petsCollection), now: time.Now}
}

func (r *PetRepository) Find(ctx context.Context, filter domainPet.Filter, order domainPet.Sort, skip, limit int) ([]*domainPet.Pet, error) {
	opts := options.Find().
		SetSort(sortSpec(order)).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.pets.Find(ctx, buildPetFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pets: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []petDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode pets: %w", err)
	}

	pets := make([]*domainPet.Pet, 0, len(docs))
	for i := range docs {
		p, err := toPetEntity(&docs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to decode pet %s: %w", docs[i].ID, err)
		}
		pets = append(pets, p)
	}
	return pets, nil
}

func (r *PetRepository) Count(ctx context.Context, filter domainPet.Filter) (int64, error) {
	n, err := r.pets.CountDocuments(ctx, buildPetFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count pets: %w", err)
	}
	return n, nil
}

func (r *PetRepository) GetByID(ctx context.Context, petID uuid.UUID) (*domainPet.Pet, error) {
	var doc petDocument
	err := r.pets.FindOne(ctx, bson.D{{Key: "_id", Value: petID.String()}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainPet.ErrPetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return toPetEntity(&doc)
}

func (r *PetRepository) Create(ctx context.Context, p *domainPet.Pet) error {
	if _, err := r.pets.InsertOne(ctx, toPetDocument(p)); err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

func (r *PetRepository) Update(ctx context.Context, petID uuid.UUID, changes domainPet.Changes) (*domainPet.Pet, error) {
	set := changeSet(changes)
	set = append(set, bson.E{Key: "updatedAt", Value: r.now()})

	var doc petDocument
	err := r.pets.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: petID.String()}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainPet.ErrPetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}
	return toPetEntity(&doc)
}

func (r *PetRepository) UpdateStatus(ctx context.Context, petID uuid.UUID, status domainPet.Status) error {
	res, err := r.pets.UpdateByID(ctx, petID.String(), bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(status)},
		{Key: "updatedAt", Value: r.now()},
	}}})
	if err != nil {
		return fmt.Errorf("failed to update pet status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domainPet.ErrPetNotFound
	}
	return nil
}

func (r *PetRepository) Delete(ctx context.Context, petID uuid.UUID) error {
	res, err := r.pets.DeleteOne(ctx, bson.D{{Key: "_id", Value: petID.String()}})
	if err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	if res.DeletedCount == 0 {
		return domainPet.ErrPetNotFound
	}
	return nil
}

// changeSet lists the whitelisted fields present in ch.
func changeSet(ch domainPet.Changes) bson.D {
	set := bson.D{}
	add := func(key string, value any) {
		set = append(set, bson.E{Key: key, Value: value})
	}

	if ch.Name != nil {
		add("name", *ch.Name)
	}
	if ch.Species != nil {
		add("species", string(*ch.Species))
	}
	if ch.OtherSpecies != nil {
		add("otherSpecies", *ch.OtherSpecies)
	}
	if ch.Breed != nil {
		add("breed", *ch.Breed)
	}
	if ch.Gender != nil {
		add("gender", string(*ch.Gender))
	}
	if ch.AgeMonths != nil {
		add("ageMonths", *ch.AgeMonths)
	}
	if ch.Size != nil {
		add("size", string(*ch.Size))
	}
	if ch.City != nil {
		add("city", *ch.City)
	}
	if ch.Vaccinated != nil {
		add("vaccinated", *ch.Vaccinated)
	}
	if ch.Dewormed != nil {
		add("dewormed", *ch.Dewormed)
	}
	if ch.Sterilized != nil {
		add("sterilized", *ch.Sterilized)
	}
	if ch.Description != nil {
		add("description", *ch.Description)
	}
	if ch.Photos != nil {
		add("photos", ch.Photos)
	}
	if ch.Status != nil {
		add("status", string(*ch.Status))
	}
	if ch.ContactPhone != nil {
		add("contactPhone", *ch.ContactPhone)
	}
	return set
}
