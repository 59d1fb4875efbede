package pet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-adoption-marketplace/internal/auth"
	domainPet "pet-adoption-marketplace/internal/domain/pet"
	domainUser "pet-adoption-marketplace/internal/domain/user"
	"pet-adoption-marketplace/internal/events"
	"pet-adoption-marketplace/internal/logger"
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	publishTimeout = 2 * time.Second

	msgPetNotFound        = "Pet not found"
	msgForbidden          = "You are not allowed to modify this listing"
	msgInvalidStatus      = "Invalid status"
	msgOtherSpeciesNeeded = "otherSpecies is required when species is 'other'"
)

// Service implements pet listing use cases
type Service struct {
	petRepo   domainPet.Repository
	userRepo  domainUser.Repository
	publisher events.Publisher
	now       func() time.Time
}

// NewService creates a new pet service
func NewService(petRepo domainPet.Repository, userRepo domainUser.Repository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		petRepo:   petRepo,
		userRepo:  userRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// List runs the public listing query. principal may be nil.
func (s *Service) List(ctx context.Context, q ListQuery, principal *auth.Principal) (*ListResult, error) {
	rq, err := ResolveListQuery(q, principal)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, rq)
}

// ListMine lists the caller's own listings.
func (s *Service) ListMine(ctx context.Context, q MineQuery, principal *auth.Principal) (*ListResult, error) {
	rq, err := ResolveMineQuery(q, principal)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, rq)
}

// run counts and fetches concurrently. The two reads are not linked by a
// transaction, so total may drift under concurrent writes.
func (s *Service) run(ctx context.Context, rq *ResolvedQuery) (*ListResult, error) {
	var (
		items []*domainPet.Pet
		total int64
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		total, err = s.petRepo.Count(ctx, rq.Filter)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		items, err = s.petRepo.Find(ctx, rq.Filter, rq.Sort, rq.Skip, rq.Limit)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}

	return &ListResult{
		Items: ToPetResponses(items),
		Meta: ListMeta{
			Total:   total,
			Page:    rq.Page,
			Limit:   rq.Limit,
			HasNext: HasNext(rq.Skip, len(items), total),
			Sort:    rq.Sort.String(),
		},
	}, nil
}

// Get returns a listing with its owner's public contact summary.
func (s *Service) Get(ctx context.Context, petID uuid.UUID) (*PetResponse, error) {
	p, err := s.getPet(ctx, petID)
	if err != nil {
		return nil, err
	}

	resp := ToPetResponse(p)
	owner, err := s.userRepo.GetByID(ctx, p.ListedBy)
	switch {
	case err == nil:
		resp.Owner = toOwnerResponse(&domainPet.Owner{
			ID:       owner.ID,
			FullName: owner.FullName,
			Username: owner.Username,
			Phone:    owner.Phone,
		})
	case !errors.Is(err, domainUser.ErrUserNotFound):
		return nil, err
	}

	return resp, nil
}

// Create stores a new listing owned by the caller. uploaded holds the storage
// paths of photos received with the request.
func (s *Service) Create(ctx context.Context, principal *auth.Principal, payload Payload, uploaded []string) (*PetResponse, error) {
	if principal == nil {
		return nil, appErrors.Unauthenticated("Authentication required", appErrors.ErrUnauthorized)
	}

	draft, fieldErrs := NormalizeInput(payload)
	if draft.Name == nil && !hasField(fieldErrs, "name") {
		fieldErrs = append(fieldErrs, appErrors.FieldError{Field: "name", Message: "name is required"})
	}
	if draft.Species == nil && !hasField(fieldErrs, "species") {
		fieldErrs = append(fieldErrs, appErrors.FieldError{Field: "species", Message: "species is required"})
	}
	if len(fieldErrs) > 0 {
		return nil, appErrors.Validation("Validation failed", fieldErrs...)
	}
	if *draft.Species == domainPet.SpeciesOther && (draft.OtherSpecies == nil || *draft.OtherSpecies == "") {
		return nil, otherSpeciesRequired()
	}

	status := domainPet.StatusAvailable
	if draft.Status != nil {
		if st := domainPet.Status(*draft.Status); st.Valid() {
			status = st
		}
	}

	now := s.now()
	p := &domainPet.Pet{
		ID:        uuid.New(),
		Gender:    domainPet.GenderUnknown,
		Size:      domainPet.SizeMedium,
		Status:    status,
		ListedBy:  principal.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Apply(draft.Changes(nil))
	p.Photos = mergePhotos(draft.Photos, uploaded)

	if err := s.petRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}

	logger.Info("Pet listing created",
		zap.String("pet_id", p.ID.String()),
		zap.String("owner_id", p.ListedBy.String()),
		zap.String("species", string(p.Species)),
		zap.String("event", "pet_created"),
	)
	s.publish(ctx, events.New(events.PetCreated, p.ID, p.ListedBy, principal.ID, string(p.Status)))

	return ToPetResponse(p), nil
}

// Update applies a whitelisted partial update on behalf of the owner or a
// superadmin.
func (s *Service) Update(ctx context.Context, principal *auth.Principal, petID uuid.UUID, payload Payload, uploaded []string) (*PetResponse, error) {
	existing, err := s.authorize(ctx, principal, petID)
	if err != nil {
		return nil, err
	}

	draft, fieldErrs := NormalizeInput(payload)

	var status *domainPet.Status
	if draft.Status != nil {
		if st := domainPet.Status(*draft.Status); st.Valid() {
			status = &st
		} else {
			fieldErrs = append(fieldErrs, appErrors.FieldError{Field: "status", Message: msgInvalidStatus})
		}
	}
	if len(fieldErrs) == 1 && fieldErrs[0].Field == "status" {
		return nil, appErrors.Validation(msgInvalidStatus, fieldErrs...)
	}
	if len(fieldErrs) > 0 {
		return nil, appErrors.Validation("Validation failed", fieldErrs...)
	}

	species := existing.Species
	if draft.Species != nil {
		species = *draft.Species
	}
	otherSpecies := existing.OtherSpecies
	if draft.OtherSpecies != nil {
		otherSpecies = *draft.OtherSpecies
	}
	if species == domainPet.SpeciesOther && otherSpecies == "" {
		return nil, otherSpeciesRequired()
	}

	// Uploads extend the stored photos; a body photos list sent with them is ignored.
	if len(uploaded) > 0 {
		draft.Photos = mergePhotos(existing.Photos, uploaded)
	}

	updated, err := s.petRepo.Update(ctx, petID, draft.Changes(status))
	if err != nil {
		if errors.Is(err, domainPet.ErrPetNotFound) {
			return nil, appErrors.NotFound(msgPetNotFound, err)
		}
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}

	logger.Info("Pet listing updated",
		zap.String("pet_id", petID.String()),
		zap.String("actor_id", principal.ID.String()),
		zap.String("event", "pet_updated"),
	)
	s.publish(ctx, events.New(events.PetUpdated, updated.ID, updated.ListedBy, principal.ID, string(updated.Status)))

	return ToPetResponse(updated), nil
}

// UpdateStatus moves a listing to any of the allowed statuses.
func (s *Service) UpdateStatus(ctx context.Context, principal *auth.Principal, petID uuid.UUID, rawStatus string) (*StatusResponse, error) {
	existing, err := s.authorize(ctx, principal, petID)
	if err != nil {
		return nil, err
	}

	status := domainPet.Status(rawStatus)
	if !status.Valid() {
		return nil, appErrors.Validation(msgInvalidStatus, appErrors.FieldError{Field: "status", Message: msgInvalidStatus})
	}

	if err := s.petRepo.UpdateStatus(ctx, petID, status); err != nil {
		if errors.Is(err, domainPet.ErrPetNotFound) {
			return nil, appErrors.NotFound(msgPetNotFound, err)
		}
		return nil, fmt.Errorf("failed to update pet status: %w", err)
	}

	logger.Info("Pet status changed",
		zap.String("pet_id", petID.String()),
		zap.String("from", string(existing.Status)),
		zap.String("to", string(status)),
		zap.String("actor_id", principal.ID.String()),
		zap.String("event", "pet_status_changed"),
	)
	s.publish(ctx, events.New(events.PetStatusChanged, petID, existing.ListedBy, principal.ID, string(status)))

	return &StatusResponse{ID: petID, Status: string(status)}, nil
}

// Delete removes a listing permanently.
func (s *Service) Delete(ctx context.Context, principal *auth.Principal, petID uuid.UUID) (*DeleteResponse, error) {
	existing, err := s.authorize(ctx, principal, petID)
	if err != nil {
		return nil, err
	}

	if err := s.petRepo.Delete(ctx, petID); err != nil {
		if errors.Is(err, domainPet.ErrPetNotFound) {
			return nil, appErrors.NotFound(msgPetNotFound, err)
		}
		return nil, fmt.Errorf("failed to delete pet: %w", err)
	}

	logger.Info("Pet listing deleted",
		zap.String("pet_id", petID.String()),
		zap.String("actor_id", principal.ID.String()),
		zap.String("event", "pet_deleted"),
	)
	s.publish(ctx, events.New(events.PetDeleted, petID, existing.ListedBy, principal.ID, ""))

	return &DeleteResponse{ID: petID}, nil
}

// authorize loads the listing and checks the caller may mutate it. Missing
// records fail before ownership is considered.
func (s *Service) authorize(ctx context.Context, principal *auth.Principal, petID uuid.UUID) (*domainPet.Pet, error) {
	if principal == nil {
		return nil, appErrors.Unauthenticated("Authentication required", appErrors.ErrUnauthorized)
	}

	p, err := s.getPet(ctx, petID)
	if err != nil {
		return nil, err
	}

	if !auth.CanManage(principal, p.ListedBy) {
		logger.Warn("Listing mutation denied",
			zap.String("pet_id", petID.String()),
			zap.String("actor_id", principal.ID.String()),
			zap.String("event", "pet_mutation_forbidden"),
		)
		return nil, appErrors.Forbidden(msgForbidden)
	}
	return p, nil
}

func (s *Service) getPet(ctx context.Context, petID uuid.UUID) (*domainPet.Pet, error) {
	p, err := s.petRepo.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, domainPet.ErrPetNotFound) {
			return nil, appErrors.NotFound(msgPetNotFound, err)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish pet event",
			zap.String("type", string(event.Type)),
			zap.String("pet_id", event.PetID.String()),
			zap.Error(err),
		)
	}
}

func otherSpeciesRequired() error {
	return appErrors.Validation(msgOtherSpeciesNeeded, appErrors.FieldError{Field: "otherSpecies", Message: msgOtherSpeciesNeeded})
}

// mergePhotos keeps base first and appends uploaded paths.
func mergePhotos(base, uploaded []string) []string {
	out := make([]string, 0, len(base)+len(uploaded))
	out = append(out, base...)
	return append(out, uploaded...)
}

func hasField(errs []appErrors.FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
