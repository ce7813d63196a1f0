package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"plate-registry/internal/model"
	"plate-registry/internal/plate"
	"plate-registry/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidPlate       = errors.New("implausible plate")
	ErrDuplicatePlate     = errors.New("plate already registered")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

const (
	cacheKey = "plates:all"
	// cacheTTL bounds how long a full-set snapshot may serve reads.
	cacheTTL = 5 * time.Minute
)

// PlateService is the record store: it owns the active backend and the
// TTL cache over the full record set, and applies canonical-identity
// rules on every write and lookup. The tier is fixed at construction
// and never re-evaluated.
type PlateService struct {
	backend repository.Backend
	cache   *gocache.Cache
	log     zerolog.Logger
}

func NewPlateService(backend repository.Backend, log zerolog.Logger) *PlateService {
	return &PlateService{
		backend: backend,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		log:     log,
	}
}

// Tier reports which storage tier the service is bound to.
func (s *PlateService) Tier() repository.Tier {
	return s.backend.Tier()
}

// cachedAll returns the full record set, serving the cached snapshot
// while it is fresh and refreshing it from the backend otherwise.
func (s *PlateService) cachedAll(ctx context.Context) ([]model.PlateRecord, error) {
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]model.PlateRecord), nil
	}

	records, err := s.backend.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, records, gocache.DefaultExpiration)
	return records, nil
}

// invalidate drops the snapshot outright so the next read re-scans.
func (s *PlateService) invalidate() {
	s.cache.Delete(cacheKey)
}

type RegisterInput struct {
	Plate       string
	Company     string
	Association string
	Actor       string
}

// Register inserts a new plate record after screening the whole active
// set for a canonical-identity duplicate.
func (s *PlateService) Register(ctx context.Context, input RegisterInput) (*model.PlateRecord, error) {
	raw := strings.TrimSpace(input.Plate)
	if !plate.IsPlausible(raw) {
		return nil, ErrInvalidPlate
	}

	existing, err := s.FindByIdentity(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate pre-check: %v", ErrBackendUnavailable, err)
	}
	if existing != nil {
		return nil, ErrDuplicatePlate
	}

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		actor = model.DefaultActor
	}

	rec := &model.PlateRecord{
		Plate:        raw,
		Company:      strings.TrimSpace(input.Company),
		Association:  strings.TrimSpace(input.Association),
		RegisteredBy: actor,
	}

	if err := s.backend.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrDuplicatePlate
		}
		return nil, fmt.Errorf("%w: insert: %v", ErrBackendUnavailable, err)
	}

	s.invalidate()
	return rec, nil
}

// FindByIdentity resolves a plate regardless of how it was punctuated
// when stored. On the remote tier each generated variant is probed with
// a cheap exact lookup; on local tiers the cached full set is scanned
// with canonical comparison. A miss is (nil, nil).
func (s *PlateService) FindByIdentity(ctx context.Context, plateRaw string) (*model.PlateRecord, error) {
	variants := plate.SearchVariants(plateRaw)
	if len(variants) == 0 {
		return nil, nil
	}

	if s.backend.Tier() == repository.TierRemote {
		for _, variant := range variants {
			rec, err := s.backend.FindExact(ctx, variant)
			if err != nil {
				s.log.Warn().Err(err).Str("variant", variant).Msg("exact lookup failed")
				continue
			}
			if rec != nil {
				return rec, nil
			}
		}
		return nil, nil
	}

	records, err := s.cachedAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, variant := range variants {
		for i := range records {
			if plate.SameIdentity(records[i].Plate, variant) {
				rec := records[i]
				return &rec, nil
			}
		}
	}
	return nil, nil
}

// Search returns the records matching term; an empty term yields the
// full active set through the cache. Backend read failures degrade to
// an empty result so callers can render "no matches".
func (s *PlateService) Search(ctx context.Context, term string) ([]model.PlateRecord, error) {
	term = strings.TrimSpace(term)

	if term == "" {
		records, err := s.cachedAll(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("full retrieval failed")
			return []model.PlateRecord{}, nil
		}
		return records, nil
	}

	records, err := s.backend.Search(ctx, term)
	if err != nil {
		s.log.Error().Err(err).Str("term", term).Msg("search failed")
		return []model.PlateRecord{}, nil
	}

	// The remote tier matches the literal term server-side; when that
	// yields nothing, retry with the canonical spelling.
	if len(records) == 0 && s.backend.Tier() == repository.TierRemote {
		if canonical := plate.Canonicalize(term); canonical != "" && canonical != term {
			records, err = s.backend.Search(ctx, canonical)
			if err != nil {
				s.log.Error().Err(err).Str("term", canonical).Msg("canonical search failed")
				return []model.PlateRecord{}, nil
			}
		}
	}

	if records == nil {
		records = []model.PlateRecord{}
	}
	return records, nil
}

type UpdateInput struct {
	Plate       string
	Company     string
	Association string
}

// Update rewrites the mutable fields of an existing record. The new
// plate must not collide, under canonical identity, with any other
// record in the active backend.
func (s *PlateService) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*model.PlateRecord, error) {
	raw := strings.TrimSpace(input.Plate)
	if !plate.IsPlausible(raw) {
		return nil, ErrInvalidPlate
	}

	rec, err := s.backend.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: load target: %v", ErrBackendUnavailable, err)
	}

	other, err := s.FindByIdentity(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate pre-check: %v", ErrBackendUnavailable, err)
	}
	if other != nil && other.ID != id {
		return nil, ErrDuplicatePlate
	}

	rec.Plate = raw
	rec.Company = strings.TrimSpace(input.Company)
	rec.Association = strings.TrimSpace(input.Association)

	if err := s.backend.Update(ctx, rec); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, ErrDuplicatePlate
		default:
			return nil, fmt.Errorf("%w: update: %v", ErrBackendUnavailable, err)
		}
	}

	s.invalidate()
	return rec, nil
}

// Delete removes a single record by id.
func (s *PlateService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: delete: %v", ErrBackendUnavailable, err)
	}
	s.invalidate()
	return nil
}

// ClearAll removes every record in the active backend.
func (s *PlateService) ClearAll(ctx context.Context) error {
	if err := s.backend.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrBackendUnavailable, err)
	}
	s.invalidate()
	return nil
}

// Count always asks the backend directly; counting is cheap and must
// reflect the current state, not the cached snapshot.
func (s *PlateService) Count(ctx context.Context) int64 {
	total, err := s.backend.Count(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("count failed")
		return 0
	}
	return total
}
