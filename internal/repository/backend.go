package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"plate-registry/internal/model"
	"plate-registry/internal/plate"
)

var (
	// ErrNotFound is returned when the target record id is absent.
	ErrNotFound = errors.New("record not found")
	// ErrUniqueViolation is returned when the storage tier rejects a
	// write because of its own uniqueness constraint on the plate column.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// Tier identifies which storage tier a backend talks to. The record
// store binds to exactly one tier for its whole lifetime.
type Tier int

const (
	TierRemote Tier = iota
	TierEmbedded
	TierFlat
)

func (t Tier) String() string {
	switch t {
	case TierRemote:
		return "remote"
	case TierEmbedded:
		return "embedded"
	case TierFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Backend is the uniform contract over the remote relational tier, the
// embedded sqlite tier and the flat file tier.
type Backend interface {
	Tier() Tier
	FetchAll(ctx context.Context) ([]model.PlateRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.PlateRecord, error)
	// FindExact matches the stored plate spelling verbatim; a miss is
	// (nil, nil), not an error.
	FindExact(ctx context.Context, plateRaw string) (*model.PlateRecord, error)
	Search(ctx context.Context, term string) ([]model.PlateRecord, error)
	Insert(ctx context.Context, rec *model.PlateRecord) error
	// Update persists plate, company and association only; id and
	// registration metadata are immutable.
	Update(ctx context.Context, rec *model.PlateRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// filterByTerm is the client-side search used by the local tiers:
// canonical-substring match on the plate, case-insensitive substring
// match on company and association.
func filterByTerm(records []model.PlateRecord, term string) []model.PlateRecord {
	term = strings.TrimSpace(term)
	if term == "" {
		return records
	}

	canonical := plate.Canonicalize(term)
	lower := strings.ToLower(term)

	matched := make([]model.PlateRecord, 0, len(records))
	for _, rec := range records {
		if canonical != "" && strings.Contains(rec.CanonicalPlate(), canonical) {
			matched = append(matched, rec)
			continue
		}
		if strings.Contains(strings.ToLower(rec.Company), lower) ||
			strings.Contains(strings.ToLower(rec.Association), lower) {
			matched = append(matched, rec)
		}
	}
	return matched
}
