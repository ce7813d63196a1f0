package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"plate-registry/internal/model"
)

// FlatRepository is the last-resort tier: the whole record set lives in
// one JSON blob that is always read and written in full. The medium
// enforces no uniqueness; the record store's pre-check is the only
// guard on this tier.
type FlatRepository struct {
	path string
	mu   sync.Mutex
}

func NewFlatRepository(path string) *FlatRepository {
	return &FlatRepository{path: path}
}

func (r *FlatRepository) Tier() Tier {
	return TierFlat
}

func (r *FlatRepository) load() ([]model.PlateRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.PlateRecord{}, nil
		}
		return nil, fmt.Errorf("read flat store: %w", err)
	}
	if len(data) == 0 {
		return []model.PlateRecord{}, nil
	}

	var records []model.PlateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode flat store: %w", err)
	}
	return records, nil
}

func (r *FlatRepository) save(records []model.PlateRecord) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create flat store directory: %w", err)
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode flat store: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write flat store: %w", err)
	}
	return nil
}

func (r *FlatRepository) FetchAll(ctx context.Context) ([]model.PlateRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Plate < records[j].Plate })
	return records, nil
}

func (r *FlatRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PlateRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (r *FlatRepository) FindExact(ctx context.Context, plateRaw string) (*model.PlateRecord, error) {
	if plateRaw == "" {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Plate == plateRaw {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *FlatRepository) Search(ctx context.Context, term string) ([]model.PlateRecord, error) {
	records, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByTerm(records, term), nil
}

func (r *FlatRepository) Insert(ctx context.Context, rec *model.PlateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.RegisteredAt.IsZero() {
		rec.RegisteredAt = time.Now().UTC()
	}
	if rec.RegisteredBy == "" {
		rec.RegisteredBy = model.DefaultActor
	}

	records = append(records, *rec)
	return r.save(records)
}

func (r *FlatRepository) Update(ctx context.Context, rec *model.PlateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == rec.ID {
			records[i].Plate = rec.Plate
			records[i].Company = rec.Company
			records[i].Association = rec.Association
			return r.save(records)
		}
	}
	return ErrNotFound
}

func (r *FlatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == id {
			records = append(records[:i], records[i+1:]...)
			return r.save(records)
		}
	}
	return ErrNotFound
}

func (r *FlatRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save([]model.PlateRecord{})
}

func (r *FlatRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

// ReplaceAll overwrites the blob with the given snapshot. Used when
// remote data is pulled down for offline use.
func (r *FlatRepository) ReplaceAll(ctx context.Context, records []model.PlateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(records)
}
