package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"plate-registry/internal/model"
)

// searchLimit caps flexible-search responses from the remote tier.
const searchLimit = 1000

// RemoteRepository is the hosted Postgres tier. Full retrieval pages
// through the backend's row cap; flexible search runs server-side.
type RemoteRepository struct {
	db *gorm.DB
}

func NewRemoteRepository(db *gorm.DB) *RemoteRepository {
	return &RemoteRepository{db: db}
}

func (r *RemoteRepository) Tier() Tier {
	return TierRemote
}

// FetchAll counts first, then fetches ordered pages so that the result
// covers every row despite the per-request cap.
func (r *RemoteRepository) FetchAll(ctx context.Context) ([]model.PlateRecord, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}

	return fetchPaged(total, pageSize, func(offset, limit int) ([]model.PlateRecord, error) {
		var page []model.PlateRecord
		err := r.db.WithContext(ctx).
			Order("plate").
			Offset(offset).
			Limit(limit).
			Find(&page).Error
		if err != nil {
			return nil, err
		}
		return page, nil
	})
}

func (r *RemoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PlateRecord, error) {
	var rec model.PlateRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RemoteRepository) FindExact(ctx context.Context, plateRaw string) (*model.PlateRecord, error) {
	if plateRaw == "" {
		return nil, nil
	}
	var rec model.PlateRecord
	err := r.db.WithContext(ctx).Where("plate = ?", plateRaw).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RemoteRepository) Search(ctx context.Context, term string) ([]model.PlateRecord, error) {
	var records []model.PlateRecord
	pattern := "%" + term + "%"
	err := r.db.WithContext(ctx).
		Where("plate ILIKE ? OR company ILIKE ? OR association ILIKE ?", pattern, pattern, pattern).
		Order("plate").
		Limit(searchLimit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RemoteRepository) Insert(ctx context.Context, rec *model.PlateRecord) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUniqueViolation
	}
	return err
}

func (r *RemoteRepository) Update(ctx context.Context, rec *model.PlateRecord) error {
	res := r.db.WithContext(ctx).
		Model(&model.PlateRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"plate":       rec.Plate,
			"company":     rec.Company,
			"association": rec.Association,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrUniqueViolation
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RemoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PlateRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RemoteRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.PlateRecord{}).Error
}

func (r *RemoteRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.PlateRecord{}).Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
