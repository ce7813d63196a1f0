package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"plate-registry/internal/model"
)

// EmbeddedRepository is the local sqlite tier used when the remote
// backend is unavailable. The store itself enforces uniqueness on the
// raw plate column; violations surface as ErrUniqueViolation.
type EmbeddedRepository struct {
	db *gorm.DB
}

// NewEmbeddedRepository opens or creates the sqlite database at path
// and migrates the plate_records table.
func NewEmbeddedRepository(path string) (*EmbeddedRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&model.PlateRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite database: %w", err)
	}

	return &EmbeddedRepository{db: db}, nil
}

func (r *EmbeddedRepository) Tier() Tier {
	return TierEmbedded
}

func (r *EmbeddedRepository) FetchAll(ctx context.Context) ([]model.PlateRecord, error) {
	var records []model.PlateRecord
	if err := r.db.WithContext(ctx).Order("plate").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *EmbeddedRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PlateRecord, error) {
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

func (r *EmbeddedRepository) FindExact(ctx context.Context, plateRaw string) (*model.PlateRecord, error) {
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

// Search scans the table and filters client-side; sqlite has no
// case-insensitive OR-match that understands canonical plates.
func (r *EmbeddedRepository) Search(ctx context.Context, term string) ([]model.PlateRecord, error) {
	records, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByTerm(records, term), nil
}

func (r *EmbeddedRepository) Insert(ctx context.Context, rec *model.PlateRecord) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUniqueViolation
	}
	return err
}

func (r *EmbeddedRepository) Update(ctx context.Context, rec *model.PlateRecord) error {
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

func (r *EmbeddedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PlateRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EmbeddedRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.PlateRecord{}).Error
}

func (r *EmbeddedRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.PlateRecord{}).Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
