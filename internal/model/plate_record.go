package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"plate-registry/internal/plate"
)

// DefaultActor is recorded in registered_by when no authenticated
// user is attached to the request.
const DefaultActor = "system"

// PlateRecord is a registered vehicle plate. Plate keeps the spelling
// exactly as it was entered; identity comparisons always go through
// CanonicalPlate.
type PlateRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Plate        string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"plate"`
	Company      string    `gorm:"type:text;not null;default:''" json:"company"`
	Association  string    `gorm:"type:text;not null;default:''" json:"association"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
	RegisteredBy string    `gorm:"type:varchar(128);not null;default:'system'" json:"registered_by"`
}

func (PlateRecord) TableName() string {
	return "plate_records"
}

func (r *PlateRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.RegisteredBy == "" {
		r.RegisteredBy = DefaultActor
	}
	return nil
}

// CanonicalPlate is derived from Plate on every call, never stored.
func (r *PlateRecord) CanonicalPlate() string {
	return plate.Canonicalize(r.Plate)
}
