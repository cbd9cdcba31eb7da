package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LibrarySnapshot mirrors the library_snapshots table: one row per slot holding the encoded aggregate.
type LibrarySnapshot struct {
	SnapshotID string         `gorm:"type:uuid;primaryKey"`
	Slot       string         `gorm:"not null;uniqueIndex:uniq_library_snapshots_slot"`
	LibraryID  string         `gorm:"not null"`
	Revision   int64          `gorm:"not null;default:1"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

func (LibrarySnapshot) TableName() string { return "library_snapshots" }

func (record *LibrarySnapshot) BeforeCreate(tx *gorm.DB) error {
	if record.SnapshotID == "" {
		record.SnapshotID = uuid.NewString()
	}
	return nil
}
