package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MarkoPoloResearchLab/lending/internal/snapshot"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

const (
	defaultSlot          = "default"
	dialectSQLite        = "sqlite"
	errorOperationStore  = "store"
	errorSubjectSnapshot = "snapshot"
	errorSubjectSchema   = "schema"
	errorCodeDecode      = "decode"
	errorCodeEncode      = "encode"
	errorCodeLoad        = "load"
	errorCodeMigrate     = "migrate"
	errorCodeSave        = "save"
	columnSlot           = "slot"
	columnLibraryID      = "library_id"
	columnPayload        = "payload"
	columnRevision       = "revision"
	columnUpdatedAt      = "updated_at"
)

// Store implements library.Store using GORM.
type Store struct {
	db   *gorm.DB
	slot string
}

// Option configures a Store.
type Option func(*Store)

// WithSlot keeps several independent libraries in one table.
func WithSlot(slot string) Option {
	return func(store *Store) {
		if slot != "" {
			store.slot = slot
		}
	}
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB, options ...Option) *Store {
	store := &Store{db: db, slot: defaultSlot}
	for _, option := range options {
		option(store)
	}
	return store
}

// Migrate creates the library_snapshots table when missing.
func (store *Store) Migrate(ctx context.Context) error {
	if err := store.db.WithContext(ctx).AutoMigrate(&LibrarySnapshot{}); err != nil {
		return library.WrapError(errorOperationStore, errorSubjectSchema, errorCodeMigrate, err)
	}
	return nil
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore library.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction, slot: store.slot})
	})
}

// Load reads the row for the configured slot, locking it for the rest of the transaction.
func (store *Store) Load(ctx context.Context) (library.SystemSnapshot, error) {
	var record LibrarySnapshot
	query := store.db.WithContext(ctx)
	if store.dialect() != dialectSQLite {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Where("slot = ?", store.slot).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return library.SystemSnapshot{}, wrapStoreError(errorCodeLoad, library.ErrSystemNotInitialized)
		}
		return library.SystemSnapshot{}, wrapStoreError(errorCodeLoad, err)
	}
	decoded, err := snapshot.Decode(record.Payload)
	if err != nil {
		return library.SystemSnapshot{}, wrapStoreError(errorCodeDecode, err)
	}
	return decoded, nil
}

// Save upserts the slot row and bumps its revision.
func (store *Store) Save(ctx context.Context, system library.SystemSnapshot) error {
	payload, err := snapshot.Encode(system)
	if err != nil {
		return wrapStoreError(errorCodeEncode, err)
	}
	now := time.Now().UTC()
	record := LibrarySnapshot{
		Slot:      store.slot,
		LibraryID: system.LibraryID,
		Revision:  1,
		Payload:   datatypes.JSON(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: columnSlot}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				columnLibraryID: clause.Expr{SQL: "excluded.library_id"},
				columnPayload:   clause.Expr{SQL: "excluded.payload"},
				columnUpdatedAt: clause.Expr{SQL: "excluded.updated_at"},
				columnRevision:  clause.Expr{SQL: store.revisionIncrement()},
			}),
		}).
		Create(&record).Error
	if err != nil {
		return wrapStoreError(errorCodeSave, err)
	}
	return nil
}

// Revision returns how many times the slot was saved, or zero when it never was.
func (store *Store) Revision(ctx context.Context) (int64, error) {
	var record LibrarySnapshot
	err := store.db.WithContext(ctx).
		Select(columnRevision).
		Where("slot = ?", store.slot).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapStoreError(errorCodeLoad, err)
	}
	return record.Revision, nil
}

func (store *Store) dialect() string {
	if store.db.Dialector == nil {
		return ""
	}
	return store.db.Dialector.Name()
}

// postgres needs the target table to disambiguate from excluded
func (store *Store) revisionIncrement() string {
	if store.dialect() == dialectSQLite {
		return "revision + 1"
	}
	return "library_snapshots.revision + 1"
}

func wrapStoreError(code string, err error) error {
	return library.WrapError(errorOperationStore, errorSubjectSnapshot, code, err)
}
