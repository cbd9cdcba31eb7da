package gormstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

func openTestStore(t *testing.T, options ...Option) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "library.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := New(db, options...)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func sampleSnapshot(balance string) library.SystemSnapshot {
	return library.SystemSnapshot{
		LibraryID:         "library-1",
		LateFeePercentage: decimal.NewFromInt(10),
		Books: []library.BookSnapshot{{
			Title:         "Dune",
			Authors:       []string{"Frank Herbert"},
			PublishedYear: 1965,
			Editions:      map[string]int{"1": 1},
			RentalFee:     decimal.RequireFromString("2.00"),
		}},
		Members: []library.MemberSnapshot{{
			Name:      "Alice",
			Balance:   decimal.RequireFromString(balance),
			FeePolicy: "standard",
		}},
	}
}

func TestLoadEmptyTable(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, library.ErrSystemNotInitialized)

	revision, err := store.Revision(context.Background())
	require.NoError(t, err)
	assert.Zero(t, revision)
}

func TestSaveUpsertsSingleRow(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleSnapshot("100")))
	require.NoError(t, store.Save(ctx, sampleSnapshot("97.5")))

	var count int64
	require.NoError(t, store.db.Model(&LibrarySnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	revision, err := store.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), revision)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "97.5", loaded.Members[0].Balance.String())
}

func TestSlotsAreIndependent(t *testing.T) {
	t.Parallel()

	first := openTestStore(t)
	second := New(first.db, WithSlot("branch"))
	ctx := context.Background()

	require.NoError(t, first.Save(ctx, sampleSnapshot("1")))
	_, err := second.Load(ctx)
	assert.ErrorIs(t, err, library.ErrSystemNotInitialized)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleSnapshot("100")))

	failure := errors.New("operation failed")
	err := store.WithTx(ctx, func(ctx context.Context, txStore library.Store) error {
		if saveErr := txStore.Save(ctx, sampleSnapshot("1")); saveErr != nil {
			return saveErr
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", loaded.Members[0].Balance.String())
}

func TestServiceOverGormStore(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	service, err := library.NewService(store, func() time.Time { return now })
	require.NoError(t, err)
	ctx := context.Background()

	edition, err := library.NewEditionID("1")
	require.NoError(t, err)
	book, err := library.NewBook("Dune", []string{"Frank Herbert"}, 1965, map[library.EditionID]int{edition: 1}, decimal.RequireFromString("2.00"))
	require.NoError(t, err)
	lateFee, err := library.NewLateFeePercentage(decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = service.CreateLibrary(ctx, []*library.Book{book}, lateFee)
	require.NoError(t, err)

	bob, err := library.NewMemberName("Bob")
	require.NoError(t, err)
	require.NoError(t, service.AddMember(ctx, library.NewMember(bob, decimal.NewFromInt(1))))
	_, err = service.Borrow(ctx, bob, "Dune", edition)
	require.NoError(t, err)

	_, err = service.Return(ctx, bob, "Dune")
	assert.ErrorIs(t, err, library.ErrLowBalance)

	stored, err := service.Book(ctx, "Dune")
	require.NoError(t, err)
	count, _ := stored.Stock(edition)
	assert.Zero(t, count)
}
