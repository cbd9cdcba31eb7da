// Package pgstore persists the library aggregate in PostgreSQL using SQL rendered by goqu.
package pgstore

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/MarkoPoloResearchLab/lending/internal/snapshot"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

const (
	dialectPostgres         = "postgres"
	tableLibrarySnapshots   = "library_snapshots"
	colSlot                 = "slot"
	colLibraryID            = "library_id"
	colPayload              = "payload"
	colRevision             = "revision"
	colUpdatedAt            = "updated_at"
	defaultSlot             = "default"
	castJSONB               = "?::jsonb"
	errorOperationStore     = "store"
	errorSubjectSnapshot    = "snapshot"
	errorSubjectSchema      = "schema"
	errorSubjectTransaction = "transaction"
	errorCodeBegin          = "begin"
	errorCodeBuild          = "build"
	errorCodeCommit         = "commit"
	errorCodeDecode         = "decode"
	errorCodeEncode         = "encode"
	errorCodeLoad           = "load"
	errorCodeMigrate        = "migrate"
	errorCodeSave           = "save"

	sqlCreateLibrarySnapshots = `
		create table if not exists library_snapshots (
			slot text primary key,
			library_id text not null,
			revision bigint not null default 1,
			payload jsonb not null,
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now()
		)
	`
)

// Store implements library.Store over a Database (autocommit) or an open Transaction.
type Store struct {
	database    Database
	transaction Transaction
	slot        string
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

// New returns a Store backed by database.
func New(database Database, options ...Option) *Store {
	store := &Store{database: database, slot: defaultSlot}
	for _, option := range options {
		option(store)
	}
	return store
}

// Migrate creates the snapshot table when missing.
func (store *Store) Migrate(ctx context.Context) error {
	if _, err := store.database.Exec(ctx, sqlCreateLibrarySnapshots); err != nil {
		return library.WrapError(errorOperationStore, errorSubjectSchema, errorCodeMigrate, err)
	}
	return nil
}

// WithTx runs fn inside one transaction; nested calls reuse it.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore library.Store) error) error {
	if store.transaction != nil {
		return fn(ctx, store)
	}
	transaction, err := store.database.Begin(ctx)
	if err != nil {
		return library.WrapError(errorOperationStore, errorSubjectTransaction, errorCodeBegin, err)
	}
	transactionStore := &Store{database: store.database, transaction: transaction, slot: store.slot}
	if err := fn(ctx, transactionStore); err != nil {
		_ = transaction.Rollback(ctx)
		return err
	}
	if err := transaction.Commit(ctx); err != nil {
		return library.WrapError(errorOperationStore, errorSubjectTransaction, errorCodeCommit, err)
	}
	return nil
}

// Load selects the slot row. Inside a transaction the row stays locked until commit.
func (store *Store) Load(ctx context.Context) (library.SystemSnapshot, error) {
	query, err := buildLoadQuery(store.slot, store.transaction != nil)
	if err != nil {
		return library.SystemSnapshot{}, wrapStoreError(errorCodeBuild, err)
	}
	rows, err := store.executor().Query(ctx, query)
	if err != nil {
		return library.SystemSnapshot{}, wrapStoreError(errorCodeLoad, err)
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return library.SystemSnapshot{}, wrapStoreError(errorCodeLoad, err)
		}
		return library.SystemSnapshot{}, wrapStoreError(errorCodeLoad, library.ErrSystemNotInitialized)
	}
	var payload string
	if err := rows.Scan(&payload); err != nil {
		return library.SystemSnapshot{}, wrapStoreError(errorCodeLoad, err)
	}
	decoded, err := snapshot.Decode([]byte(payload))
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
	query, err := buildSaveQuery(store.slot, system.LibraryID, payload)
	if err != nil {
		return wrapStoreError(errorCodeBuild, err)
	}
	if _, err := store.executor().Exec(ctx, query); err != nil {
		return wrapStoreError(errorCodeSave, err)
	}
	return nil
}

func (store *Store) executor() Executor {
	if store.transaction != nil {
		return store.transaction
	}
	return store.database
}

func buildLoadQuery(slot string, forUpdate bool) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableLibrarySnapshots).
		Select(goqu.L(colPayload + "::text")).
		Where(goqu.C(colSlot).Eq(slot))
	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}
	query, _, err := selectStmt.ToSQL()
	return query, err
}

func buildSaveQuery(slot string, libraryID string, payload []byte) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(tableLibrarySnapshots).
		Rows(goqu.Record{
			colSlot:      slot,
			colLibraryID: libraryID,
			colPayload:   goqu.L(castJSONB, string(payload)),
			colUpdatedAt: goqu.L("now()"),
		}).
		OnConflict(goqu.DoUpdate(colSlot, goqu.Record{
			colLibraryID: goqu.L("EXCLUDED." + colLibraryID),
			colPayload:   goqu.L("EXCLUDED." + colPayload),
			colUpdatedAt: goqu.L("EXCLUDED." + colUpdatedAt),
			colRevision:  goqu.L(tableLibrarySnapshots + "." + colRevision + " + 1"),
		}))
	query, _, err := insertStmt.ToSQL()
	return query, err
}

func wrapStoreError(code string, err error) error {
	return library.WrapError(errorOperationStore, errorSubjectSnapshot, code, err)
}
