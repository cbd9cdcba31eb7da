// Package store picks a library.Store implementation from a database URL.
package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MarkoPoloResearchLab/lending/internal/store/filestore"
	"github.com/MarkoPoloResearchLab/lending/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/lending/internal/store/pgstore"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	PostgresDriverGorm = "gorm"
	PostgresDriverPGX  = "pgx"
	PostgresDriverPQ   = "pq"

	defaultSQLiteFile = "library.db"
	sqliteMemory      = ":memory:"
	jsonExtension     = ".json"
	sqlxDriverName    = "postgres"
)

// Target is a parsed database URL.
type Target struct {
	Backend string
	// Location is a filesystem path for file and sqlite backends, the DSN otherwise.
	Location string
}

// Opened is a ready Store plus the function releasing its resources.
type Opened struct {
	Store   library.Store
	Backend string
	Close   func() error
}

// Open resolves dsn, connects, and prepares the schema.
func Open(ctx context.Context, dsn string, postgresDriver string) (Opened, error) {
	target, err := Resolve(dsn)
	if err != nil {
		return Opened{}, err
	}
	switch target.Backend {
	case BackendFile:
		if err := ensureParentDir(target.Location); err != nil {
			return Opened{}, err
		}
		return Opened{Store: filestore.New(target.Location), Backend: BackendFile, Close: func() error { return nil }}, nil
	case BackendSQLite:
		if target.Location != sqliteMemory {
			if err := ensureParentDir(target.Location); err != nil {
				return Opened{}, err
			}
		}
		return openGorm(ctx, sqlite.Open(target.Location), BackendSQLite)
	case BackendPostgres:
		return openPostgres(ctx, target.Location, postgresDriver)
	default:
		return Opened{}, fmt.Errorf("unsupported database backend %q", target.Backend)
	}
}

// Resolve classifies dsn without touching the filesystem or network.
func Resolve(dsn string) (Target, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return Target{}, fmt.Errorf("database url is required")
	}
	switch {
	case strings.HasPrefix(trimmed, "postgres://"), strings.HasPrefix(trimmed, "postgresql://"):
		return Target{Backend: BackendPostgres, Location: trimmed}, nil
	case strings.HasPrefix(trimmed, "file://"):
		path, err := urlPath(trimmed, "")
		if err != nil {
			return Target{}, err
		}
		if path == "" {
			return Target{}, fmt.Errorf("file url %q has no path", trimmed)
		}
		return Target{Backend: BackendFile, Location: normalizePath(path)}, nil
	case strings.HasPrefix(trimmed, "sqlite://"):
		path, err := urlPath(trimmed, defaultSQLiteFile)
		if err != nil {
			return Target{}, err
		}
		return Target{Backend: BackendSQLite, Location: normalizePath(path)}, nil
	case strings.HasSuffix(trimmed, jsonExtension):
		return Target{Backend: BackendFile, Location: normalizePath(trimmed)}, nil
	default:
		return Target{Backend: BackendSQLite, Location: normalizePath(trimmed)}, nil
	}
}

func openPostgres(ctx context.Context, dsn string, driver string) (Opened, error) {
	switch driver {
	case "", PostgresDriverGorm:
		return openGorm(ctx, postgres.Open(dsn), BackendPostgres)
	case PostgresDriverPGX:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return Opened{}, fmt.Errorf("pgx pool: %w", err)
		}
		store := pgstore.New(pgstore.NewPGXDatabase(pool))
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return Opened{}, err
		}
		return Opened{Store: store, Backend: BackendPostgres, Close: func() error { pool.Close(); return nil }}, nil
	case PostgresDriverPQ:
		db, err := sqlx.ConnectContext(ctx, sqlxDriverName, dsn)
		if err != nil {
			return Opened{}, fmt.Errorf("sqlx connect: %w", err)
		}
		store := pgstore.New(pgstore.NewSQLXDatabase(db))
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return Opened{}, err
		}
		return Opened{Store: store, Backend: BackendPostgres, Close: db.Close}, nil
	default:
		return Opened{}, fmt.Errorf("unsupported postgres driver %q", driver)
	}
}

func openGorm(ctx context.Context, dialector gorm.Dialector, backend string) (Opened, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return Opened{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return Opened{}, err
	}
	store := gormstore.New(db)
	if err := store.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return Opened{}, err
	}
	return Opened{Store: store, Backend: backend, Close: sqlDB.Close}, nil
}

func urlPath(raw string, fallback string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	path := parsed.Host + parsed.Path
	if path == "" || path == "/" {
		path = fallback
	}
	return path, nil
}

func normalizePath(path string) string {
	if path == sqliteMemory || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(".", path)
}

func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
