// Package filestore persists the library aggregate as a single JSON file.
package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MarkoPoloResearchLab/lending/internal/snapshot"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

const (
	errorOperationStore  = "store"
	errorSubjectSnapshot = "snapshot"
	errorCodeRead        = "read"
	errorCodeDecode      = "decode"
	errorCodeEncode      = "encode"
	errorCodeMkdir       = "mkdir"
	errorCodeWrite       = "write"
	errorCodeRename      = "rename"
	directoryPermissions = 0o755
	snapshotPermissions  = 0o600
	temporaryFileSuffix  = ".tmp"
)

// Store implements library.Store on top of one file. Writes go to a temporary
// file first and are renamed into place.
type Store struct {
	path  string
	mutex *sync.Mutex
	inTx  bool
}

// New returns a Store writing to path.
func New(path string) *Store {
	return &Store{path: filepath.Clean(path), mutex: &sync.Mutex{}}
}

// Path returns the snapshot file location.
func (store *Store) Path() string {
	return store.path
}

// WithTx serializes fn against other transactions on the same Store.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore library.Store) error) error {
	if store.inTx {
		return fn(ctx, store)
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return fn(ctx, &Store{path: store.path, mutex: store.mutex, inTx: true})
}

// Load reads and decodes the snapshot file.
func (store *Store) Load(ctx context.Context) (library.SystemSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return library.SystemSnapshot{}, err
	}
	data, err := os.ReadFile(store.path)
	if errors.Is(err, fs.ErrNotExist) {
		return library.SystemSnapshot{}, wrapStoreError(errorCodeRead, library.ErrSystemNotInitialized)
	}
	if err != nil {
		return library.SystemSnapshot{}, wrapStoreError(errorCodeRead, err)
	}
	decoded, err := snapshot.Decode(data)
	if err != nil {
		return library.SystemSnapshot{}, wrapStoreError(errorCodeDecode, err)
	}
	return decoded, nil
}

// Save replaces the snapshot file.
func (store *Store) Save(ctx context.Context, system library.SystemSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := snapshot.Encode(system)
	if err != nil {
		return wrapStoreError(errorCodeEncode, err)
	}
	if err := os.MkdirAll(filepath.Dir(store.path), directoryPermissions); err != nil {
		return wrapStoreError(errorCodeMkdir, err)
	}
	temporaryPath := store.path + temporaryFileSuffix
	if err := os.WriteFile(temporaryPath, data, snapshotPermissions); err != nil {
		return wrapStoreError(errorCodeWrite, err)
	}
	if err := os.Rename(temporaryPath, store.path); err != nil {
		_ = os.Remove(temporaryPath)
		return wrapStoreError(errorCodeRename, err)
	}
	return nil
}

func wrapStoreError(code string, err error) error {
	return library.WrapError(errorOperationStore, errorSubjectSnapshot, code, err)
}
