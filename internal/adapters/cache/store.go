// Package cache implements the file-backed stage cache using a
// file-per-key strategy with atomic writes.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.CacheStore. It holds no state: the cache root is
// passed per call so independent process invocations (and tests pointing at
// throwaway directories) share nothing but the filesystem.
type Store struct{}

// NewStore creates a new Store.
func NewStore() (*Store, error) {
	return &Store{}, nil
}

// Get reads and unmarshals the record for key. A missing file is a miss,
// not an error; an unparseable file is reported as domain.ErrCacheCorrupt so
// the caller can treat it as a miss and overwrite it.
func (s *Store) Get(cacheRoot string, stage domain.CacheStage, key string, out any) (bool, error) {
	filename := s.filename(cacheRoot, stage, key)
	//nolint:gosec // path is a trusted cache directory plus a hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key)
	}

	if err := json.Unmarshal(data, out); err != nil {
		corrupt := zerr.With(zerr.Wrap(err, domain.ErrCacheCorrupt.Error()), "key", key)
		return false, zerr.With(corrupt, "file", filename)
	}

	return true, nil
}

// Put atomically replaces the record for key. The record is written to a
// temp file in the stage directory and renamed into place, so a concurrent
// reader sees either the old complete record or the new complete record,
// never a partial one. Concurrent writers race benignly: with deterministic
// stage outputs the last writer's content is indistinguishable.
func (s *Store) Put(cacheRoot string, stage domain.CacheStage, key string, record any) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}

	filename := s.filename(cacheRoot, stage, key)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}

	if err := os.Rename(tmpName, filename); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}

	return nil
}

// Delete removes the record for key. Missing records are ignored.
func (s *Store) Delete(cacheRoot string, stage domain.CacheStage, key string) error {
	err := os.Remove(s.filename(cacheRoot, stage, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}
	return nil
}

// filename maps a cache key to its record file. Keys contain separators
// (digests, repository paths), so the filename is the xxhash of the key.
func (s *Store) filename(cacheRoot string, stage domain.CacheStage, key string) string {
	sum := xxhash.Sum64String(key)
	return filepath.Join(domain.StagePath(cacheRoot, stage), fmt.Sprintf("%016x.json", sum))
}
