package ports

import "go.trai.ch/shipper/internal/core/domain"

// CacheStore persists one record file per cache key under a per-stage
// directory. Writes are atomic (temp file then rename) so concurrent readers
// never observe a partial record; reads take no locks. A returned record is
// a claim, not a fact: the owning stage must re-verify it against the live
// external system before trusting it.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type CacheStore interface {
	// Get unmarshals the record for key into out. It returns (false, nil)
	// on a miss and an error only when an existing record cannot be read
	// or parsed.
	Get(cacheRoot string, stage domain.CacheStage, key string, out any) (bool, error)

	// Put atomically writes the record for key, replacing any previous one.
	Put(cacheRoot string, stage domain.CacheStage, key string, record any) error

	// Delete removes the record for key. Deleting a missing record is not
	// an error.
	Delete(cacheRoot string, stage domain.CacheStage, key string) error
}
