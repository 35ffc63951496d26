package ports

import (
	"context"

	"go.trai.ch/shipper/internal/core/domain"
)

// TreeHasher computes the content hash of a source tree.
//
// With includeUncommitted the hash covers tracked files at their current
// on-disk content, staged or not; without it, only the last committed tree.
// The hash is computed fresh on every call and never cached.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type TreeHasher interface {
	Hash(ctx context.Context, repoPath string, includeUncommitted bool) (domain.TreeHash, error)
}
