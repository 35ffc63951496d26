// Package domain contains the immutable value records flowing through the
// pipeline: tree hashes, image references, and deployment results. Records
// are constructed once and never mutated; derived fields are computed at
// construction time.
package domain

import (
	"strings"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
	"go.trai.ch/zerr"
)

// TreeHash is the content hash of a full source tree state, including staged
// and unstaged changes. Identical tree content yields an identical hash.
type TreeHash string

const treeHashLen = 40

// ParseTreeHash validates a git tree object id (40 hex characters).
func ParseTreeHash(s string) (TreeHash, error) {
	s = strings.TrimSpace(s)
	if len(s) != treeHashLen {
		return "", zerr.With(ErrInvalidTreeHash, "value", s)
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", zerr.With(ErrInvalidTreeHash, "value", s)
		}
	}
	return TreeHash(s), nil
}

// String returns the full hex hash.
func (h TreeHash) String() string { return string(h) }

// Short returns the abbreviated hash used in log lines.
func (h TreeHash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// LocalImage identifies a built image present in local image storage.
// Name is the deterministic tag derived from the source hash; Digest is the
// content digest reported by the local store.
type LocalImage struct {
	SourceHash TreeHash
	Name       string
	Digest     digest.Digest
}

// NewLocalImage validates the digest and constructs the record.
func NewLocalImage(sourceHash TreeHash, name, dgst string) (LocalImage, error) {
	d, err := digest.Parse(dgst)
	if err != nil {
		return LocalImage{}, zerr.With(zerr.Wrap(err, ErrInvalidDigest.Error()), "digest", dgst)
	}
	return LocalImage{SourceHash: sourceHash, Name: name, Digest: d}, nil
}

// RegistryImage identifies an image fetchable from a remote registry. It is
// always addressed by digest, never by a mutable tag.
type RegistryImage struct {
	Host       string
	Repository string
	Digest     digest.Digest

	pullRef string
}

// NewRegistryImage normalizes host/repository and derives the pullable
// repo@digest reference at construction time.
func NewRegistryImage(host, repository, dgst string) (RegistryImage, error) {
	d, err := digest.Parse(dgst)
	if err != nil {
		return RegistryImage{}, zerr.With(zerr.Wrap(err, ErrInvalidDigest.Error()), "digest", dgst)
	}

	named, err := reference.ParseNormalizedNamed(host + "/" + repository)
	if err != nil {
		return RegistryImage{}, zerr.With(
			zerr.Wrap(err, ErrInvalidReference.Error()),
			"reference", host+"/"+repository,
		)
	}
	canonical, err := reference.WithDigest(named, d)
	if err != nil {
		return RegistryImage{}, zerr.Wrap(err, ErrInvalidReference.Error())
	}

	return RegistryImage{
		Host:       reference.Domain(named),
		Repository: reference.Path(named),
		Digest:     d,
		pullRef:    canonical.String(),
	}, nil
}

// PullRef returns the canonical repo@digest reference any authorized client
// can fetch.
func (r RegistryImage) PullRef() string { return r.pullRef }

// Deployment pairs a reachable application URL with the exact image it was
// deployed from, so a URL can always answer "which image is this?".
type Deployment struct {
	App   string
	URL   string
	Image RegistryImage
}
