// Package build implements the image build stage: deterministic tagging,
// verification-gated caching, and the external builder invocation.
package build

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/zerr"
)

// sourceDateEpoch pins all build-time metadata to a fixed instant. Without
// it, byte-identical sources would still produce differing digests.
const sourceDateEpoch = "0"

// Spec describes one build request.
type Spec struct {
	SourceHash domain.TreeHash
	ContextDir string
	Dockerfile string
	BuildArgs  map[string]string
	Target     string
	Namespace  string
	CacheRoot  string
	// Timeout bounds the external builder call. Zero means unbounded.
	Timeout time.Duration
	// NoCache skips the cache lookup; the result is still recorded.
	NoCache bool
}

// Builder wraps the external image builder.
//
// The postcondition of Build is "image exists locally under this name and
// digest", not "image was just built": a verified cache hit and a fresh
// build are indistinguishable to the caller except by latency.
type Builder struct {
	runner ports.Runner
	store  ports.CacheStore
	logger ports.Logger

	tool      string
	probeOnce sync.Once
	probeErr  error
}

// NewBuilder creates a Builder invoking the docker CLI.
func NewBuilder(runner ports.Runner, store ports.CacheStore, logger ports.Logger) *Builder {
	return &Builder{
		runner: runner,
		store:  store,
		logger: logger,
		tool:   "docker",
	}
}

// ValidateDeterminism checks once that the configured builder can pin
// creation timestamps (BuildKit honors SOURCE_DATE_EPOCH). A builder that
// cannot is rejected outright rather than silently producing unstable
// digests.
func (b *Builder) ValidateDeterminism(ctx context.Context) error {
	b.probeOnce.Do(func() {
		_, err := b.runner.Run(ctx, ports.Command{
			Name: b.tool,
			Args: []string{"buildx", "version"},
		})
		if err != nil {
			b.probeErr = zerr.With(
				zerr.Wrap(err, domain.ErrBuilderNotDeterministic.Error()),
				"tool", b.tool,
			)
		}
	})
	return b.probeErr
}

// Build returns a locally existing image for the given source hash,
// consulting and populating the image cache.
func (b *Builder) Build(ctx context.Context, spec Spec) (domain.LocalImage, error) {
	tag := deriveTag(spec.Namespace, spec.SourceHash)
	key := domain.ImageCacheKey(spec.SourceHash)

	if !spec.NoCache {
		if img, ok := b.cachedImage(ctx, spec.CacheRoot, key); ok {
			b.info("image cache hit for " + spec.SourceHash.Short())
			return img, nil
		}
	}

	if err := b.runBuild(ctx, spec, tag); err != nil {
		return domain.LocalImage{}, err
	}

	dgst, err := b.localDigest(ctx, tag)
	if err != nil {
		return domain.LocalImage{}, zerr.With(
			zerr.Wrap(err, domain.ErrBuildFailed.Error()),
			"source_hash", spec.SourceHash.String(),
		)
	}

	img, err := domain.NewLocalImage(spec.SourceHash, tag, dgst)
	if err != nil {
		return domain.LocalImage{}, err
	}

	rec := domain.ImageRecord{
		SourceHash: spec.SourceHash.String(),
		Name:       img.Name,
		Digest:     img.Digest.String(),
		RecordedAt: time.Now().UTC(),
	}
	if err := b.store.Put(spec.CacheRoot, domain.StageImages, key, rec); err != nil {
		return domain.LocalImage{}, err
	}

	return img, nil
}

// cachedImage returns a cached record only after the local image store
// confirms the recorded digest still exists. Any verification failure is a
// miss, never a hard error.
func (b *Builder) cachedImage(ctx context.Context, cacheRoot, key string) (domain.LocalImage, bool) {
	var rec domain.ImageRecord
	found, err := b.store.Get(cacheRoot, domain.StageImages, key, &rec)
	if err != nil {
		b.warn("discarding unreadable image cache record: " + err.Error())
		return domain.LocalImage{}, false
	}
	if !found {
		return domain.LocalImage{}, false
	}

	img, err := domain.NewLocalImage(domain.TreeHash(rec.SourceHash), rec.Name, rec.Digest)
	if err != nil {
		return domain.LocalImage{}, false
	}

	live, err := b.localDigest(ctx, rec.Name)
	if err != nil || live != rec.Digest {
		b.info("cached image failed verification, rebuilding")
		return domain.LocalImage{}, false
	}

	return img, true
}

func (b *Builder) info(msg string) {
	if b.logger != nil {
		b.logger.Info(msg)
	}
}

func (b *Builder) warn(msg string) {
	if b.logger != nil {
		b.logger.Warn(msg)
	}
}

func (b *Builder) runBuild(ctx context.Context, spec Spec, tag string) error {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	args := []string{
		"build",
		"--file", spec.Dockerfile,
		"--tag", tag,
		"--build-arg", "SOURCE_DATE_EPOCH=" + sourceDateEpoch,
	}
	for _, k := range sortedKeys(spec.BuildArgs) {
		args = append(args, "--build-arg", k+"="+spec.BuildArgs[k])
	}
	if spec.Target != "" {
		args = append(args, "--target", spec.Target)
	}
	args = append(args, spec.ContextDir)

	_, err := b.runner.Run(ctx, ports.Command{
		Name: b.tool,
		Args: args,
		Env:  []string{"SOURCE_DATE_EPOCH=" + sourceDateEpoch},
	})
	if err != nil {
		return zerr.With(
			zerr.Wrap(err, domain.ErrBuildFailed.Error()),
			"source_hash", spec.SourceHash.String(),
		)
	}
	return nil
}

// localDigest queries the local image store for the content digest of a
// named image.
func (b *Builder) localDigest(ctx context.Context, name string) (string, error) {
	res, err := b.runner.Run(ctx, ports.Command{
		Name: b.tool,
		Args: []string{"image", "inspect", "--format", "{{.Id}}", name},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// deriveTag builds the deterministic image tag for a source hash.
func deriveTag(namespace string, hash domain.TreeHash) string {
	if namespace == "" {
		namespace = domain.DefaultImageNamespace
	}
	return namespace + ":" + hash.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
