// Package publish implements the registry publish stage: pushing a locally
// built image and resolving its immutable registry digest.
package publish

import (
	"context"
	"regexp"
	"time"

	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/zerr"
)

// pushDigestPattern extracts the manifest digest from push output. The
// registry-reported digest is authoritative; the local image id is not the
// same value and must never be substituted for it.
var pushDigestPattern = regexp.MustCompile(`digest:\s+(sha256:[0-9a-f]{64})`)

// Spec describes one publish request.
type Spec struct {
	Image      domain.LocalImage
	Host       string
	Repository string
	CacheRoot  string
	Timeout    time.Duration
	NoCache    bool
}

// Publisher pushes images and records the digest-addressed registry
// reference. A cached record is only returned after the registry confirms
// the manifest still exists.
type Publisher struct {
	runner ports.Runner
	store  ports.CacheStore
	logger ports.Logger

	tool string
}

// NewPublisher creates a Publisher invoking the docker CLI.
func NewPublisher(runner ports.Runner, store ports.CacheStore, logger ports.Logger) *Publisher {
	return &Publisher{
		runner: runner,
		store:  store,
		logger: logger,
		tool:   "docker",
	}
}

// Publish ensures the image is fetchable from the registry and returns its
// digest-addressed reference.
func (p *Publisher) Publish(ctx context.Context, spec Spec) (domain.RegistryImage, error) {
	key := domain.RegistryCacheKey(spec.Image.Digest.String(), spec.Host, spec.Repository)

	if !spec.NoCache {
		if img, ok := p.cachedImage(ctx, spec.CacheRoot, key); ok {
			p.info("registry cache hit for " + spec.Image.SourceHash.Short())
			return img, nil
		}
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	remoteTag := spec.Host + "/" + spec.Repository + ":" + spec.Image.SourceHash.String()
	if _, err := p.runner.Run(ctx, ports.Command{
		Name: p.tool,
		Args: []string{"tag", spec.Image.Name, remoteTag},
	}); err != nil {
		return domain.RegistryImage{}, p.failure(err, spec)
	}

	res, err := p.runner.Run(ctx, ports.Command{
		Name: p.tool,
		Args: []string{"push", remoteTag},
	})
	if err != nil {
		return domain.RegistryImage{}, p.failure(err, spec)
	}

	dgst, err := parsePushDigest(res.Stdout + "\n" + res.Stderr)
	if err != nil {
		return domain.RegistryImage{}, p.failure(err, spec)
	}

	img, err := domain.NewRegistryImage(spec.Host, spec.Repository, dgst)
	if err != nil {
		return domain.RegistryImage{}, err
	}

	// Confirm the manifest is actually fetchable before recording success.
	if err := p.verifyManifest(ctx, img.PullRef()); err != nil {
		return domain.RegistryImage{}, p.failure(err, spec)
	}

	rec := domain.RegistryRecord{
		Digest:     img.Digest.String(),
		Host:       img.Host,
		Repository: img.Repository,
		PullRef:    img.PullRef(),
		RecordedAt: time.Now().UTC(),
	}
	if err := p.store.Put(spec.CacheRoot, domain.StageRegistry, key, rec); err != nil {
		return domain.RegistryImage{}, err
	}

	return img, nil
}

func (p *Publisher) cachedImage(ctx context.Context, cacheRoot, key string) (domain.RegistryImage, bool) {
	var rec domain.RegistryRecord
	found, err := p.store.Get(cacheRoot, domain.StageRegistry, key, &rec)
	if err != nil {
		p.warn("discarding unreadable registry cache record: " + err.Error())
		return domain.RegistryImage{}, false
	}
	if !found {
		return domain.RegistryImage{}, false
	}

	img, err := domain.NewRegistryImage(rec.Host, rec.Repository, rec.Digest)
	if err != nil {
		return domain.RegistryImage{}, false
	}

	if err := p.verifyManifest(ctx, img.PullRef()); err != nil {
		p.info("cached registry manifest failed verification, republishing")
		return domain.RegistryImage{}, false
	}

	return img, true
}

func (p *Publisher) verifyManifest(ctx context.Context, pullRef string) error {
	_, err := p.runner.Run(ctx, ports.Command{
		Name: p.tool,
		Args: []string{"manifest", "inspect", pullRef},
	})
	return err
}

func (p *Publisher) failure(err error, spec Spec) error {
	return zerr.With(
		zerr.With(
			zerr.Wrap(err, domain.ErrPublishFailed.Error()),
			"source_hash", spec.Image.SourceHash.String(),
		),
		"repository", spec.Host+"/"+spec.Repository,
	)
}

func parsePushDigest(output string) (string, error) {
	m := pushDigestPattern.FindStringSubmatch(output)
	if m == nil {
		return "", zerr.New("push output contained no manifest digest")
	}
	return m[1], nil
}

func (p *Publisher) info(msg string) {
	if p.logger != nil {
		p.logger.Info(msg)
	}
}

func (p *Publisher) warn(msg string) {
	if p.logger != nil {
		p.logger.Warn(msg)
	}
}
