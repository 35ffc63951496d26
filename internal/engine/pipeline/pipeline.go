// Package pipeline chains the stages into the single deploy-from-source
// operation: hash the tree, build, publish, deploy. Each stage consumes the
// previous stage's output, so the deployed image is provably the one built
// from the hashed tree.
package pipeline

import (
	"context"
	"path/filepath"
	"runtime"

	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/shipper/internal/engine/build"
	"go.trai.ch/shipper/internal/engine/deploy"
	"go.trai.ch/shipper/internal/engine/publish"
	"golang.org/x/sync/errgroup"
)

// ImageBuilder produces a locally present image for a source hash.
type ImageBuilder interface {
	Build(ctx context.Context, spec build.Spec) (domain.LocalImage, error)
}

// ImagePublisher makes a local image fetchable from the registry.
type ImagePublisher interface {
	Publish(ctx context.Context, spec publish.Spec) (domain.RegistryImage, error)
}

// AppDeployer places a registry image onto the platform.
type AppDeployer interface {
	Deploy(ctx context.Context, spec deploy.Spec) (domain.Deployment, error)
}

// Options tune one pipeline run.
type Options struct {
	// IncludeUncommitted hashes the working tree instead of HEAD.
	IncludeUncommitted bool
	// NoCache forces every stage to do the work even when a verified
	// record exists.
	NoCache bool
}

// Pipeline wires the stages together. Stage errors propagate unchanged so
// callers can tell which stage failed from the error itself.
type Pipeline struct {
	hasher    ports.TreeHasher
	builder   ImageBuilder
	publisher ImagePublisher
	deployer  AppDeployer
}

// New creates a Pipeline.
func New(hasher ports.TreeHasher, builder ImageBuilder, publisher ImagePublisher, deployer AppDeployer) *Pipeline {
	return &Pipeline{
		hasher:    hasher,
		builder:   builder,
		publisher: publisher,
		deployer:  deployer,
	}
}

// cacheRoot returns the stage cache root for a project.
func cacheRoot(project *domain.Project) string {
	return filepath.Join(project.Root, domain.DefaultCachePath())
}

// Hash returns the content hash of the project's source tree.
func (p *Pipeline) Hash(ctx context.Context, project *domain.Project, includeUncommitted bool) (domain.TreeHash, error) {
	return p.hasher.Hash(ctx, project.Root, includeUncommitted)
}

// Build hashes the tree and builds the image for it.
func (p *Pipeline) Build(ctx context.Context, project *domain.Project, opts Options) (domain.LocalImage, error) {
	hash, err := p.Hash(ctx, project, opts.IncludeUncommitted)
	if err != nil {
		return domain.LocalImage{}, err
	}
	return p.builder.Build(ctx, build.Spec{
		SourceHash: hash,
		ContextDir: project.Build.Context,
		Dockerfile: project.Build.Dockerfile,
		BuildArgs:  project.Build.Args,
		Target:     project.Build.Target,
		Namespace:  project.Build.Namespace,
		CacheRoot:  cacheRoot(project),
		Timeout:    project.Timeouts.Build,
		NoCache:    opts.NoCache,
	})
}

// Publish builds the image for the current tree and pushes it for the given
// app's repository.
func (p *Pipeline) Publish(ctx context.Context, project *domain.Project, app domain.AppConfig, opts Options) (domain.RegistryImage, error) {
	local, err := p.Build(ctx, project, opts)
	if err != nil {
		return domain.RegistryImage{}, err
	}
	return p.publisher.Publish(ctx, publish.Spec{
		Image:      local,
		Host:       project.Registry.Host,
		Repository: project.RepositoryFor(app),
		CacheRoot:  cacheRoot(project),
		Timeout:    project.Timeouts.Publish,
		NoCache:    opts.NoCache,
	})
}

// Up runs the full pipeline for one app and returns the verified
// deployment.
func (p *Pipeline) Up(ctx context.Context, project *domain.Project, app domain.AppConfig, opts Options) (domain.Deployment, error) {
	remote, err := p.Publish(ctx, project, app, opts)
	if err != nil {
		return domain.Deployment{}, err
	}
	return p.deployer.Deploy(ctx, deploy.Spec{
		App:           app,
		Image:         remote,
		CacheRoot:     cacheRoot(project),
		DeployTimeout: project.Timeouts.Deploy,
		HealthTimeout: project.Timeouts.Health,
		NoCache:       opts.NoCache,
	})
}

// UpAll deploys the given apps from one shared image build. The build runs
// once up front; the per-app publish and deploy stages then run
// concurrently. A failed app cancels the remaining ones.
func (p *Pipeline) UpAll(ctx context.Context, project *domain.Project, apps []domain.AppConfig, opts Options) ([]domain.Deployment, error) {
	local, err := p.Build(ctx, project, opts)
	if err != nil {
		return nil, err
	}

	deployments := make([]domain.Deployment, len(apps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, app := range apps {
		g.Go(func() error {
			remote, err := p.publisher.Publish(gctx, publish.Spec{
				Image:      local,
				Host:       project.Registry.Host,
				Repository: project.RepositoryFor(app),
				CacheRoot:  cacheRoot(project),
				Timeout:    project.Timeouts.Publish,
				NoCache:    opts.NoCache,
			})
			if err != nil {
				return err
			}
			dep, err := p.deployer.Deploy(gctx, deploy.Spec{
				App:           app,
				Image:         remote,
				CacheRoot:     cacheRoot(project),
				DeployTimeout: project.Timeouts.Deploy,
				HealthTimeout: project.Timeouts.Health,
				NoCache:       opts.NoCache,
			})
			if err != nil {
				return err
			}
			deployments[i] = dep
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return deployments, nil
}
