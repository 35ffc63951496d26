// Package app implements the application layer for shipper.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/shipper/internal/adapters/watcher"
	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/shipper/internal/engine/pipeline"
	"go.trai.ch/shipper/internal/ui/style"
	"go.trai.ch/zerr"
)

// Pipeline is the deploy-from-source engine the App drives.
type Pipeline interface {
	Hash(ctx context.Context, project *domain.Project, includeUncommitted bool) (domain.TreeHash, error)
	Build(ctx context.Context, project *domain.Project, opts pipeline.Options) (domain.LocalImage, error)
	Publish(ctx context.Context, project *domain.Project, app domain.AppConfig, opts pipeline.Options) (domain.RegistryImage, error)
	UpAll(ctx context.Context, project *domain.Project, apps []domain.AppConfig, opts pipeline.Options) ([]domain.Deployment, error)
}

// DeterminismChecker rejects builders that cannot produce reproducible
// images.
type DeterminismChecker interface {
	ValidateDeterminism(ctx context.Context) error
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	pipe         Pipeline
	checker      DeterminismChecker
	logger       ports.Logger
	out          io.Writer
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, pipe Pipeline, checker DeterminismChecker, log ports.Logger) *App {
	return &App{
		configLoader: loader,
		pipe:         pipe,
		checker:      checker,
		logger:       log,
		out:          os.Stdout,
	}
}

// WithOutput redirects result output. This is primarily used for testing.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// Options configuration shared by the pipeline commands.
type Options struct {
	IncludeUncommitted bool
	NoCache            bool
}

// Hash prints the content hash of the project's source tree.
func (a *App) Hash(ctx context.Context, opts Options) error {
	project, err := a.loadProject()
	if err != nil {
		return err
	}
	hash, err := a.pipe.Hash(ctx, project, opts.IncludeUncommitted)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.out, hash.String())
	return nil
}

// Build builds the image for the current source tree and prints its
// deterministic tag and digest.
func (a *App) Build(ctx context.Context, opts Options) error {
	project, err := a.loadProject()
	if err != nil {
		return err
	}
	if err := a.checker.ValidateDeterminism(ctx); err != nil {
		return err
	}
	img, err := a.pipe.Build(ctx, project, pipeline.Options(opts))
	if err != nil {
		return errors.Join(domain.ErrPipelineFailed, err)
	}
	_, _ = fmt.Fprintf(a.out, "%s %s %s\n",
		style.Success.Render(style.Check), img.Name, img.Digest.String())
	return nil
}

// Publish builds and pushes the image for the named apps (all configured
// apps when none are named) and prints the digest-addressed pull
// references.
func (a *App) Publish(ctx context.Context, appNames []string, opts Options) error {
	project, apps, err := a.resolveApps(appNames)
	if err != nil {
		return err
	}
	if err := a.checker.ValidateDeterminism(ctx); err != nil {
		return err
	}
	for _, app := range apps {
		img, err := a.pipe.Publish(ctx, project, app, pipeline.Options(opts))
		if err != nil {
			return errors.Join(domain.ErrPipelineFailed, err)
		}
		_, _ = fmt.Fprintf(a.out, "%s %s %s\n",
			style.Success.Render(style.Check), app.Name, img.PullRef())
	}
	return nil
}

// Up runs the full pipeline for the named apps (all configured apps when
// none are named) and prints the verified deployment URLs.
func (a *App) Up(ctx context.Context, appNames []string, opts Options) error {
	project, apps, err := a.resolveApps(appNames)
	if err != nil {
		return err
	}
	if err := a.checker.ValidateDeterminism(ctx); err != nil {
		return err
	}

	deployments, err := a.pipe.UpAll(ctx, project, apps, pipeline.Options(opts))
	if err != nil {
		return errors.Join(domain.ErrPipelineFailed, err)
	}
	for _, dep := range deployments {
		_, _ = fmt.Fprintf(a.out, "%s %s %s %s\n",
			style.Success.Render(style.Check), dep.App, style.Cached.Render(style.Arrow), dep.URL)
	}
	return nil
}

// Watch deploys once, then redeploys the named apps whenever the source
// tree changes. It returns when ctx is cancelled.
func (a *App) Watch(ctx context.Context, appNames []string, opts Options) error {
	project, _, err := a.resolveApps(appNames)
	if err != nil {
		return err
	}

	// Watching implies deploying what is on disk right now.
	opts.IncludeUncommitted = true

	w, err := watcher.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, project.Root); err != nil {
		return zerr.Wrap(err, "failed to watch project root")
	}

	runs := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case runs <- paths:
		default:
		}
	})

	a.deployAndReport(ctx, appNames, opts)
	a.logger.Info("watching " + project.Root + " for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-w.Paths():
			if !ok {
				return nil
			}
			debouncer.Add(path)
		case paths := <-runs:
			a.logger.Info(fmt.Sprintf("%d path(s) changed, redeploying", len(paths)))
			a.deployAndReport(ctx, appNames, opts)
		}
	}
}

// deployAndReport runs Up and reports failures without stopping the watch
// loop.
func (a *App) deployAndReport(ctx context.Context, appNames []string, opts Options) {
	if err := a.Up(ctx, appNames, opts); err != nil && ctx.Err() == nil {
		a.logger.Error(err)
	}
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Images      bool
	Registry    bool
	Deployments bool
}

// Clean removes cache records for the selected stages.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	project, err := a.loadProject()
	if err != nil {
		return err
	}
	root := filepath.Join(project.Root, domain.DefaultCachePath())

	var errs error
	remove := func(stage domain.CacheStage) {
		path := domain.StagePath(root, stage)
		a.logger.Info("removing " + string(stage) + " cache...")
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to remove "+string(stage)+" cache"))
			return
		}
		a.logger.Info("removed " + string(stage) + " cache")
	}

	if options.Images {
		remove(domain.StageImages)
	}
	if options.Registry {
		remove(domain.StageRegistry)
	}
	if options.Deployments {
		remove(domain.StageDeployments)
	}
	return errs
}

func (a *App) loadProject() (*domain.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine working directory")
	}
	project, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

// resolveApps maps names to configured apps. No names selects every app in
// declaration order.
func (a *App) resolveApps(appNames []string) (*domain.Project, []domain.AppConfig, error) {
	project, err := a.loadProject()
	if err != nil {
		return nil, nil, err
	}
	if len(project.Apps) == 0 {
		return nil, nil, domain.ErrNoAppsSpecified
	}
	if len(appNames) == 0 {
		return project, project.Apps, nil
	}

	apps := make([]domain.AppConfig, 0, len(appNames))
	for _, name := range appNames {
		app, ok := project.App(name)
		if !ok {
			return nil, nil, zerr.With(domain.ErrAppNotFound, "app", name)
		}
		apps = append(apps, app)
	}
	return project, apps, nil
}
