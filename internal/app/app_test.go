package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shipper/internal/app"
	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports/mocks"
	"go.trai.ch/shipper/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

var (
	testHash       = domain.TreeHash(strings.Repeat("ab12", 10))
	localDigest    = "sha256:" + strings.Repeat("6", 64)
	registryDigest = "sha256:" + strings.Repeat("7", 64)
)

type fakePipeline struct {
	hash        domain.TreeHash
	hashErr     error
	img         domain.LocalImage
	buildErr    error
	remote      domain.RegistryImage
	publishErr  error
	deployments []domain.Deployment
	upErr       error

	gotApps []domain.AppConfig
	gotOpts pipeline.Options
	upCalls int
}

func (f *fakePipeline) Hash(_ context.Context, _ *domain.Project, _ bool) (domain.TreeHash, error) {
	return f.hash, f.hashErr
}

func (f *fakePipeline) Build(_ context.Context, _ *domain.Project, opts pipeline.Options) (domain.LocalImage, error) {
	f.gotOpts = opts
	return f.img, f.buildErr
}

func (f *fakePipeline) Publish(_ context.Context, _ *domain.Project, a domain.AppConfig, opts pipeline.Options) (domain.RegistryImage, error) {
	f.gotApps = append(f.gotApps, a)
	f.gotOpts = opts
	return f.remote, f.publishErr
}

func (f *fakePipeline) UpAll(_ context.Context, _ *domain.Project, apps []domain.AppConfig, opts pipeline.Options) ([]domain.Deployment, error) {
	f.upCalls++
	f.gotApps = apps
	f.gotOpts = opts
	return f.deployments, f.upErr
}

type fakeChecker struct {
	err   error
	calls int
}

func (f *fakeChecker) ValidateDeterminism(_ context.Context) error {
	f.calls++
	return f.err
}

func testProject(t *testing.T) *domain.Project {
	t.Helper()
	return &domain.Project{
		Root:     t.TempDir(),
		Registry: domain.RegistryConfig{Host: "registry.fly.io", Repository: "demo-app"},
		Build:    domain.BuildConfig{Context: ".", Dockerfile: "Dockerfile", Namespace: "shipper"},
		Apps: []domain.AppConfig{
			{Name: "demo-app", HealthPath: "/info", Domain: "fly.dev"},
			{Name: "demo-api", HealthPath: "/info", Domain: "fly.dev"},
		},
	}
}

func newApp(t *testing.T, project *domain.Project, pipe *fakePipeline, checker *fakeChecker) (*app.App, *bytes.Buffer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(project, nil).AnyTimes()
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	var out bytes.Buffer
	return app.New(loader, pipe, checker, logger).WithOutput(&out), &out
}

func deployment(t *testing.T, name string) domain.Deployment {
	t.Helper()
	img, err := domain.NewRegistryImage("registry.fly.io", name, registryDigest)
	require.NoError(t, err)
	return domain.Deployment{App: name, URL: "https://" + name + ".fly.dev", Image: img}
}

func TestApp_Up(t *testing.T) {
	t.Run("deploys all configured apps by default", func(t *testing.T) {
		project := testProject(t)
		pipe := &fakePipeline{deployments: []domain.Deployment{
			deployment(t, "demo-app"),
			deployment(t, "demo-api"),
		}}
		checker := &fakeChecker{}
		a, out := newApp(t, project, pipe, checker)

		err := a.Up(context.Background(), nil, app.Options{})
		require.NoError(t, err)

		require.Len(t, pipe.gotApps, 2)
		assert.Equal(t, 1, checker.calls)
		assert.Contains(t, out.String(), "https://demo-app.fly.dev")
		assert.Contains(t, out.String(), "https://demo-api.fly.dev")
	})

	t.Run("deploys only the named app", func(t *testing.T) {
		project := testProject(t)
		pipe := &fakePipeline{deployments: []domain.Deployment{deployment(t, "demo-api")}}
		a, _ := newApp(t, project, pipe, &fakeChecker{})

		err := a.Up(context.Background(), []string{"demo-api"}, app.Options{})
		require.NoError(t, err)
		require.Len(t, pipe.gotApps, 1)
		assert.Equal(t, "demo-api", pipe.gotApps[0].Name)
	})

	t.Run("rejects unknown app names before any work", func(t *testing.T) {
		project := testProject(t)
		pipe := &fakePipeline{}
		checker := &fakeChecker{}
		a, _ := newApp(t, project, pipe, checker)

		err := a.Up(context.Background(), []string{"nope"}, app.Options{})
		require.ErrorIs(t, err, domain.ErrAppNotFound)
		assert.Zero(t, pipe.upCalls)
		assert.Zero(t, checker.calls)
	})

	t.Run("refuses a non-deterministic builder", func(t *testing.T) {
		project := testProject(t)
		pipe := &fakePipeline{}
		checker := &fakeChecker{err: domain.ErrBuilderNotDeterministic}
		a, _ := newApp(t, project, pipe, checker)

		err := a.Up(context.Background(), nil, app.Options{})
		require.ErrorIs(t, err, domain.ErrBuilderNotDeterministic)
		assert.Zero(t, pipe.upCalls)
	})

	t.Run("wraps pipeline failures", func(t *testing.T) {
		project := testProject(t)
		pipe := &fakePipeline{upErr: errors.New("deploy failed")}
		a, _ := newApp(t, project, pipe, &fakeChecker{})

		err := a.Up(context.Background(), nil, app.Options{})
		require.ErrorIs(t, err, domain.ErrPipelineFailed)
	})

	t.Run("fails when no apps are configured", func(t *testing.T) {
		project := testProject(t)
		project.Apps = nil
		a, _ := newApp(t, project, &fakePipeline{}, &fakeChecker{})

		err := a.Up(context.Background(), nil, app.Options{})
		require.ErrorIs(t, err, domain.ErrNoAppsSpecified)
	})

	t.Run("forwards run options", func(t *testing.T) {
		project := testProject(t)
		pipe := &fakePipeline{deployments: []domain.Deployment{deployment(t, "demo-app")}}
		a, _ := newApp(t, project, pipe, &fakeChecker{})

		err := a.Up(context.Background(), nil, app.Options{IncludeUncommitted: true, NoCache: true})
		require.NoError(t, err)
		assert.True(t, pipe.gotOpts.IncludeUncommitted)
		assert.True(t, pipe.gotOpts.NoCache)
	})
}

func TestApp_Hash(t *testing.T) {
	project := testProject(t)
	pipe := &fakePipeline{hash: testHash}
	a, out := newApp(t, project, pipe, &fakeChecker{})

	err := a.Hash(context.Background(), app.Options{IncludeUncommitted: true})
	require.NoError(t, err)
	assert.Equal(t, testHash.String()+"\n", out.String())
}

func TestApp_Build(t *testing.T) {
	project := testProject(t)
	img, err := domain.NewLocalImage(testHash, "shipper:"+testHash.String(), localDigest)
	require.NoError(t, err)
	pipe := &fakePipeline{img: img}
	checker := &fakeChecker{}
	a, out := newApp(t, project, pipe, checker)

	require.NoError(t, a.Build(context.Background(), app.Options{}))
	assert.Equal(t, 1, checker.calls)
	assert.Contains(t, out.String(), "shipper:"+testHash.String())
	assert.Contains(t, out.String(), localDigest)
}

func TestApp_Publish(t *testing.T) {
	project := testProject(t)
	remote, err := domain.NewRegistryImage("registry.fly.io", "demo-app", registryDigest)
	require.NoError(t, err)
	pipe := &fakePipeline{remote: remote}
	a, out := newApp(t, project, pipe, &fakeChecker{})

	require.NoError(t, a.Publish(context.Background(), []string{"demo-app"}, app.Options{}))
	assert.Contains(t, out.String(), remote.PullRef())
}

func TestApp_Clean(t *testing.T) {
	project := testProject(t)
	cacheRoot := filepath.Join(project.Root, domain.DefaultCachePath())
	for _, stage := range domain.Stages() {
		require.NoError(t, os.MkdirAll(domain.StagePath(cacheRoot, stage), domain.DirPerm))
	}

	a, _ := newApp(t, project, &fakePipeline{}, &fakeChecker{})
	require.NoError(t, a.Clean(context.Background(), app.CleanOptions{Images: true, Deployments: true}))

	_, err := os.Stat(domain.StagePath(cacheRoot, domain.StageImages))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(domain.StagePath(cacheRoot, domain.StageRegistry))
	assert.NoError(t, err, "unselected stage must survive")
	_, err = os.Stat(domain.StagePath(cacheRoot, domain.StageDeployments))
	assert.True(t, os.IsNotExist(err))
}
