package pipeline_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports/mocks"
	"go.trai.ch/shipper/internal/engine/build"
	"go.trai.ch/shipper/internal/engine/deploy"
	"go.trai.ch/shipper/internal/engine/pipeline"
	"go.trai.ch/shipper/internal/engine/publish"
	"go.uber.org/mock/gomock"
)

var (
	testHash       = domain.TreeHash(strings.Repeat("ef56", 10))
	localDigest    = "sha256:" + strings.Repeat("4", 64)
	registryDigest = "sha256:" + strings.Repeat("5", 64)
)

type stubBuilder struct {
	mu    sync.Mutex
	calls int
	spec  build.Spec
	img   domain.LocalImage
	err   error
}

func (s *stubBuilder) Build(_ context.Context, spec build.Spec) (domain.LocalImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.spec = spec
	return s.img, s.err
}

type stubPublisher struct {
	mu    sync.Mutex
	calls int
	spec  publish.Spec
	img   domain.RegistryImage
	err   error
}

func (s *stubPublisher) Publish(_ context.Context, spec publish.Spec) (domain.RegistryImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.spec = spec
	return s.img, s.err
}

type stubDeployer struct {
	mu    sync.Mutex
	calls int
	apps  []string
	spec  deploy.Spec
	dep   domain.Deployment
	err   error
}

func (s *stubDeployer) Deploy(_ context.Context, spec deploy.Spec) (domain.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.apps = append(s.apps, spec.App.Name)
	s.spec = spec
	if s.err != nil {
		return domain.Deployment{}, s.err
	}
	dep := s.dep
	if dep.App == "" {
		dep = domain.Deployment{App: spec.App.Name, URL: "https://" + spec.App.Name + ".fly.dev", Image: spec.Image}
	}
	return dep, nil
}

func testProject(root string) *domain.Project {
	return &domain.Project{
		Root:     root,
		Registry: domain.RegistryConfig{Host: "registry.fly.io", Repository: "demo-app"},
		Build:    domain.BuildConfig{Context: ".", Dockerfile: "Dockerfile", Namespace: "shipper"},
		Apps:     []domain.AppConfig{{Name: "demo-app", HealthPath: "/info", Domain: "fly.dev"}},
	}
}

func fixtures(t *testing.T) (domain.LocalImage, domain.RegistryImage) {
	t.Helper()
	local, err := domain.NewLocalImage(testHash, "shipper:"+testHash.String(), localDigest)
	require.NoError(t, err)
	remote, err := domain.NewRegistryImage("registry.fly.io", "demo-app", registryDigest)
	require.NoError(t, err)
	return local, remote
}

func TestPipeline_Up_ThreadsStageOutputs(t *testing.T) {
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockTreeHasher(ctrl)
	local, remote := fixtures(t)

	project := testProject("/work/demo")
	hasher.EXPECT().Hash(gomock.Any(), "/work/demo", true).Return(testHash, nil)

	builder := &stubBuilder{img: local}
	publisher := &stubPublisher{img: remote}
	deployer := &stubDeployer{dep: domain.Deployment{
		App: "demo-app", URL: "https://demo-app.fly.dev", Image: remote,
	}}

	p := pipeline.New(hasher, builder, publisher, deployer)
	dep, err := p.Up(context.Background(), project, project.Apps[0], pipeline.Options{
		IncludeUncommitted: true,
		NoCache:            true,
	})
	require.NoError(t, err)

	// Each stage consumed exactly the previous stage's output.
	assert.Equal(t, testHash, builder.spec.SourceHash)
	assert.Equal(t, local, publisher.spec.Image)
	assert.Equal(t, remote, deployer.spec.Image)
	assert.Equal(t, remote.Digest, dep.Image.Digest)

	// Options reach every stage.
	assert.True(t, builder.spec.NoCache)
	assert.True(t, publisher.spec.NoCache)
	assert.True(t, deployer.spec.NoCache)

	// All stages share one cache root under the project.
	assert.Equal(t, builder.spec.CacheRoot, publisher.spec.CacheRoot)
	assert.Equal(t, publisher.spec.CacheRoot, deployer.spec.CacheRoot)
	assert.Contains(t, builder.spec.CacheRoot, ".shipper")
}

func TestPipeline_Up_AppRepositoryOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockTreeHasher(ctrl)
	local, remote := fixtures(t)

	project := testProject("/work/demo")
	project.Apps[0].Repository = "demo-app-staging"
	hasher.EXPECT().Hash(gomock.Any(), gomock.Any(), gomock.Any()).Return(testHash, nil)

	publisher := &stubPublisher{img: remote}
	p := pipeline.New(hasher, &stubBuilder{img: local}, publisher, &stubDeployer{})

	_, err := p.Up(context.Background(), project, project.Apps[0], pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, "demo-app-staging", publisher.spec.Repository)
}

func TestPipeline_StageErrorsPropagateUnchanged(t *testing.T) {
	local, remote := fixtures(t)
	project := testProject("/work/demo")
	app := project.Apps[0]

	t.Run("hash failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hasher := mocks.NewMockTreeHasher(ctrl)
		hashErr := errors.New("not a repository")
		hasher.EXPECT().Hash(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.TreeHash(""), hashErr)

		p := pipeline.New(hasher, &stubBuilder{}, &stubPublisher{}, &stubDeployer{})
		_, err := p.Up(context.Background(), project, app, pipeline.Options{})
		require.ErrorIs(t, err, hashErr)
	})

	t.Run("build failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hasher := mocks.NewMockTreeHasher(ctrl)
		hasher.EXPECT().Hash(gomock.Any(), gomock.Any(), gomock.Any()).Return(testHash, nil)
		buildErr := errors.New("build failed")

		p := pipeline.New(hasher, &stubBuilder{err: buildErr}, &stubPublisher{}, &stubDeployer{})
		_, err := p.Up(context.Background(), project, app, pipeline.Options{})
		require.ErrorIs(t, err, buildErr)
	})

	t.Run("publish failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hasher := mocks.NewMockTreeHasher(ctrl)
		hasher.EXPECT().Hash(gomock.Any(), gomock.Any(), gomock.Any()).Return(testHash, nil)
		publishErr := errors.New("publish failed")

		p := pipeline.New(hasher, &stubBuilder{img: local}, &stubPublisher{err: publishErr}, &stubDeployer{})
		_, err := p.Up(context.Background(), project, app, pipeline.Options{})
		require.ErrorIs(t, err, publishErr)
	})

	t.Run("deploy failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hasher := mocks.NewMockTreeHasher(ctrl)
		hasher.EXPECT().Hash(gomock.Any(), gomock.Any(), gomock.Any()).Return(testHash, nil)
		deployErr := errors.New("deploy failed")

		p := pipeline.New(hasher, &stubBuilder{img: local}, &stubPublisher{img: remote}, &stubDeployer{err: deployErr})
		_, err := p.Up(context.Background(), project, app, pipeline.Options{})
		require.ErrorIs(t, err, deployErr)
	})
}

func TestPipeline_UpAll_BuildsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockTreeHasher(ctrl)
	local, remote := fixtures(t)

	project := testProject("/work/demo")
	project.Apps = []domain.AppConfig{
		{Name: "demo-app", HealthPath: "/info", Domain: "fly.dev"},
		{Name: "demo-api", HealthPath: "/info", Domain: "fly.dev"},
		{Name: "demo-worker", HealthPath: "/info", Domain: "fly.dev"},
	}
	hasher.EXPECT().Hash(gomock.Any(), gomock.Any(), gomock.Any()).Return(testHash, nil).Times(1)

	builder := &stubBuilder{img: local}
	publisher := &stubPublisher{img: remote}
	deployer := &stubDeployer{}

	p := pipeline.New(hasher, builder, publisher, deployer)
	deployments, err := p.UpAll(context.Background(), project, project.Apps, pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, builder.calls)
	assert.Equal(t, 3, publisher.calls)
	assert.Equal(t, 3, deployer.calls)

	require.Len(t, deployments, 3)
	names := make([]string, len(deployments))
	for i, d := range deployments {
		names[i] = d.App
	}
	sort.Strings(names)
	assert.Equal(t, []string{"demo-api", "demo-app", "demo-worker"}, names)
}

func TestPipeline_UpAll_BuildFailureStopsEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockTreeHasher(ctrl)
	hasher.EXPECT().Hash(gomock.Any(), gomock.Any(), gomock.Any()).Return(testHash, nil)

	project := testProject("/work/demo")
	buildErr := errors.New("build failed")
	publisher := &stubPublisher{}
	deployer := &stubDeployer{}

	p := pipeline.New(hasher, &stubBuilder{err: buildErr}, publisher, deployer)
	_, err := p.UpAll(context.Background(), project, project.Apps, pipeline.Options{})
	require.ErrorIs(t, err, buildErr)
	assert.Zero(t, publisher.calls)
	assert.Zero(t, deployer.calls)
}

func TestPipeline_Build_PassesBuildConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockTreeHasher(ctrl)
	local, _ := fixtures(t)

	project := testProject("/work/demo")
	project.Build.Target = "release"
	project.Build.Args = map[string]string{"VARIANT": "slim"}
	project.Timeouts.Build = 30 * time.Minute

	hasher.EXPECT().Hash(gomock.Any(), gomock.Any(), false).Return(testHash, nil)

	builder := &stubBuilder{img: local}
	p := pipeline.New(hasher, builder, &stubPublisher{}, &stubDeployer{})

	img, err := p.Build(context.Background(), project, pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, local, img)
	assert.Equal(t, "release", builder.spec.Target)
	assert.Equal(t, "slim", builder.spec.BuildArgs["VARIANT"])
	assert.Equal(t, project.Timeouts.Build, builder.spec.Timeout)
}
