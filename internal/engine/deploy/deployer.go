// Package deploy implements the deployment stage: handing a digest-addressed
// image to the platform CLI and gating success on a live health check.
package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/zerr"
)

// healthInterval is the poll cadence while waiting for the deployed app to
// come up.
const healthInterval = 2 * time.Second

// Spec describes one deployment request.
type Spec struct {
	App           domain.AppConfig
	Image         domain.RegistryImage
	CacheRoot     string
	DeployTimeout time.Duration
	HealthTimeout time.Duration
	NoCache       bool
}

// Deployer drives the platform CLI. The default is always-redeploy so
// platform-side configuration is re-asserted on every call; apps opt into
// skip-if-unchanged explicitly, and even then the cached deployment is only
// trusted after the running app answers its health endpoint.
type Deployer struct {
	runner ports.Runner
	store  ports.CacheStore
	probe  ports.HealthProbe
	logger ports.Logger

	tool string
}

// NewDeployer creates a Deployer invoking flyctl.
func NewDeployer(runner ports.Runner, store ports.CacheStore, probe ports.HealthProbe, logger ports.Logger) *Deployer {
	return &Deployer{
		runner: runner,
		store:  store,
		probe:  probe,
		logger: logger,
		tool:   "flyctl",
	}
}

// Deploy places the image onto the platform and returns the verified
// deployment. A deployment only counts once the health endpoint answers.
func (d *Deployer) Deploy(ctx context.Context, spec Spec) (domain.Deployment, error) {
	key := domain.DeploymentCacheKey(spec.App.Name, spec.Image.Digest.String())
	fingerprint := configFingerprint(spec.App)
	url := appURL(spec.App)

	if spec.App.SkipIfUnchanged && !spec.NoCache {
		if dep, ok := d.cachedDeployment(ctx, spec, key, fingerprint); ok {
			d.info("deployment cache hit for app " + spec.App.Name)
			return dep, nil
		}
	}

	if err := d.runDeploy(ctx, spec); err != nil {
		return domain.Deployment{}, err
	}

	if err := d.awaitHealthy(ctx, spec, url); err != nil {
		return domain.Deployment{}, err
	}

	rec := domain.DeploymentRecord{
		App:        spec.App.Name,
		Digest:     spec.Image.Digest.String(),
		ConfigHash: fingerprint,
		URL:        url,
		RecordedAt: time.Now().UTC(),
	}
	if err := d.store.Put(spec.CacheRoot, domain.StageDeployments, key, rec); err != nil {
		return domain.Deployment{}, err
	}

	return domain.Deployment{App: spec.App.Name, URL: url, Image: spec.Image}, nil
}

// cachedDeployment trusts a record only when the app config fingerprint
// matches and the running app still answers its health endpoint.
func (d *Deployer) cachedDeployment(ctx context.Context, spec Spec, key, fingerprint string) (domain.Deployment, bool) {
	var rec domain.DeploymentRecord
	found, err := d.store.Get(spec.CacheRoot, domain.StageDeployments, key, &rec)
	if err != nil {
		d.warn("discarding unreadable deployment cache record: " + err.Error())
		return domain.Deployment{}, false
	}
	if !found {
		return domain.Deployment{}, false
	}
	if rec.ConfigHash != fingerprint {
		d.info("app config changed for " + spec.App.Name + ", redeploying")
		return domain.Deployment{}, false
	}
	if err := d.probe.Check(ctx, rec.URL+spec.App.HealthPath); err != nil {
		d.info("running app failed verification, redeploying")
		return domain.Deployment{}, false
	}
	return domain.Deployment{App: spec.App.Name, URL: rec.URL, Image: spec.Image}, true
}

func (d *Deployer) runDeploy(ctx context.Context, spec Spec) error {
	if spec.DeployTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.DeployTimeout)
		defer cancel()
	}

	args := []string{
		"deploy",
		"--app", spec.App.Name,
		"--image", spec.Image.PullRef(),
		"--yes",
	}
	if spec.App.Region != "" {
		args = append(args, "--region", spec.App.Region)
	}

	if _, err := d.runner.Run(ctx, ports.Command{Name: d.tool, Args: args}); err != nil {
		return zerr.With(
			zerr.Wrap(err, domain.ErrDeployFailed.Error()),
			"app", spec.App.Name,
		)
	}
	return nil
}

func (d *Deployer) awaitHealthy(ctx context.Context, spec Spec, url string) error {
	timeout := spec.HealthTimeout
	if timeout <= 0 {
		timeout = domain.DefaultHealthTimeout
	}
	healthCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := d.probe.Wait(healthCtx, url+spec.App.HealthPath, healthInterval); err != nil {
		return zerr.With(
			zerr.Wrap(err, domain.ErrDeployFailed.Error()),
			"app", spec.App.Name,
		)
	}
	return nil
}

// configFingerprint hashes the deployment-relevant app settings so a
// config-only change invalidates the cached deployment even when the image
// digest is unchanged.
func configFingerprint(app domain.AppConfig) string {
	h := xxhash.New()
	_, _ = h.WriteString(app.Name + "\x00")
	_, _ = h.WriteString(app.Region + "\x00")
	_, _ = h.WriteString(app.HealthPath + "\x00")
	_, _ = h.WriteString(app.Domain + "\x00")
	_, _ = h.WriteString(app.Repository + "\x00")
	return fmt.Sprintf("%016x", h.Sum64())
}

func appURL(app domain.AppConfig) string {
	domainName := app.Domain
	if domainName == "" {
		domainName = domain.DefaultAppDomain
	}
	return "https://" + app.Name + "." + domainName
}

func (d *Deployer) info(msg string) {
	if d.logger != nil {
		d.logger.Info(msg)
	}
}

func (d *Deployer) warn(msg string) {
	if d.logger != nil {
		d.logger.Warn(msg)
	}
}
