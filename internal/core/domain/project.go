package domain

import "time"

// RegistryConfig names the registry a project publishes to.
type RegistryConfig struct {
	Host       string
	Repository string
}

// BuildConfig holds the build context shared by all apps in a project.
type BuildConfig struct {
	Context    string
	Dockerfile string
	Target     string
	Args       map[string]string
	Namespace  string
}

// Timeouts bounds each stage's external-tool calls. Zero means no bound.
type Timeouts struct {
	Build   time.Duration
	Publish time.Duration
	Deploy  time.Duration
	Health  time.Duration
}

// AppConfig describes one deployable application.
type AppConfig struct {
	Name       string
	Region     string
	HealthPath string
	Domain     string
	// Repository overrides the project registry repository for this app.
	Repository string
	// SkipIfUnchanged opts into deployment caching: when the image digest
	// and app config are both unchanged and the running app still answers
	// its health endpoint, the deploy stage returns the cached deployment.
	// The default is always-redeploy, so platform configuration is
	// re-asserted on every call.
	SkipIfUnchanged bool
}

// Project is the validated configuration for one source tree.
type Project struct {
	Root     string
	Registry RegistryConfig
	Build    BuildConfig
	Timeouts Timeouts
	Apps     []AppConfig
}

// App looks up an app by name.
func (p *Project) App(name string) (AppConfig, bool) {
	for _, a := range p.Apps {
		if a.Name == name {
			return a, true
		}
	}
	return AppConfig{}, false
}

// AppNames returns the configured app names in declaration order.
func (p *Project) AppNames() []string {
	names := make([]string, len(p.Apps))
	for i, a := range p.Apps {
		names[i] = a.Name
	}
	return names
}

// RepositoryFor returns the registry repository for an app, falling back to
// the project-wide repository.
func (p *Project) RepositoryFor(app AppConfig) string {
	if app.Repository != "" {
		return app.Repository
	}
	return p.Registry.Repository
}

const (
	// DefaultHealthPath is the health endpoint probed after every deploy.
	DefaultHealthPath = "/info"

	// DefaultAppDomain is the platform domain apps are reachable under.
	DefaultAppDomain = "fly.dev"

	// DefaultImageNamespace prefixes the deterministic local image tag.
	DefaultImageNamespace = "shipper"

	// DefaultHealthTimeout bounds the post-deploy liveness wait.
	DefaultHealthTimeout = 2 * time.Minute
)
