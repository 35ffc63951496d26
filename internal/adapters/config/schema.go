package config

// File represents the structure of the shipper.yaml configuration file.
type File struct {
	Version  string             `yaml:"version"`
	Registry RegistryDTO        `yaml:"registry"`
	Build    BuildDTO           `yaml:"build"`
	Timeouts TimeoutsDTO        `yaml:"timeouts"`
	Apps     map[string]*AppDTO `yaml:"apps"`
}

// RegistryDTO names the target registry.
type RegistryDTO struct {
	Host       string `yaml:"host"`
	Repository string `yaml:"repository"`
}

// BuildDTO holds the shared image build settings.
type BuildDTO struct {
	Context    string            `yaml:"context"`
	Dockerfile string            `yaml:"dockerfile"`
	Target     string            `yaml:"target"`
	Args       map[string]string `yaml:"args"`
	Namespace  string            `yaml:"namespace"`
}

// TimeoutsDTO bounds per-stage external-tool calls, as Go durations
// ("5m", "90s"). Empty means unbounded.
type TimeoutsDTO struct {
	Build   string `yaml:"build"`
	Publish string `yaml:"publish"`
	Deploy  string `yaml:"deploy"`
	Health  string `yaml:"health"`
}

// AppDTO represents one deployable application.
type AppDTO struct {
	Region          string `yaml:"region"`
	HealthPath      string `yaml:"healthPath"`
	Domain          string `yaml:"domain"`
	Repository      string `yaml:"repository"`
	SkipIfUnchanged bool   `yaml:"skipIfUnchanged"`
}
