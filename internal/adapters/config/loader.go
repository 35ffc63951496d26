// Package config provides the configuration loader for shipper.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

var validAppNameRegex = regexp.MustCompile("^[a-z0-9][a-z0-9-]*$")

// Load searches upward from cwd for shipper.yaml and returns the validated
// project. The directory containing the file becomes the project root.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // path was located by upward search from the caller's cwd
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", configPath)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "file", configPath)
	}

	return l.buildProject(filepath.Dir(configPath), &file)
}

func (l *Loader) findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigNotFound.Error())
	}

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func (l *Loader) buildProject(root string, file *File) (*domain.Project, error) {
	if file.Registry.Host == "" {
		return nil, zerr.With(domain.ErrConfigParseFailed, "missing_field", "registry.host")
	}

	timeouts, err := parseTimeouts(file.Timeouts)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Root: root,
		Registry: domain.RegistryConfig{
			Host:       file.Registry.Host,
			Repository: file.Registry.Repository,
		},
		Build: domain.BuildConfig{
			Context:    defaultString(file.Build.Context, "."),
			Dockerfile: defaultString(file.Build.Dockerfile, "Dockerfile"),
			Target:     file.Build.Target,
			Args:       file.Build.Args,
			Namespace:  defaultString(file.Build.Namespace, domain.DefaultImageNamespace),
		},
		Timeouts: timeouts,
	}

	// Sort app names so declaration order is stable across loads.
	names := make([]string, 0, len(file.Apps))
	for name := range file.Apps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dto := file.Apps[name]
		if dto == nil {
			// An app declared with no body gets all defaults.
			dto = &AppDTO{}
		}
		if !validAppNameRegex.MatchString(name) {
			return nil, zerr.With(domain.ErrInvalidAppName, "app", name)
		}

		app := domain.AppConfig{
			Name:            name,
			Region:          dto.Region,
			HealthPath:      defaultString(dto.HealthPath, domain.DefaultHealthPath),
			Domain:          defaultString(dto.Domain, domain.DefaultAppDomain),
			Repository:      dto.Repository,
			SkipIfUnchanged: dto.SkipIfUnchanged,
		}
		if project.RepositoryFor(app) == "" {
			err := zerr.With(domain.ErrConfigParseFailed, "app", name)
			return nil, zerr.With(err, "missing_field", "repository")
		}
		project.Apps = append(project.Apps, app)
	}

	return project, nil
}

func parseTimeouts(dto TimeoutsDTO) (domain.Timeouts, error) {
	parse := func(field, value string) (time.Duration, error) {
		if value == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			parseErr := zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
			return 0, zerr.With(parseErr, "field", "timeouts."+field)
		}
		return d, nil
	}

	var t domain.Timeouts
	var err error
	if t.Build, err = parse("build", dto.Build); err != nil {
		return t, err
	}
	if t.Publish, err = parse("publish", dto.Publish); err != nil {
		return t, err
	}
	if t.Deploy, err = parse("deploy", dto.Deploy); err != nil {
		return t, err
	}
	if t.Health, err = parse("health", dto.Health); err != nil {
		return t, err
	}
	if t.Health == 0 {
		t.Health = domain.DefaultHealthTimeout
	}
	return t, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
