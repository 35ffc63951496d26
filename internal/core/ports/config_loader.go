package ports

import "go.trai.ch/shipper/internal/core/domain"

// ConfigLoader locates and parses the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load searches upward from cwd for shipper.yaml and returns the
	// validated project.
	Load(cwd string) (*domain.Project, error)
}
