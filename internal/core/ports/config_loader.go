package ports

import "go.trai.ch/modrules/internal/core/domain"

// ConfigLoader defines the interface for loading module rules.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the module rules at path. An empty path yields the built-in defaults.
	Load(path string) (*domain.ModuleConfig, error)
}
