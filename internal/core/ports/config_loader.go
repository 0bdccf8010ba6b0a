// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/compplan/internal/core/domain"

// ConfigLoader defines the interface for loading the planner configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path and returns the planner settings.
	// Relative paths inside the file are resolved against the file's directory.
	Load(path string) (*domain.Settings, error)

	// Discover walks up from cwd to find the configuration file.
	Discover(cwd string) (string, error)
}
