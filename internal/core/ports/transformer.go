package ports

import "go.trai.ch/compplan/internal/core/domain"

// OverrideFactory builds the override hook declared in the configuration.
//
//go:generate mockgen -source=transformer.go -destination=mocks/mock_transformer.go -package=mocks
type OverrideFactory interface {
	// CommandOverride returns a transform that pipes the plan through the given command.
	CommandOverride(argv []string, dir string) domain.TransformFn
}
