package ports

import "go.trai.ch/compplan/internal/core/domain"

// Hasher defines the interface for fingerprinting plans.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// Fingerprint computes a stable digest of the entry map and cache groups of a plan.
	Fingerprint(plan *domain.Plan) (string, error)
}
