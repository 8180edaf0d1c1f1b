package ports

import "go.trai.ch/modrules/internal/core/domain"

// Hasher defines the interface for fingerprinting descriptors.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// Fingerprint returns a stable hash of everything the descriptor hands to the orchestrator.
	Fingerprint(d domain.BuildDescriptor) string
}
