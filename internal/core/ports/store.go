package ports

import "go.trai.ch/modrules/internal/core/domain"

// DescriptorStore defines the interface for persisting descriptor records.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type DescriptorStore interface {
	// Get retrieves the record stored under key.
	// Returns nil, nil if not found.
	Get(key string) (*domain.DescriptorRecord, error)

	// Put stores the record.
	Put(record domain.DescriptorRecord) error
}
