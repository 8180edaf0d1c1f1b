package ports

import (
	"io"

	"go.trai.ch/modrules/internal/core/domain"
)

// Renderer writes build descriptors in a format an orchestrator consumes.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Render writes descriptors to w in the named format.
	Render(w io.Writer, format string, descriptors []domain.BuildDescriptor) error
}
