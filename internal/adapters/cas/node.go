package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/modrules/internal/core/ports"
)

// NodeID is the unique identifier for the descriptor store Graft node.
const NodeID graft.ID = "adapter.descriptor_store"

func init() {
	graft.Register(graft.Node[ports.DescriptorStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.DescriptorStore, error) {
			store, err := NewStore(DefaultPath)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
