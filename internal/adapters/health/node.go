package health

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shipper/internal/core/ports"
)

// NodeID is the unique identifier for the health probe Graft node.
const NodeID graft.ID = "adapter.health_probe"

func init() {
	graft.Register(graft.Node[ports.HealthProbe]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.HealthProbe, error) {
			return NewProbe(), nil
		},
	})
}
