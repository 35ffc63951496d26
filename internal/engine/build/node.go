package build

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shipper/internal/adapters/cache"
	"go.trai.ch/shipper/internal/adapters/logger"
	"go.trai.ch/shipper/internal/adapters/shell"
	"go.trai.ch/shipper/internal/core/ports"
)

// NodeID is the unique identifier for the image builder Graft node.
const NodeID graft.ID = "engine.builder"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, cache.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Builder, error) {
			runner, err := graft.Dep[ports.Runner](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuilder(runner, store, log), nil
		},
	})
}
