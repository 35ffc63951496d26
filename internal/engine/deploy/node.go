package deploy

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shipper/internal/adapters/cache"
	"go.trai.ch/shipper/internal/adapters/health"
	"go.trai.ch/shipper/internal/adapters/logger"
	"go.trai.ch/shipper/internal/adapters/shell"
	"go.trai.ch/shipper/internal/core/ports"
)

// NodeID is the unique identifier for the deployer Graft node.
const NodeID graft.ID = "engine.deployer"

func init() {
	graft.Register(graft.Node[*Deployer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, cache.NodeID, health.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Deployer, error) {
			runner, err := graft.Dep[ports.Runner](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}
			probe, err := graft.Dep[ports.HealthProbe](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewDeployer(runner, store, probe, log), nil
		},
	})
}
