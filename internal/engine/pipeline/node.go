package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shipper/internal/adapters/gittree"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/shipper/internal/engine/build"
	"go.trai.ch/shipper/internal/engine/deploy"
	"go.trai.ch/shipper/internal/engine/publish"
)

// NodeID is the unique identifier for the pipeline Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Pipeline]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{gittree.NodeID, build.NodeID, publish.NodeID, deploy.NodeID},
		Run: func(ctx context.Context) (*Pipeline, error) {
			hasher, err := graft.Dep[ports.TreeHasher](ctx)
			if err != nil {
				return nil, err
			}
			builder, err := graft.Dep[*build.Builder](ctx)
			if err != nil {
				return nil, err
			}
			publisher, err := graft.Dep[*publish.Publisher](ctx)
			if err != nil {
				return nil, err
			}
			deployer, err := graft.Dep[*deploy.Deployer](ctx)
			if err != nil {
				return nil, err
			}
			return New(hasher, builder, publisher, deployer), nil
		},
	})
}
