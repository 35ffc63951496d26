package gittree

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shipper/internal/adapters/shell"
	"go.trai.ch/shipper/internal/core/ports"
)

// NodeID is the unique identifier for the tree hasher Graft node.
const NodeID graft.ID = "adapter.tree_hasher"

func init() {
	graft.Register(graft.Node[ports.TreeHasher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.TreeHasher, error) {
			runner, err := graft.Dep[ports.Runner](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(runner), nil
		},
	})
}
