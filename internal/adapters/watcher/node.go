package watcher

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the file watcher Graft node.
const NodeID graft.ID = "adapter.watcher"

func init() {
	graft.Register(graft.Node[*Watcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Watcher, error) {
			return NewWatcher()
		},
	})
}
