package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shipper/internal/adapters/config"
	"go.trai.ch/shipper/internal/adapters/logger"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/shipper/internal/engine/build"
	"go.trai.ch/shipper/internal/engine/pipeline"
)

// NodeID is the unique identifier for the application Graft node.
const NodeID graft.ID = "app.components"

// Components bundles the fully wired application for the CLI entry point.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, pipeline.NodeID, build.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			pipe, err := graft.Dep[*pipeline.Pipeline](ctx)
			if err != nil {
				return nil, err
			}
			builder, err := graft.Dep[*build.Builder](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{
				App:    New(loader, pipe, builder, log),
				Logger: log,
			}, nil
		},
	})
}
