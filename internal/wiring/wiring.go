// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/shipper/internal/adapters/cache"
	_ "go.trai.ch/shipper/internal/adapters/config"
	_ "go.trai.ch/shipper/internal/adapters/gittree"
	_ "go.trai.ch/shipper/internal/adapters/health"
	_ "go.trai.ch/shipper/internal/adapters/logger"
	_ "go.trai.ch/shipper/internal/adapters/shell"
	_ "go.trai.ch/shipper/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/shipper/internal/app"
	_ "go.trai.ch/shipper/internal/engine/build"
	_ "go.trai.ch/shipper/internal/engine/deploy"
	_ "go.trai.ch/shipper/internal/engine/pipeline"
	_ "go.trai.ch/shipper/internal/engine/publish"
)
