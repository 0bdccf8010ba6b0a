// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/compplan/internal/adapters/config"
	_ "go.trai.ch/compplan/internal/adapters/fs"
	_ "go.trai.ch/compplan/internal/adapters/logger"
	_ "go.trai.ch/compplan/internal/adapters/manifest"
	_ "go.trai.ch/compplan/internal/adapters/shell"
	_ "go.trai.ch/compplan/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/compplan/internal/app"
)
