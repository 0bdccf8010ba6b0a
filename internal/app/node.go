package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/compplan/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/compplan/internal/adapters/fs"       //nolint:depguard // Wired in app layer
	"go.trai.ch/compplan/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/compplan/internal/adapters/manifest" //nolint:depguard // Wired in app layer
	"go.trai.ch/compplan/internal/adapters/shell"    //nolint:depguard // Wired in app layer
	"go.trai.ch/compplan/internal/adapters/watcher"  //nolint:depguard // Wired in app layer
	"go.trai.ch/compplan/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			fs.WalkerNodeID,
			fs.HasherNodeID,
			manifest.NodeID,
			shell.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	walker, err := graft.Dep[ports.Walker](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.ManifestWriter](ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := graft.Dep[ports.OverrideFactory](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, log, walker, store, hasher, overrides, w), nil
}
