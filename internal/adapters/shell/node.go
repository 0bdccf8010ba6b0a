package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/compplan/internal/adapters/logger"
	"go.trai.ch/compplan/internal/core/ports"
)

// NodeID is the unique identifier for the override transformer Graft node.
const NodeID graft.ID = "adapter.shell_transformer"

func init() {
	graft.Register(graft.Node[ports.OverrideFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.OverrideFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewTransformer(log), nil
		},
	})
}
