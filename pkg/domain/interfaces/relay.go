package interfaces

import (
	"context"

	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

// Relay shares outbound envelopes between server instances
type Relay interface {
	// Publish sends an envelope to every other instance
	Publish(ctx context.Context, env *model.Envelope) error

	// Subscribe calls handler for each envelope published by another instance
	// until ctx is cancelled
	Subscribe(ctx context.Context, handler func(env *model.Envelope)) error

	Close() error
}
