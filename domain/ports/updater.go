package ports

import (
	"context"

	"github.com/revrobotics/chupdater/domain/entities"
	"github.com/revrobotics/chupdater/wireformat"
)

// UpdaterService defines the interface to the process that installs updates.
// Infrastructure adapters implement this to reach the Control Hub Updater.
type UpdaterService interface {
	// Start asks the updater to process req. Progress and the final outcome
	// are reported asynchronously as bundles sent to sink; Start itself only
	// fails when the request could not be handed over.
	Start(ctx context.Context, req entities.UpdateRequest, sink ResultSink) error
}

// ResultSink receives result bundles from the updater.
// Send may be called from any goroutine.
type ResultSink interface {
	Send(b wireformat.Bundle)
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(b wireformat.Bundle)

func (f ResultSinkFunc) Send(b wireformat.Bundle) {
	f(b)
}
