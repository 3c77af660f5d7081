// Package resultstore defines the downstream artifact port. Consumers of
// pipeline results (archives, issue trackers, documentation stores) sit
// behind it; their failure never affects the pipeline's own completion.
package resultstore

import (
	"context"

	"github.com/Strob0t/TaskForge/internal/domain/pipeline"
)

// Store persists final pipeline results for later consumption.
type Store interface {
	SaveResult(ctx context.Context, req pipeline.Request, res *pipeline.Result) error
}

// Reader loads archived results by run id.
type Reader interface {
	GetResult(ctx context.Context, runID string) (*pipeline.Result, error)
}
