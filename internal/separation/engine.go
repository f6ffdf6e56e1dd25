// Package separation isolates instrument stems from a mixed recording.
// The actual model lives in an external command; this package defines
// the engine contract and its process adapter.
package separation

import (
	"context"

	"stemtab/internal/domain"
)

// ProgressFunc receives completion percentages as the engine reports
// them, in the 0-100 range.
type ProgressFunc func(percent float64)

// Request describes one separation run.
type Request struct {
	InputPath string
	OutputDir string
	Algorithm domain.Algorithm
	Quality   domain.Quality
}

// Engine runs a separation and returns the produced stems as a map of
// instrument name to output file path.
type Engine interface {
	Separate(ctx context.Context, req Request, progress ProgressFunc) (map[string]string, error)
}
