// Package pitch extracts a fundamental-frequency contour from an audio
// file via an external analyzer command.
package pitch

import (
	"context"
)

// Sample is one point of the pitch contour.
type Sample struct {
	Time       float64 // seconds from start
	Frequency  float64 // Hz; <= 0 means unvoiced
	Confidence float64 // 0-1
}

// Extractor produces a pitch contour restricted to a frequency band.
type Extractor interface {
	Extract(ctx context.Context, path string, minFreq, maxFreq float64) ([]Sample, error)
}
