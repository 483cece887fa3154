package engine

import (
	"math"
	"time"
)

// Point is a single reading in a metric series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Inclination is the normalized percentage slope over a window.
type Inclination struct {
	Value         float64 `json:"value"`
	PreviousValue float64 `json:"previous_value"`
	CurrentValue  float64 `json:"current_value"`
	Delta         float64 `json:"delta"`
	IsValid       bool    `json:"is_valid"`
}

// ComputeInclination calculates the percentage change from the earliest to
// the latest point of the window:
//
//	(current - previous) / max(|previous|, zeroThreshold) * 100
//
// The zeroThreshold denominator floor avoids division blowups when the
// previous value is zero or near zero. IsValid is false when fewer than two
// points exist; callers must treat that as insufficient data, never as a
// zero slope.
func ComputeInclination(window []Point, zeroThreshold float64) Inclination {
	if len(window) < 2 {
		return Inclination{IsValid: false}
	}

	previous := window[0].Value
	current := window[len(window)-1].Value
	delta := current - previous

	denominator := math.Abs(previous)
	if denominator < zeroThreshold {
		denominator = zeroThreshold
	}

	return Inclination{
		Value:         delta / denominator * 100,
		PreviousValue: previous,
		CurrentValue:  current,
		Delta:         delta,
		IsValid:       true,
	}
}

// PeriodInclinations computes the per-period inclination between each pair
// of consecutive points. The result has len(series)-1 entries; it is empty
// for series shorter than two points.
func PeriodInclinations(series []Point, zeroThreshold float64) []float64 {
	if len(series) < 2 {
		return nil
	}

	result := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		inc := ComputeInclination(series[i-1:i+1], zeroThreshold)
		result = append(result, inc.Value)
	}
	return result
}
