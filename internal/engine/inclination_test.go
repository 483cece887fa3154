package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(values ...float64) []Point {
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	series := make([]Point, len(values))
	for i, v := range values {
		series[i] = Point{Timestamp: base.AddDate(0, 0, 7*i), Value: v}
	}
	return series
}

func TestComputeInclination(t *testing.T) {
	tests := []struct {
		name          string
		values        []float64
		zeroThreshold float64
		want          float64
		wantValid     bool
	}{
		{"simple growth", []float64{100, 110}, 1.0, 10.0, true},
		{"simple decline", []float64{42, 35}, 1.0, -16.666666666666664, true},
		{"flat", []float64{50, 50}, 1.0, 0, true},
		{"zero previous uses floor", []float64{0, 5}, 1.0, 500.0, true},
		{"near-zero previous uses floor", []float64{0.2, 5}, 1.0, 480.0, true},
		{"negative previous uses magnitude", []float64{-10, -5}, 1.0, 50.0, true},
		{"window wider than two uses endpoints", []float64{100, 7, 120}, 1.0, 20.0, true},
		{"single point invalid", []float64{42}, 1.0, 0, false},
		{"empty invalid", nil, 1.0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := ComputeInclination(pts(tt.values...), tt.zeroThreshold)
			assert.Equal(t, tt.wantValid, inc.IsValid)
			if tt.wantValid {
				assert.InDelta(t, tt.want, inc.Value, 1e-9)
			}
		})
	}
}

func TestPeriodInclinations(t *testing.T) {
	incs := PeriodInclinations(pts(100, 110, 99), 1.0)
	require.Len(t, incs, 2)
	assert.InDelta(t, 10.0, incs[0], 1e-9)
	assert.InDelta(t, -10.0, incs[1], 1e-9)

	assert.Nil(t, PeriodInclinations(pts(42), 1.0))
	assert.Nil(t, PeriodInclinations(nil, 1.0))
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, DirectionUp, DirectionOf(0.1))
	assert.Equal(t, DirectionDown, DirectionOf(-0.1))
	assert.Equal(t, DirectionFlat, DirectionOf(0))
}
