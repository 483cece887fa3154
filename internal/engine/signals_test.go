package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectVolatility(t *testing.T) {
	cfg := &VolatilityConfig{MinWindowSize: 4, MinDirectionChanges: 3}

	s := DetectVolatility(pts(50, 60, 45, 58, 44), cfg, 1.0)
	require.NotNil(t, s)
	assert.Equal(t, SignalVolatility, s.Type)
	assert.Equal(t, SeverityMedium, s.Severity)
	assert.Equal(t, 3, s.Evidence["direction_changes"])

	assert.Nil(t, DetectVolatility(pts(50, 55, 60, 65, 70), cfg, 1.0), "monotonic series has no flips")
	assert.Nil(t, DetectVolatility(pts(50, 60, 45), cfg, 1.0), "below min window")
	assert.Nil(t, DetectVolatility(pts(50, 60, 45, 58, 44), nil, 1.0), "nil config disables detector")
}

func TestDetectSlowDecline(t *testing.T) {
	cfg := &SlowDeclineConfig{MaxInclinationPerPeriod: -5.0, MinConsecutiveDeclines: 3}

	// Each period down roughly 2-3%, well above the -5% steepness cutoff.
	s := DetectSlowDecline(pts(100, 98, 96, 94, 92), cfg, 1.0)
	require.NotNil(t, s)
	assert.Equal(t, SignalSlowDecline, s.Type)
	assert.Equal(t, SeverityHigh, s.Severity)
	assert.Equal(t, 4, s.Evidence["consecutive_declines"])

	assert.Nil(t, DetectSlowDecline(pts(100, 90, 80, 70), cfg, 1.0), "steep declines are not slow")
	assert.Nil(t, DetectSlowDecline(pts(100, 98, 99, 97), cfg, 1.0), "run broken by an up period")
	assert.Nil(t, DetectSlowDecline(pts(100, 98, 96), cfg, 1.0), "run too short")
}

func TestDetectDataGaps(t *testing.T) {
	cfg := &DataGapsConfig{ExpectedDaysBetweenPoints: 7, ToleranceDays: 2}
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	series := []Point{
		{Timestamp: base, Value: 50},
		{Timestamp: base.AddDate(0, 0, 7), Value: 52},
		{Timestamp: base.AddDate(0, 0, 28), Value: 48},
	}
	s := DetectDataGaps(series, cfg)
	require.NotNil(t, s)
	assert.Equal(t, SignalDataGaps, s.Type)
	assert.Equal(t, 1, s.Evidence["gap_count"])
	assert.InDelta(t, 21.0, s.Evidence["widest_gap_days"].(float64), 1e-9)

	assert.Nil(t, DetectDataGaps(pts(50, 52, 48), cfg), "weekly cadence within tolerance")

	nineDays := []Point{
		{Timestamp: base, Value: 50},
		{Timestamp: base.AddDate(0, 0, 9), Value: 52},
	}
	assert.Nil(t, DetectDataGaps(nineDays, cfg), "tolerance absorbs a two-day slip")
}

func TestDetectRecoverySpike(t *testing.T) {
	cfg := &RecoverySpikeConfig{MinPriorDeclines: 3, MinRecoveryInclination: 10.0}

	s := DetectRecoverySpike(pts(100, 90, 80, 70, 85), cfg, 1.0)
	require.NotNil(t, s)
	assert.Equal(t, SignalRecoverySpike, s.Type)
	assert.Equal(t, 3, s.Evidence["prior_declines"])

	assert.Nil(t, DetectRecoverySpike(pts(100, 90, 80, 70, 72), cfg, 1.0), "final upswing too small")
	assert.Nil(t, DetectRecoverySpike(pts(100, 90, 95, 70, 85), cfg, 1.0), "decline run interrupted")
	assert.Nil(t, DetectRecoverySpike(pts(100, 90, 110), cfg, 1.0), "not enough prior declines")
}

func TestDetectNoise(t *testing.T) {
	cfg := &NoiseConfig{MinWindowSize: 4, MaxInclinationVariation: 2.0}

	s := DetectNoise(pts(100, 101, 100, 99, 100), cfg, 1.0)
	require.NotNil(t, s)
	assert.Equal(t, SignalNoise, s.Type)
	assert.Equal(t, SeverityLow, s.Severity)

	assert.Nil(t, DetectNoise(pts(100, 105, 100, 95), cfg, 1.0), "swings exceed the noise band")
	assert.Nil(t, DetectNoise(pts(100, 100.5, 101, 101.5), cfg, 1.0), "small but steady drift has no flips")
	assert.Nil(t, DetectNoise(pts(100, 101, 100), cfg, 1.0), "below min window")
}

func TestDetectAllRunsConfiguredDetectorsOnly(t *testing.T) {
	th := DefaultThresholds()
	th.Volatility = nil
	th.DataGaps = nil
	th.RecoverySpike = nil
	th.Noise = nil

	signals := DetectAll(pts(100, 98, 96, 94, 92), &th)
	require.Len(t, signals, 1)
	assert.Equal(t, SignalSlowDecline, signals[0].Type)
}
