package engine

import (
	"fmt"
	"math"
	"time"
)

// SignalType identifies a detected series pattern.
type SignalType string

const (
	SignalVolatility    SignalType = "VOLATILITY"
	SignalSlowDecline   SignalType = "SLOW_DECLINE"
	SignalDataGaps      SignalType = "DATA_GAPS"
	SignalRecoverySpike SignalType = "RECOVERY_SPIKE"
	SignalNoise         SignalType = "NOISE"
)

// Severity ranks a signal's urgency.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Signal is a single detected pattern with enough evidence to render in a
// dashboard without re-running the detector.
type Signal struct {
	Type        SignalType     `json:"type"`
	Severity    Severity       `json:"severity"`
	Explanation string         `json:"explanation"`
	Evidence    map[string]any `json:"evidence,omitempty"`
}

// DetectVolatility fires when the series direction flips at least the
// configured number of times. Flat periods do not count as a change and do
// not reset the previous direction.
func DetectVolatility(series []Point, cfg *VolatilityConfig, zeroThreshold float64) *Signal {
	if cfg == nil || len(series) < cfg.MinWindowSize {
		return nil
	}

	incs := PeriodInclinations(series, zeroThreshold)
	changes := 0
	var prev Direction
	for _, inc := range incs {
		dir := DirectionOf(inc)
		if dir == DirectionFlat {
			continue
		}
		if prev != "" && dir != prev {
			changes++
		}
		prev = dir
	}

	if changes < cfg.MinDirectionChanges {
		return nil
	}
	return &Signal{
		Type:        SignalVolatility,
		Severity:    SeverityMedium,
		Explanation: fmt.Sprintf("series direction changed %d times across %d periods", changes, len(incs)),
		Evidence: map[string]any{
			"direction_changes": changes,
			"periods":           len(incs),
		},
	}
}

// DetectSlowDecline fires when the tail of the series shows consecutive
// shallow declines: each period inclination negative but above the
// configured per-period maximum, sustained for the configured run length.
func DetectSlowDecline(series []Point, cfg *SlowDeclineConfig, zeroThreshold float64) *Signal {
	if cfg == nil {
		return nil
	}

	incs := PeriodInclinations(series, zeroThreshold)
	if len(incs) < cfg.MinConsecutiveDeclines {
		return nil
	}

	run := 0
	for i := len(incs) - 1; i >= 0; i-- {
		inc := incs[i]
		if inc < 0 && inc >= cfg.MaxInclinationPerPeriod {
			run++
			continue
		}
		break
	}

	if run < cfg.MinConsecutiveDeclines {
		return nil
	}
	return &Signal{
		Type:        SignalSlowDecline,
		Severity:    SeverityHigh,
		Explanation: fmt.Sprintf("%d consecutive shallow declines, each no steeper than %.1f%% per period", run, cfg.MaxInclinationPerPeriod),
		Evidence: map[string]any{
			"consecutive_declines": run,
			"max_per_period":       cfg.MaxInclinationPerPeriod,
		},
	}
}

// DetectDataGaps fires when any gap between consecutive readings exceeds
// the expected cadence plus tolerance.
func DetectDataGaps(series []Point, cfg *DataGapsConfig) *Signal {
	if cfg == nil || len(series) < 2 {
		return nil
	}

	maxAllowed := time.Duration(cfg.ExpectedDaysBetweenPoints+cfg.ToleranceDays) * 24 * time.Hour
	gaps := 0
	var widest time.Duration
	for i := 1; i < len(series); i++ {
		gap := series[i].Timestamp.Sub(series[i-1].Timestamp)
		if gap > maxAllowed {
			gaps++
			if gap > widest {
				widest = gap
			}
		}
	}

	if gaps == 0 {
		return nil
	}
	return &Signal{
		Type:        SignalDataGaps,
		Severity:    SeverityMedium,
		Explanation: fmt.Sprintf("%d gaps wider than %d days detected, widest %.1f days", gaps, cfg.ExpectedDaysBetweenPoints+cfg.ToleranceDays, widest.Hours()/24),
		Evidence: map[string]any{
			"gap_count":        gaps,
			"widest_gap_days":  widest.Hours() / 24,
			"max_allowed_days": cfg.ExpectedDaysBetweenPoints + cfg.ToleranceDays,
		},
	}
}

// DetectRecoverySpike fires when a run of declines is followed by a single
// sharp upswing in the final period. The spike alone is not evidence of a
// durable trend; the classifier uses this to veto a PODER upgrade.
func DetectRecoverySpike(series []Point, cfg *RecoverySpikeConfig, zeroThreshold float64) *Signal {
	if cfg == nil {
		return nil
	}

	incs := PeriodInclinations(series, zeroThreshold)
	if len(incs) < cfg.MinPriorDeclines+1 {
		return nil
	}

	last := incs[len(incs)-1]
	if last < cfg.MinRecoveryInclination {
		return nil
	}

	declines := 0
	for i := len(incs) - 2; i >= 0; i-- {
		if incs[i] < 0 {
			declines++
			continue
		}
		break
	}

	if declines < cfg.MinPriorDeclines {
		return nil
	}
	return &Signal{
		Type:        SignalRecoverySpike,
		Severity:    SeverityMedium,
		Explanation: fmt.Sprintf("spike of %.1f%% after %d consecutive declines", last, declines),
		Evidence: map[string]any{
			"recovery_inclination": last,
			"prior_declines":       declines,
		},
	}
}

// DetectNoise fires when every period inclination stays within a small
// band around zero yet the direction still flips: the metric is flat but
// jittery, so small movements should not be over-read. Advisory only; it
// never changes the classified condition on its own.
func DetectNoise(series []Point, cfg *NoiseConfig, zeroThreshold float64) *Signal {
	if cfg == nil || len(series) < cfg.MinWindowSize {
		return nil
	}

	incs := PeriodInclinations(series, zeroThreshold)
	flips := 0
	var prev Direction
	for _, inc := range incs {
		if math.Abs(inc) > cfg.MaxInclinationVariation {
			return nil
		}
		dir := DirectionOf(inc)
		if dir == DirectionFlat {
			continue
		}
		if prev != "" && dir != prev {
			flips++
		}
		prev = dir
	}
	if flips == 0 {
		return nil
	}

	return &Signal{
		Type:        SignalNoise,
		Severity:    SeverityLow,
		Explanation: fmt.Sprintf("all %d period inclinations within ±%.1f%% with %d direction flips", len(incs), cfg.MaxInclinationVariation, flips),
		Evidence: map[string]any{
			"periods":         len(incs),
			"max_variation":   cfg.MaxInclinationVariation,
			"direction_flips": flips,
		},
	}
}

// DetectAll runs every configured detector over the series in a fixed
// order. Detectors with a nil config block are skipped.
func DetectAll(series []Point, t *Thresholds) []Signal {
	var signals []Signal
	if s := DetectVolatility(series, t.Volatility, t.ZeroThreshold); s != nil {
		signals = append(signals, *s)
	}
	if s := DetectSlowDecline(series, t.SlowDecline, t.ZeroThreshold); s != nil {
		signals = append(signals, *s)
	}
	if s := DetectDataGaps(series, t.DataGaps); s != nil {
		signals = append(signals, *s)
	}
	if s := DetectRecoverySpike(series, t.RecoverySpike, t.ZeroThreshold); s != nil {
		signals = append(signals, *s)
	}
	if s := DetectNoise(series, t.Noise, t.ZeroThreshold); s != nil {
		signals = append(signals, *s)
	}
	return signals
}
