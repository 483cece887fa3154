package engine

import "fmt"

// AfluenciaThreshold marks the floor for steep, non-sustained growth.
type AfluenciaThreshold struct {
	MinInclination float64 `json:"min_inclination"`
}

// NormalThreshold bounds the healthy operating band.
type NormalThreshold struct {
	MinInclination float64 `json:"min_inclination"`
	MaxInclination float64 `json:"max_inclination"`
}

// RangeThreshold bounds a decline band (EMERGENCIA, PELIGRO).
type RangeThreshold struct {
	MinInclination float64 `json:"min_inclination"`
	MaxInclination float64 `json:"max_inclination"`
}

// PoderThreshold parameterizes the sustained-stable-growth lookback.
type PoderThreshold struct {
	MinInclination        float64 `json:"min_inclination"`
	MinConsecutivePeriods int     `json:"min_consecutive_periods"`
	StabilityThreshold    float64 `json:"stability_threshold"`
}

// InexistenciaThreshold marks near-zero activity on the latest reading.
type InexistenciaThreshold struct {
	Threshold float64 `json:"threshold"`
}

// VolatilityConfig parameterizes direction-change detection.
type VolatilityConfig struct {
	MinWindowSize       int `json:"min_window_size"`
	MinDirectionChanges int `json:"min_direction_changes"`
}

// SlowDeclineConfig parameterizes shallow-but-persistent decline detection.
type SlowDeclineConfig struct {
	MaxInclinationPerPeriod float64 `json:"max_inclination_per_period"`
	MinConsecutiveDeclines  int     `json:"min_consecutive_declines"`
}

// DataGapsConfig parameterizes missing-reading detection.
type DataGapsConfig struct {
	ExpectedDaysBetweenPoints int `json:"expected_days_between_points"`
	ToleranceDays             int `json:"tolerance_days"`
}

// RecoverySpikeConfig parameterizes decline-then-spike detection.
type RecoverySpikeConfig struct {
	MinPriorDeclines       int     `json:"min_prior_declines"`
	MinRecoveryInclination float64 `json:"min_recovery_inclination"`
}

// NoiseConfig parameterizes flat-but-jittery detection.
type NoiseConfig struct {
	MinWindowSize           int     `json:"min_window_size"`
	MaxInclinationVariation float64 `json:"max_inclination_variation"`
}

// Thresholds is the full parameter set an active configuration supplies to
// the classifier and detectors. The six condition blocks are required; a
// nil signal block disables only that detector.
type Thresholds struct {
	Afluencia    *AfluenciaThreshold    `json:"afluencia"`
	Normal       *NormalThreshold       `json:"normal"`
	Emergencia   *RangeThreshold        `json:"emergencia"`
	Peligro      *RangeThreshold        `json:"peligro"`
	Poder        *PoderThreshold        `json:"poder"`
	Inexistencia *InexistenciaThreshold `json:"inexistencia"`

	ZeroThreshold   float64 `json:"zero_threshold"`
	ConfidenceFloor float64 `json:"confidence_floor"`

	Volatility    *VolatilityConfig    `json:"volatility,omitempty"`
	SlowDecline   *SlowDeclineConfig   `json:"slow_decline,omitempty"`
	DataGaps      *DataGapsConfig      `json:"data_gaps,omitempty"`
	RecoverySpike *RecoverySpikeConfig `json:"recovery_spike,omitempty"`
	Noise         *NoiseConfig         `json:"noise,omitempty"`
}

// Validate checks that all required condition blocks are present and that
// the bands partition the inclination axis without gaps or overlaps.
// A failure here is a configuration error: the whole evaluation must fail
// rather than silently fall back to defaults.
func (t *Thresholds) Validate() error {
	if t.Afluencia == nil {
		return fmt.Errorf("thresholds: missing afluencia block")
	}
	if t.Normal == nil {
		return fmt.Errorf("thresholds: missing normal block")
	}
	if t.Emergencia == nil {
		return fmt.Errorf("thresholds: missing emergencia block")
	}
	if t.Peligro == nil {
		return fmt.Errorf("thresholds: missing peligro block")
	}
	if t.Poder == nil {
		return fmt.Errorf("thresholds: missing poder block")
	}
	if t.Inexistencia == nil {
		return fmt.Errorf("thresholds: missing inexistencia block")
	}

	if !(t.Peligro.MinInclination < t.Emergencia.MinInclination &&
		t.Emergencia.MinInclination < t.Normal.MinInclination &&
		t.Normal.MinInclination < t.Afluencia.MinInclination) {
		return fmt.Errorf("thresholds: band floors must be strictly increasing (peligro %v < emergencia %v < normal %v < afluencia %v)",
			t.Peligro.MinInclination, t.Emergencia.MinInclination, t.Normal.MinInclination, t.Afluencia.MinInclination)
	}
	// Upper bounds must meet the floor of the next band so every inclination
	// maps to exactly one of the four bands.
	if t.Normal.MaxInclination != t.Afluencia.MinInclination {
		return fmt.Errorf("thresholds: normal.max_inclination (%v) must equal afluencia.min_inclination (%v)",
			t.Normal.MaxInclination, t.Afluencia.MinInclination)
	}
	if t.Emergencia.MaxInclination != t.Normal.MinInclination {
		return fmt.Errorf("thresholds: emergencia.max_inclination (%v) must equal normal.min_inclination (%v)",
			t.Emergencia.MaxInclination, t.Normal.MinInclination)
	}
	if t.Peligro.MaxInclination != t.Emergencia.MinInclination {
		return fmt.Errorf("thresholds: peligro.max_inclination (%v) must equal emergencia.min_inclination (%v)",
			t.Peligro.MaxInclination, t.Emergencia.MinInclination)
	}

	if t.Poder.MinConsecutivePeriods < 1 {
		return fmt.Errorf("thresholds: poder.min_consecutive_periods must be at least 1, got %d", t.Poder.MinConsecutivePeriods)
	}
	if t.Poder.StabilityThreshold <= 0 {
		return fmt.Errorf("thresholds: poder.stability_threshold must be positive, got %v", t.Poder.StabilityThreshold)
	}
	if t.Inexistencia.Threshold < 0 {
		return fmt.Errorf("thresholds: inexistencia.threshold must not be negative, got %v", t.Inexistencia.Threshold)
	}
	if t.ZeroThreshold <= 0 {
		return fmt.Errorf("thresholds: zero_threshold must be positive, got %v", t.ZeroThreshold)
	}
	if t.ConfidenceFloor < 0 || t.ConfidenceFloor >= 1 {
		return fmt.Errorf("thresholds: confidence_floor must be in [0,1), got %v", t.ConfidenceFloor)
	}
	return nil
}

// DefaultThresholds returns the documented bootstrap configuration used
// when no active threshold config exists yet.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Afluencia: &AfluenciaThreshold{MinInclination: 10.0},
		Normal:    &NormalThreshold{MinInclination: -5.0, MaxInclination: 10.0},
		Emergencia: &RangeThreshold{
			MinInclination: -15.0,
			MaxInclination: -5.0,
		},
		Peligro: &RangeThreshold{
			MinInclination: -50.0,
			MaxInclination: -15.0,
		},
		Poder: &PoderThreshold{
			MinInclination:        2.0,
			MinConsecutivePeriods: 3,
			StabilityThreshold:    5.0,
		},
		Inexistencia:    &InexistenciaThreshold{Threshold: 0.5},
		ZeroThreshold:   1.0,
		ConfidenceFloor: 0.5,
		Volatility: &VolatilityConfig{
			MinWindowSize:       4,
			MinDirectionChanges: 3,
		},
		SlowDecline: &SlowDeclineConfig{
			MaxInclinationPerPeriod: -5.0,
			MinConsecutiveDeclines:  3,
		},
		DataGaps: &DataGapsConfig{
			ExpectedDaysBetweenPoints: 7,
			ToleranceDays:             2,
		},
		RecoverySpike: &RecoverySpikeConfig{
			MinPriorDeclines:       3,
			MinRecoveryInclination: 10.0,
		},
		Noise: &NoiseConfig{
			MinWindowSize:           4,
			MaxInclinationVariation: 2.0,
		},
	}
}
