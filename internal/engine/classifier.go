package engine

import (
	"fmt"
	"math"
)

// Classification is the full result of evaluating a metric series.
type Classification struct {
	Condition   Condition   `json:"condition"`
	Inclination Inclination `json:"inclination"`
	Direction   Direction   `json:"direction"`
	Confidence  float64     `json:"confidence"`
	Signals     []Signal    `json:"signals,omitempty"`
	Rationale   string      `json:"rationale"`
}

// Classifier assigns conditions to metric series according to a validated
// threshold set. It is stateless and safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier validates the thresholds and returns a classifier. An
// invalid threshold set is rejected here so evaluation never runs with a
// broken configuration.
func NewClassifier(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{thresholds: t}, nil
}

// Thresholds returns the threshold set the classifier was built with.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify evaluates a chronologically ordered series. The inclination is
// computed over the trailing window of windowSize points; signal detectors
// and the sustained-growth lookback see the whole series.
//
// Precedence is strict: insufficient data, then near-zero activity, then
// sustained stable growth, then the inclination bands, with a drop below
// the lowest band floor read as collapse. CAMBIO_DE_PODER is never
// assigned here; it is an operator declaration.
func (c *Classifier) Classify(series []Point, windowSize int) Classification {
	t := c.thresholds
	signals := DetectAll(series, &t)

	if len(series) < 2 || windowSize < 2 {
		rationale := fmt.Sprintf("need at least 2 readings, have %d", len(series))
		if len(series) >= 2 {
			rationale = fmt.Sprintf("window of %d points cannot produce an inclination", windowSize)
		}
		return Classification{
			Condition:  ConditionSinDatos,
			Direction:  DirectionFlat,
			Confidence: 1.0,
			Signals:    signals,
			Rationale:  rationale,
		}
	}

	window := series
	if len(series) > windowSize {
		window = series[len(series)-windowSize:]
	}
	inc := ComputeInclination(window, t.ZeroThreshold)
	dir := DirectionOf(inc.Value)

	base := Classification{
		Inclination: inc,
		Direction:   dir,
		Signals:     signals,
	}

	latest := series[len(series)-1].Value
	if math.Abs(latest) <= t.Inexistencia.Threshold {
		base.Condition = ConditionInexistencia
		base.Confidence = 1.0
		base.Rationale = fmt.Sprintf("latest value %.2f at or below activity threshold %.2f", latest, t.Inexistencia.Threshold)
		return base
	}

	if c.sustainedGrowth(series) {
		if hasSignal(signals, SignalRecoverySpike) {
			base.Condition = ConditionAfluencia
			base.Confidence = t.ConfidenceFloor
			base.Rationale = "growth run present but final period is a recovery spike after declines"
			return base
		}
		base.Condition = ConditionPoder
		base.Confidence = 1.0
		base.Rationale = fmt.Sprintf("at least %d consecutive stable growth periods above %.1f%%", t.Poder.MinConsecutivePeriods, t.Poder.MinInclination)
		return base
	}

	switch {
	case inc.Value >= t.Afluencia.MinInclination:
		base.Condition = ConditionAfluencia
		base.Confidence = c.bandConfidence(inc.Value, t.Afluencia.MinInclination, math.Inf(1))
		base.Rationale = fmt.Sprintf("inclination %.1f%% at or above afluencia floor %.1f%%", inc.Value, t.Afluencia.MinInclination)
	case inc.Value >= t.Normal.MinInclination:
		if inc.Value < 0 && hasSignal(signals, SignalSlowDecline) {
			base.Condition = ConditionEmergencia
			base.Confidence = t.ConfidenceFloor
			base.Rationale = fmt.Sprintf("inclination %.1f%% within normal band but a sustained shallow decline is underway", inc.Value)
			return base
		}
		base.Condition = ConditionNormal
		base.Confidence = c.bandConfidence(inc.Value, t.Normal.MinInclination, t.Normal.MaxInclination)
		base.Rationale = fmt.Sprintf("inclination %.1f%% within normal band [%.1f, %.1f)", inc.Value, t.Normal.MinInclination, t.Normal.MaxInclination)
	case inc.Value >= t.Emergencia.MinInclination:
		base.Condition = ConditionEmergencia
		base.Confidence = c.bandConfidence(inc.Value, t.Emergencia.MinInclination, t.Emergencia.MaxInclination)
		base.Rationale = fmt.Sprintf("inclination %.1f%% within emergencia band [%.1f, %.1f)", inc.Value, t.Emergencia.MinInclination, t.Emergencia.MaxInclination)
	case inc.Value >= t.Peligro.MinInclination:
		base.Condition = ConditionPeligro
		base.Confidence = c.bandConfidence(inc.Value, t.Peligro.MinInclination, t.Peligro.MaxInclination)
		base.Rationale = fmt.Sprintf("inclination %.1f%% within peligro band [%.1f, %.1f)", inc.Value, t.Peligro.MinInclination, t.Peligro.MaxInclination)
	default:
		base.Condition = ConditionInexistencia
		base.Confidence = 1.0
		base.Rationale = fmt.Sprintf("inclination %.1f%% below peligro floor %.1f%%, vertical drop", inc.Value, t.Peligro.MinInclination)
	}
	return base
}

// sustainedGrowth reports whether the series tail contains at least the
// configured number of consecutive periods that each grow by the poder
// floor and stay within the stability threshold of the previous period.
func (c *Classifier) sustainedGrowth(series []Point) bool {
	p := c.thresholds.Poder
	incs := PeriodInclinations(series, c.thresholds.ZeroThreshold)
	if len(incs) < p.MinConsecutivePeriods {
		return false
	}

	run := 0
	for i := len(incs) - 1; i >= 0; i-- {
		if incs[i] < p.MinInclination {
			break
		}
		if run > 0 && math.Abs(incs[i+1]-incs[i]) > p.StabilityThreshold {
			break
		}
		run++
		if run >= p.MinConsecutivePeriods {
			return true
		}
	}
	return false
}

// bandConfidence scales confidence by how far the inclination sits from
// the nearest band boundary: dead center scores 1.0, a value on the edge
// scores the configured floor. Unbounded bands use a reference half-width.
func (c *Classifier) bandConfidence(value, low, high float64) float64 {
	const referenceWidth = 10.0

	floor := c.thresholds.ConfidenceFloor
	var halfWidth, distance float64
	if math.IsInf(high, 1) {
		halfWidth = referenceWidth / 2
		distance = value - low
	} else if math.IsInf(low, -1) {
		halfWidth = referenceWidth / 2
		distance = high - value
	} else {
		halfWidth = (high - low) / 2
		distance = math.Min(value-low, high-value)
	}

	if halfWidth <= 0 {
		return floor
	}
	conf := floor + (1-floor)*(distance/halfWidth)
	if conf > 1 {
		conf = 1
	}
	if conf < floor {
		conf = floor
	}
	return conf
}

func hasSignal(signals []Signal, t SignalType) bool {
	for _, s := range signals {
		if s.Type == t {
			return true
		}
	}
	return false
}
