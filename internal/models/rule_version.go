package models

import (
	"encoding/json"
	"fmt"
	"time"

	"pulseboard/internal/engine"

	"gorm.io/datatypes"
)

// RuleThresholds are the seven named band floors of a metric-specific
// rule, strictly descending. They remap onto the global condition bands:
// STEEP_POSITIVE becomes the afluencia floor, MODERATE_POSITIVE the poder
// growth floor, STABLE the normal floor, MILD_NEGATIVE the emergencia
// floor and CRITICAL_NEGATIVE the vertical-drop boundary below peligro.
// MODERATE_NEGATIVE and SEVERE_NEGATIVE grade the depth of a decline
// inside the peligro band.
type RuleThresholds struct {
	SteepPositive    float64 `json:"STEEP_POSITIVE"`
	ModeratePositive float64 `json:"MODERATE_POSITIVE"`
	Stable           float64 `json:"STABLE"`
	MildNegative     float64 `json:"MILD_NEGATIVE"`
	ModerateNegative float64 `json:"MODERATE_NEGATIVE"`
	SevereNegative   float64 `json:"SEVERE_NEGATIVE"`
	CriticalNegative float64 `json:"CRITICAL_NEGATIVE"`
}

// Validate enforces the strict descending order of the band floors.
func (rt *RuleThresholds) Validate() error {
	ordered := []struct {
		name  string
		value float64
	}{
		{"STEEP_POSITIVE", rt.SteepPositive},
		{"MODERATE_POSITIVE", rt.ModeratePositive},
		{"STABLE", rt.Stable},
		{"MILD_NEGATIVE", rt.MildNegative},
		{"MODERATE_NEGATIVE", rt.ModerateNegative},
		{"SEVERE_NEGATIVE", rt.SevereNegative},
		{"CRITICAL_NEGATIVE", rt.CriticalNegative},
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].value >= ordered[i-1].value {
			return fmt.Errorf("rule thresholds: %s (%v) must be below %s (%v)",
				ordered[i].name, ordered[i].value, ordered[i-1].name, ordered[i-1].value)
		}
	}
	return nil
}

// DefaultRuleThresholds mirrors the global default bands with the
// additional decline grades filled in.
func DefaultRuleThresholds() RuleThresholds {
	return RuleThresholds{
		SteepPositive:    10.0,
		ModeratePositive: 2.0,
		Stable:           -5.0,
		MildNegative:     -15.0,
		ModerateNegative: -30.0,
		SevereNegative:   -50.0,
		CriticalNegative: -80.0,
	}
}

// EncodeRuleThresholds validates and serializes band floors for storage.
func EncodeRuleThresholds(rt RuleThresholds) (datatypes.JSON, error) {
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(rt)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// BusinessRuleVersion corresponds to the business_rule_versions table.
// Versions for one metric key form a backward-linked chain; at most one
// version per key is active. Rows are never mutated after insert: an
// update deactivates the current version and inserts a successor whose
// PreviousVersionID points back at it.
type BusinessRuleVersion struct {
	ID                uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	MetricKey         string         `gorm:"type:varchar(255);not null;index:idx_metric_active,priority:1" json:"metric_key"`
	Version           int            `gorm:"not null;default:1" json:"version"`
	IsActive          bool           `gorm:"not null;default:false;index:idx_metric_active,priority:2" json:"is_active"`
	WindowSize        int            `gorm:"not null;default:2" json:"window_size"`
	Thresholds        datatypes.JSON `gorm:"type:json;not null" json:"thresholds"`
	PowerMinPeriods   int            `gorm:"not null;default:3" json:"power_min_periods"`
	ZeroThreshold     float64        `gorm:"not null;default:1" json:"zero_threshold"`
	PreviousVersionID *uint          `gorm:"index" json:"previous_version_id,omitempty"`
	Annotations       datatypes.JSON `gorm:"type:json" json:"annotations,omitempty"`
	CreatedBy         string         `gorm:"type:varchar(255)" json:"created_by,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (BusinessRuleVersion) TableName() string {
	return "business_rule_versions"
}

// RuleAnnotation attaches a tag to an evaluation when every expression
// matches. Annotations are advisory output; they never change the
// classified condition.
type RuleAnnotation struct {
	Tag         string              `json:"tag"`
	Expressions []engine.Expression `json:"expressions"`
}

// EncodeAnnotations validates and serializes an annotation list. A nil
// or empty list stores as an empty column.
func EncodeAnnotations(anns []RuleAnnotation) (datatypes.JSON, error) {
	if len(anns) == 0 {
		return nil, nil
	}
	for i := range anns {
		if anns[i].Tag == "" {
			return nil, fmt.Errorf("annotation %d: tag is required", i)
		}
		for j := range anns[i].Expressions {
			if err := anns[i].Expressions[j].Validate(); err != nil {
				return nil, fmt.Errorf("annotation %q: %w", anns[i].Tag, err)
			}
		}
	}
	raw, err := json.Marshal(anns)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeRuleThresholds parses and validates the stored band floors.
func (v *BusinessRuleVersion) DecodeRuleThresholds() (RuleThresholds, error) {
	var rt RuleThresholds
	if len(v.Thresholds) == 0 {
		return rt, fmt.Errorf("rule version %d has no thresholds payload", v.ID)
	}
	if err := json.Unmarshal(v.Thresholds, &rt); err != nil {
		return rt, fmt.Errorf("rule version %d: %w", v.ID, err)
	}
	if err := rt.Validate(); err != nil {
		return rt, fmt.Errorf("rule version %d: %w", v.ID, err)
	}
	return rt, nil
}

// DecodeAnnotations parses the optional annotation list. An empty column
// yields no annotations.
func (v *BusinessRuleVersion) DecodeAnnotations() ([]RuleAnnotation, error) {
	if len(v.Annotations) == 0 {
		return nil, nil
	}
	var anns []RuleAnnotation
	if err := json.Unmarshal(v.Annotations, &anns); err != nil {
		return nil, fmt.Errorf("rule version %d annotations: %w", v.ID, err)
	}
	for i := range anns {
		for j := range anns[i].Expressions {
			if err := anns[i].Expressions[j].Validate(); err != nil {
				return nil, fmt.Errorf("rule version %d annotation %q: %w", v.ID, anns[i].Tag, err)
			}
		}
	}
	return anns, nil
}

// ApplyToThresholds overlays the rule's band floors and lookback
// parameters onto a base threshold set. The result keeps the base's
// signal blocks and stability settings but classifies against the rule's
// bands.
func (v *BusinessRuleVersion) ApplyToThresholds(base engine.Thresholds) (engine.Thresholds, error) {
	rt, err := v.DecodeRuleThresholds()
	if err != nil {
		return base, err
	}

	out := base
	out.Afluencia = &engine.AfluenciaThreshold{MinInclination: rt.SteepPositive}
	out.Normal = &engine.NormalThreshold{MinInclination: rt.Stable, MaxInclination: rt.SteepPositive}
	out.Emergencia = &engine.RangeThreshold{MinInclination: rt.MildNegative, MaxInclination: rt.Stable}
	out.Peligro = &engine.RangeThreshold{MinInclination: rt.CriticalNegative, MaxInclination: rt.MildNegative}

	poder := *base.Poder
	poder.MinInclination = rt.ModeratePositive
	if v.PowerMinPeriods > 0 {
		poder.MinConsecutivePeriods = v.PowerMinPeriods
	}
	out.Poder = &poder

	if v.ZeroThreshold > 0 {
		out.ZeroThreshold = v.ZeroThreshold
	}

	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}
