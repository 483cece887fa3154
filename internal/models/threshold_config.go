package models

import (
	"encoding/json"
	"fmt"
	"time"

	"pulseboard/internal/engine"

	"gorm.io/datatypes"
)

// ThresholdConfig corresponds to the threshold_configs table. It is a
// versioned snapshot of the full engine.Thresholds parameter set; at most
// one row is active at a time and the active row drives every evaluation
// that has no metric-specific rule.
type ThresholdConfig struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null;unique" json:"name"`
	Description string         `gorm:"type:varchar(512)" json:"description"`
	Version     int            `gorm:"not null;default:1" json:"version"`
	IsActive    bool           `gorm:"not null;default:false;index" json:"is_active"`
	Thresholds  datatypes.JSON `gorm:"type:json;not null" json:"thresholds"`
	CreatedBy   string         `gorm:"type:varchar(255)" json:"created_by,omitempty"`
	ActivatedAt *time.Time     `json:"activated_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (ThresholdConfig) TableName() string {
	return "threshold_configs"
}

// DecodeThresholds parses and validates the stored threshold JSON. A row
// that fails here is a configuration error and must abort the evaluation
// using it.
func (c *ThresholdConfig) DecodeThresholds() (engine.Thresholds, error) {
	var t engine.Thresholds
	if len(c.Thresholds) == 0 {
		return t, fmt.Errorf("threshold config %d has no thresholds payload", c.ID)
	}
	if err := json.Unmarshal(c.Thresholds, &t); err != nil {
		return t, fmt.Errorf("threshold config %d: %w", c.ID, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("threshold config %d: %w", c.ID, err)
	}
	return t, nil
}

// EncodeThresholds validates and serializes a threshold set for storage.
func EncodeThresholds(t engine.Thresholds) (datatypes.JSON, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
