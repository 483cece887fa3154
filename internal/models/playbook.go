package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ConditionPlaybook corresponds to the condition_playbooks table. One row
// per condition key, holding the ordered operator steps for that state.
// Upserts increment the version unless the caller pins one explicitly.
type ConditionPlaybook struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Condition string         `gorm:"type:varchar(50);not null;unique" json:"condition"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Steps     datatypes.JSON `gorm:"type:json;not null" json:"steps"`
	Version   int            `gorm:"not null;default:1" json:"version"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (ConditionPlaybook) TableName() string {
	return "condition_playbooks"
}

// DecodeSteps parses the stored step list.
func (p *ConditionPlaybook) DecodeSteps() ([]string, error) {
	var steps []string
	if len(p.Steps) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(p.Steps, &steps); err != nil {
		return nil, fmt.Errorf("playbook %d steps: %w", p.ID, err)
	}
	return steps, nil
}

// EncodeSteps serializes a step list for storage.
func EncodeSteps(steps []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
