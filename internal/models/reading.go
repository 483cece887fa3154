// Package models defines the persistence layer: metric readings, threshold
// configurations, per-metric rule versions and condition playbooks.
package models

import "time"

// MetricReading corresponds to the metric_readings table. One row per
// observation of a metric on a resource; evaluation reads these back in
// timestamp order.
type MetricReading struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ResourceID string    `gorm:"type:varchar(255);not null;index:idx_resource_metric_ts,priority:1" json:"resource_id"`
	MetricKey  string    `gorm:"type:varchar(255);not null;index:idx_resource_metric_ts,priority:2" json:"metric_key"`
	Value      float64   `gorm:"not null" json:"value"`
	Timestamp  time.Time `gorm:"not null;index:idx_resource_metric_ts,priority:3" json:"timestamp"`
	Source     string    `gorm:"type:varchar(255)" json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MetricReading) TableName() string {
	return "metric_readings"
}
