// Package services contains the business logic layer: readings, threshold
// configurations, rule-version chains, playbooks and evaluation.
package services

import (
	"context"
	"strings"
	"time"

	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/engine"
	"pulseboard/internal/models"

	"gorm.io/gorm"
)

// ReadingService handles ingestion and retrieval of metric readings.
type ReadingService struct {
	db *gorm.DB
}

// NewReadingService constructs a ReadingService.
func NewReadingService(db *gorm.DB) *ReadingService {
	return &ReadingService{db: db}
}

// ReadingCreateParams captures one observation to ingest.
type ReadingCreateParams struct {
	ResourceID string    `json:"resource_id"`
	MetricKey  string    `json:"metric_key"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

func (p *ReadingCreateParams) validate() *app_errors.APIError {
	if strings.TrimSpace(p.ResourceID) == "" {
		return app_errors.NewValidationError("resource_id is required")
	}
	if strings.TrimSpace(p.MetricKey) == "" {
		return app_errors.NewValidationError("metric_key is required")
	}
	if p.Timestamp.IsZero() {
		return app_errors.NewValidationError("timestamp is required")
	}
	return nil
}

// CreateReading persists a single observation.
func (s *ReadingService) CreateReading(ctx context.Context, params ReadingCreateParams) (*models.MetricReading, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	reading := models.MetricReading{
		ResourceID: strings.TrimSpace(params.ResourceID),
		MetricKey:  strings.TrimSpace(params.MetricKey),
		Value:      params.Value,
		Timestamp:  params.Timestamp.UTC(),
		Source:     strings.TrimSpace(params.Source),
	}
	if err := s.db.WithContext(ctx).Create(&reading).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return &reading, nil
}

// CreateReadings persists a batch of observations in one transaction.
// The batch is all-or-nothing: one invalid entry rejects the whole call.
func (s *ReadingService) CreateReadings(ctx context.Context, batch []ReadingCreateParams) ([]models.MetricReading, error) {
	if len(batch) == 0 {
		return nil, app_errors.NewValidationError("at least one reading is required")
	}

	readings := make([]models.MetricReading, 0, len(batch))
	for i := range batch {
		if err := batch[i].validate(); err != nil {
			return nil, err
		}
		readings = append(readings, models.MetricReading{
			ResourceID: strings.TrimSpace(batch[i].ResourceID),
			MetricKey:  strings.TrimSpace(batch[i].MetricKey),
			Value:      batch[i].Value,
			Timestamp:  batch[i].Timestamp.UTC(),
			Source:     strings.TrimSpace(batch[i].Source),
		})
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(readings, 500).Error
	}); err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return readings, nil
}

// GetSeries loads the time-ascending series for one resource/metric pair,
// capped at maxPoints most recent readings. An empty result is returned
// as-is; callers decide whether that is an error.
func (s *ReadingService) GetSeries(ctx context.Context, resourceID, metricKey string, maxPoints int) ([]engine.Point, error) {
	var readings []models.MetricReading
	query := s.db.WithContext(ctx).
		Where("resource_id = ? AND metric_key = ?", resourceID, metricKey).
		Order("timestamp DESC")
	if maxPoints > 0 {
		query = query.Limit(maxPoints)
	}
	if err := query.Find(&readings).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}

	// Query is newest-first for the LIMIT; flip back to chronological.
	points := make([]engine.Point, len(readings))
	for i := range readings {
		r := readings[len(readings)-1-i]
		points[i] = engine.Point{Timestamp: r.Timestamp, Value: r.Value}
	}
	return points, nil
}
