package services

import (
	"context"
	"errors"
	"strings"

	"pulseboard/internal/engine"
	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/models"

	"gorm.io/gorm"
)

// PlaybookService manages the per-condition operator playbooks.
type PlaybookService struct {
	db *gorm.DB
}

// NewPlaybookService constructs a PlaybookService.
func NewPlaybookService(db *gorm.DB) *PlaybookService {
	return &PlaybookService{db: db}
}

// PlaybookUpsertParams captures a playbook payload. Version is optional;
// when omitted an update increments the stored version and a create
// starts at 1.
type PlaybookUpsertParams struct {
	Title    string   `json:"title"`
	Steps    []string `json:"steps"`
	Version  *int     `json:"version,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// ListPlaybooks returns all playbooks ordered by condition.
func (s *PlaybookService) ListPlaybooks(ctx context.Context) ([]models.ConditionPlaybook, error) {
	var playbooks []models.ConditionPlaybook
	if err := s.db.WithContext(ctx).Order("condition ASC").Find(&playbooks).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return playbooks, nil
}

// UpsertPlaybook creates or replaces the playbook for a condition. There
// is exactly one row per condition key.
func (s *PlaybookService) UpsertPlaybook(ctx context.Context, condition string, params PlaybookUpsertParams) (*models.ConditionPlaybook, error) {
	cond, ok := engine.ParseCondition(strings.ToUpper(strings.TrimSpace(condition)))
	if !ok {
		return nil, app_errors.NewValidationError("unknown condition: " + condition)
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, app_errors.NewValidationError("title is required")
	}
	if len(params.Steps) == 0 {
		return nil, app_errors.NewValidationError("at least one step is required")
	}
	raw, err := models.EncodeSteps(params.Steps)
	if err != nil {
		return nil, app_errors.NewValidationError(err.Error())
	}

	var playbook models.ConditionPlaybook
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("condition = ?", string(cond)).First(&playbook).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			playbook = models.ConditionPlaybook{
				Condition: string(cond),
				Title:     strings.TrimSpace(params.Title),
				Steps:     raw,
				Version:   1,
				IsActive:  true,
			}
			if params.Version != nil {
				playbook.Version = *params.Version
			}
			if params.IsActive != nil {
				playbook.IsActive = *params.IsActive
			}
			return tx.Create(&playbook).Error
		case err != nil:
			return err
		}

		playbook.Title = strings.TrimSpace(params.Title)
		playbook.Steps = raw
		if params.Version != nil {
			playbook.Version = *params.Version
		} else {
			playbook.Version++
		}
		if params.IsActive != nil {
			playbook.IsActive = *params.IsActive
		}
		return tx.Save(&playbook).Error
	})
	if txErr != nil {
		return nil, app_errors.ParseDBError(txErr)
	}
	return &playbook, nil
}

// FindByCondition returns the active playbook for a condition, or nil
// when none is configured.
func (s *PlaybookService) FindByCondition(ctx context.Context, condition engine.Condition) (*models.ConditionPlaybook, error) {
	var playbook models.ConditionPlaybook
	err := s.db.WithContext(ctx).
		Where("condition = ? AND is_active = ?", string(condition), true).
		First(&playbook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return &playbook, nil
}
