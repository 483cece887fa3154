package services

import (
	"context"
	"errors"
	"strings"

	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/models"
	"pulseboard/internal/store"
	"pulseboard/internal/types"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const ruleActivationLockPrefix = "pulseboard:lock:rule:"

// RuleService manages per-metric rule-version chains. Activation is
// serialized per metric key, so chains for different metrics never
// contend with each other.
type RuleService struct {
	db       *gorm.DB
	store    store.Store
	settings types.ConfigManager
}

// NewRuleService constructs a RuleService.
func NewRuleService(db *gorm.DB, store store.Store, settings types.ConfigManager) *RuleService {
	return &RuleService{db: db, store: store, settings: settings}
}

// RuleCreateParams captures a new rule version. Versions are assigned by
// the service; the new version always starts inactive.
type RuleCreateParams struct {
	MetricKey       string                  `json:"metric_key"`
	WindowSize      int                     `json:"window_size"`
	Thresholds      models.RuleThresholds   `json:"thresholds"`
	PowerMinPeriods int                     `json:"power_min_periods"`
	ZeroThreshold   float64                 `json:"zero_threshold"`
	Annotations     []models.RuleAnnotation `json:"annotations,omitempty"`
	CreatedBy       string                  `json:"created_by"`
}

// ListRuleVersions returns versions newest-first, optionally filtered to
// one metric key.
func (s *RuleService) ListRuleVersions(ctx context.Context, metricKey string) ([]models.BusinessRuleVersion, error) {
	query := s.db.WithContext(ctx).Order("metric_key ASC, version DESC")
	if metricKey != "" {
		query = query.Where("metric_key = ?", metricKey)
	}
	var rules []models.BusinessRuleVersion
	if err := query.Find(&rules).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return rules, nil
}

// GetRuleVersion loads one version by id.
func (s *RuleService) GetRuleVersion(ctx context.Context, id uint) (*models.BusinessRuleVersion, error) {
	var rule models.BusinessRuleVersion
	if err := s.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return &rule, nil
}

// GetActiveRuleForMetric returns the active version for a metric key, or
// nil when the metric has no rule.
func (s *RuleService) GetActiveRuleForMetric(ctx context.Context, metricKey string) (*models.BusinessRuleVersion, error) {
	var rule models.BusinessRuleVersion
	err := s.db.WithContext(ctx).
		Where("metric_key = ? AND is_active = ?", metricKey, true).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return &rule, nil
}

// CreateRuleVersion appends a new, inactive version to the metric's
// chain: version = highest existing + 1, previous_version_id pointing at
// the version it supersedes. Existing rows are never mutated.
func (s *RuleService) CreateRuleVersion(ctx context.Context, params RuleCreateParams) (*models.BusinessRuleVersion, error) {
	metricKey := strings.TrimSpace(params.MetricKey)
	if metricKey == "" {
		return nil, app_errors.NewValidationError("metric_key is required")
	}
	if params.WindowSize < 2 {
		return nil, app_errors.NewValidationError("window_size must be at least 2")
	}
	if params.PowerMinPeriods < 1 {
		return nil, app_errors.NewValidationError("power_min_periods must be at least 1")
	}
	if params.ZeroThreshold <= 0 {
		return nil, app_errors.NewValidationError("zero_threshold must be positive")
	}
	raw, err := models.EncodeRuleThresholds(params.Thresholds)
	if err != nil {
		return nil, app_errors.NewValidationError(err.Error())
	}
	annotations, err := models.EncodeAnnotations(params.Annotations)
	if err != nil {
		return nil, app_errors.NewValidationError(err.Error())
	}

	var rule models.BusinessRuleVersion
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest models.BusinessRuleVersion
		err := tx.Where("metric_key = ?", metricKey).
			Order("version DESC").
			First(&latest).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		rule = models.BusinessRuleVersion{
			MetricKey:       metricKey,
			Version:         latest.Version + 1,
			IsActive:        false,
			WindowSize:      params.WindowSize,
			Thresholds:      raw,
			PowerMinPeriods: params.PowerMinPeriods,
			ZeroThreshold:   params.ZeroThreshold,
			Annotations:     annotations,
			CreatedBy:       params.CreatedBy,
		}
		if latest.ID != 0 {
			prev := latest.ID
			rule.PreviousVersionID = &prev
		}
		return tx.Create(&rule).Error
	})
	if txErr != nil {
		return nil, app_errors.ParseDBError(txErr)
	}
	return &rule, nil
}

// ActivateRuleVersion deactivates every version sharing the target's
// metric key and activates the target, all in one transaction under the
// metric's activation lock.
func (s *RuleService) ActivateRuleVersion(ctx context.Context, id uint) (*models.BusinessRuleVersion, error) {
	rule, err := s.GetRuleVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	lockKey := ruleActivationLockPrefix + rule.MetricKey
	lockErr := withActivationLock(s.store, lockKey, func() error {
		return runWithTransientRetry(func() error {
			return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Model(&models.BusinessRuleVersion{}).
					Where("metric_key = ? AND is_active = ?", rule.MetricKey, true).
					Update("is_active", false).Error; err != nil {
					return err
				}
				if err := tx.Model(rule).Update("is_active", true).Error; err != nil {
					return err
				}
				rule.IsActive = true
				return nil
			})
		})
	})
	if lockErr != nil {
		var apiErr *app_errors.APIError
		if errors.As(lockErr, &apiErr) {
			return nil, apiErr
		}
		return nil, app_errors.ParseDBError(lockErr)
	}
	return rule, nil
}

// GetVersionHistory walks previous_version_id back from the given version
// and returns the chain newest-first. The walk is bounded by the
// configured hop limit and a visited set; the chain is operator data, so
// a malformed or cyclic chain must terminate rather than hang.
func (s *RuleService) GetVersionHistory(ctx context.Context, id uint) ([]models.BusinessRuleVersion, error) {
	current, err := s.GetRuleVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	maxHops := s.settings.GetEvaluationConfig().HistoryMaxHops
	chain := []models.BusinessRuleVersion{*current}
	visited := map[uint]bool{current.ID: true}

	for current.PreviousVersionID != nil {
		if len(chain) >= maxHops {
			logrus.WithFields(logrus.Fields{
				"rule_id":    id,
				"metric_key": current.MetricKey,
			}).Warn("Rule version history truncated at hop limit")
			break
		}
		prevID := *current.PreviousVersionID
		if visited[prevID] {
			logrus.WithFields(logrus.Fields{
				"rule_id": id,
				"prev_id": prevID,
			}).Warn("Cycle detected in rule version chain")
			break
		}

		var prev models.BusinessRuleVersion
		err := s.db.WithContext(ctx).First(&prev, prevID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Dangling back-reference; the chain ends here.
			break
		}
		if err != nil {
			return nil, app_errors.ParseDBError(err)
		}
		chain = append(chain, prev)
		visited[prev.ID] = true
		current = &prev
	}
	return chain, nil
}
