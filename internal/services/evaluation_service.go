package services

import (
	"context"
	"time"

	"pulseboard/internal/engine"
	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/models"
	"pulseboard/internal/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Evaluation is the classifier output enriched with the context it was
// produced under.
type Evaluation struct {
	Inclination  engine.Inclination `json:"inclination"`
	Direction    engine.Direction   `json:"direction"`
	Condition    engine.Condition   `json:"condition"`
	Reason       string             `json:"reason"`
	Signals      []engine.Signal    `json:"signals"`
	Confidence   float64            `json:"confidence"`
	WindowSize   int                `json:"window_size"`
	DeclineGrade string             `json:"decline_grade,omitempty"`
	Annotations  []string           `json:"annotations,omitempty"`
	EvaluatedAt  time.Time          `json:"evaluated_at"`
}

// AppliedRuleRef identifies the rule version an evaluation used.
type AppliedRuleRef struct {
	ID      uint `json:"id"`
	Version int  `json:"version"`
}

// AppliedConfigRef identifies the threshold config an evaluation used.
type AppliedConfigRef struct {
	ID      uint `json:"id"`
	Version int  `json:"version"`
}

// PlaybookView is the playbook slice of an evaluation response.
type PlaybookView struct {
	Condition string   `json:"condition"`
	Title     string   `json:"title"`
	Steps     []string `json:"steps"`
	Version   int      `json:"version"`
}

// EvaluationResult is computed per request and never persisted. The ID
// exists only for log correlation.
type EvaluationResult struct {
	ID            string           `json:"id"`
	ResourceID    string           `json:"resource_id"`
	MetricKey     string           `json:"metric_key"`
	Series        []engine.Point   `json:"series"`
	Evaluation    Evaluation       `json:"evaluation"`
	AppliedConfig AppliedConfigRef `json:"applied_config"`
	AppliedRule   *AppliedRuleRef  `json:"applied_rule,omitempty"`
	Playbook      *PlaybookView    `json:"playbook,omitempty"`
}

// EvaluationService orchestrates one evaluation: series load, threshold
// resolution (active config overlaid by the metric's active rule, if
// any), classification, annotation matching and playbook lookup. It is
// read-only apart from the one-time default-config bootstrap inside
// ConfigService.
type EvaluationService struct {
	readings  *ReadingService
	configs   *ConfigService
	rules     *RuleService
	playbooks *PlaybookService
	settings  types.ConfigManager
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(
	readings *ReadingService,
	configs *ConfigService,
	rules *RuleService,
	playbooks *PlaybookService,
	settings types.ConfigManager,
) *EvaluationService {
	return &EvaluationService{
		readings:  readings,
		configs:   configs,
		rules:     rules,
		playbooks: playbooks,
		settings:  settings,
	}
}

// Evaluate classifies the series for one resource/metric pair. The
// effective window size resolves as explicit override, then the active
// rule's window, then the configured default. Fails NotFound when no
// readings exist.
func (s *EvaluationService) Evaluate(ctx context.Context, resourceID, metricKey string, windowOverride *int) (*EvaluationResult, error) {
	evalCfg := s.settings.GetEvaluationConfig()

	series, err := s.readings.GetSeries(ctx, resourceID, metricKey, evalCfg.MaxSeriesPoints)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, app_errors.NewNotFoundError("no readings for resource " + resourceID + " metric " + metricKey)
	}

	activeConfig, err := s.configs.GetActiveConfig(ctx)
	if err != nil {
		return nil, err
	}
	thresholds, err := activeConfig.DecodeThresholds()
	if err != nil {
		return nil, app_errors.NewConfigurationError(err.Error())
	}

	rule, err := s.rules.GetActiveRuleForMetric(ctx, metricKey)
	if err != nil {
		return nil, err
	}

	var ruleBands *models.RuleThresholds
	if rule != nil {
		overlaid, err := rule.ApplyToThresholds(thresholds)
		if err != nil {
			return nil, app_errors.NewConfigurationError(err.Error())
		}
		thresholds = overlaid
		rt, err := rule.DecodeRuleThresholds()
		if err != nil {
			return nil, app_errors.NewConfigurationError(err.Error())
		}
		ruleBands = &rt
	}

	windowSize := evalCfg.DefaultWindowSize
	if rule != nil && rule.WindowSize >= 2 {
		windowSize = rule.WindowSize
	}
	if windowOverride != nil {
		if *windowOverride < 2 {
			return nil, app_errors.NewValidationError("window_size must be at least 2")
		}
		windowSize = *windowOverride
	}

	classifier, err := engine.NewClassifier(thresholds)
	if err != nil {
		return nil, app_errors.NewConfigurationError(err.Error())
	}
	classification := classifier.Classify(series, windowSize)

	evaluation := Evaluation{
		Inclination: classification.Inclination,
		Direction:   classification.Direction,
		Condition:   classification.Condition,
		Reason:      classification.Rationale,
		Signals:     classification.Signals,
		Confidence:  classification.Confidence,
		WindowSize:  windowSize,
		EvaluatedAt: time.Now().UTC(),
	}
	if ruleBands != nil && classification.Condition == engine.ConditionPeligro {
		evaluation.DeclineGrade = declineGrade(classification.Inclination.Value, ruleBands)
	}

	result := &EvaluationResult{
		ID:            uuid.NewString(),
		ResourceID:    resourceID,
		MetricKey:     metricKey,
		Series:        series,
		Evaluation:    evaluation,
		AppliedConfig: AppliedConfigRef{ID: activeConfig.ID, Version: activeConfig.Version},
	}

	if rule != nil {
		result.AppliedRule = &AppliedRuleRef{ID: rule.ID, Version: rule.Version}
		annotations, err := rule.DecodeAnnotations()
		if err != nil {
			return nil, app_errors.NewConfigurationError(err.Error())
		}
		result.Evaluation.Annotations = matchAnnotations(annotations, result)
	}

	playbook, err := s.playbooks.FindByCondition(ctx, classification.Condition)
	if err != nil {
		return nil, err
	}
	if playbook != nil {
		steps, err := playbook.DecodeSteps()
		if err != nil {
			return nil, app_errors.NewConfigurationError(err.Error())
		}
		result.Playbook = &PlaybookView{
			Condition: playbook.Condition,
			Title:     playbook.Title,
			Steps:     steps,
			Version:   playbook.Version,
		}
	}

	logrus.WithFields(logrus.Fields{
		"evaluation":  result.ID,
		"resource_id": resourceID,
		"metric_key":  metricKey,
		"condition":   classification.Condition,
		"inclination": classification.Inclination.Value,
		"window_size": windowSize,
	}).Debug("Evaluation completed")
	return result, nil
}

// declineGrade names the depth of a peligro-band decline using the
// rule's intermediate negative bands.
func declineGrade(inclination float64, rt *models.RuleThresholds) string {
	switch {
	case inclination < rt.SevereNegative:
		return "severe"
	case inclination < rt.ModerateNegative:
		return "moderate"
	default:
		return "mild"
	}
}

// matchAnnotations evaluates each annotation's expressions against the
// evaluation fields and returns the tags that matched.
func matchAnnotations(anns []models.RuleAnnotation, result *EvaluationResult) []string {
	if len(anns) == 0 {
		return nil
	}

	fields := map[string]any{
		"inclination":  result.Evaluation.Inclination.Value,
		"confidence":   result.Evaluation.Confidence,
		"condition":    string(result.Evaluation.Condition),
		"direction":    string(result.Evaluation.Direction),
		"latest_value": result.Series[len(result.Series)-1].Value,
		"points":       len(result.Series),
	}

	var tags []string
	for i := range anns {
		if engine.EvaluateAll(anns[i].Expressions, fields) {
			tags = append(tags, anns[i].Tag)
		}
	}
	return tags
}
