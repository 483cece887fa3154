package services

import (
	"context"
	"testing"

	"pulseboard/internal/engine"
	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRuleService(t *testing.T) *RuleService {
	t.Helper()
	return NewRuleService(setupTestDB(t), setupTestStore(t), newStubSettings())
}

func testRuleParams(metricKey string) RuleCreateParams {
	return RuleCreateParams{
		MetricKey:       metricKey,
		WindowSize:      2,
		Thresholds:      models.DefaultRuleThresholds(),
		PowerMinPeriods: 3,
		ZeroThreshold:   1.0,
	}
}

func TestCreateRuleVersionIncrementsPerMetric(t *testing.T) {
	t.Parallel()
	svc := setupRuleService(t)

	v1, err := svc.CreateRuleVersion(context.Background(), testRuleParams("revenue"))
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.False(t, v1.IsActive)
	assert.Nil(t, v1.PreviousVersionID)

	v2, err := svc.CreateRuleVersion(context.Background(), testRuleParams("revenue"))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	require.NotNil(t, v2.PreviousVersionID)
	assert.Equal(t, v1.ID, *v2.PreviousVersionID)

	// A different metric key starts its own chain at version 1.
	other, err := svc.CreateRuleVersion(context.Background(), testRuleParams("churn"))
	require.NoError(t, err)
	assert.Equal(t, 1, other.Version)
	assert.Nil(t, other.PreviousVersionID)
}

func TestCreateRuleVersionValidation(t *testing.T) {
	t.Parallel()
	svc := setupRuleService(t)

	params := testRuleParams("")
	_, err := svc.CreateRuleVersion(context.Background(), params)
	require.Error(t, err)

	params = testRuleParams("revenue")
	params.WindowSize = 1
	_, err = svc.CreateRuleVersion(context.Background(), params)
	require.Error(t, err)

	params = testRuleParams("revenue")
	params.Thresholds.Stable = 50 // above STEEP_POSITIVE, breaks ordering
	_, err = svc.CreateRuleVersion(context.Background(), params)
	require.Error(t, err)

	params = testRuleParams("revenue")
	params.ZeroThreshold = 0
	_, err = svc.CreateRuleVersion(context.Background(), params)
	require.Error(t, err)
}

func TestActivateRuleVersionSingleActivePerMetric(t *testing.T) {
	t.Parallel()
	svc := setupRuleService(t)

	v1, err := svc.CreateRuleVersion(context.Background(), testRuleParams("revenue"))
	require.NoError(t, err)
	v2, err := svc.CreateRuleVersion(context.Background(), testRuleParams("revenue"))
	require.NoError(t, err)
	other, err := svc.CreateRuleVersion(context.Background(), testRuleParams("churn"))
	require.NoError(t, err)

	_, err = svc.ActivateRuleVersion(context.Background(), v1.ID)
	require.NoError(t, err)
	_, err = svc.ActivateRuleVersion(context.Background(), other.ID)
	require.NoError(t, err)
	_, err = svc.ActivateRuleVersion(context.Background(), v2.ID)
	require.NoError(t, err)

	active, err := svc.GetActiveRuleForMetric(context.Background(), "revenue")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, v2.ID, active.ID)

	// Activating revenue's chain left churn's active version untouched.
	churnActive, err := svc.GetActiveRuleForMetric(context.Background(), "churn")
	require.NoError(t, err)
	require.NotNil(t, churnActive)
	assert.Equal(t, other.ID, churnActive.ID)
}

func TestGetActiveRuleForMetricNilWhenAbsent(t *testing.T) {
	t.Parallel()
	svc := setupRuleService(t)

	rule, err := svc.GetActiveRuleForMetric(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestActivateRuleVersionUnknownID(t *testing.T) {
	t.Parallel()
	svc := setupRuleService(t)

	_, err := svc.ActivateRuleVersion(context.Background(), 12345)
	require.Error(t, err)
	var apiErr *app_errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.HTTPStatus)
}

func TestGetVersionHistoryWalksChainNewestFirst(t *testing.T) {
	t.Parallel()
	svc := setupRuleService(t)

	var last *models.BusinessRuleVersion
	for i := 0; i < 4; i++ {
		v, err := svc.CreateRuleVersion(context.Background(), testRuleParams("revenue"))
		require.NoError(t, err)
		last = v
	}

	chain, err := svc.GetVersionHistory(context.Background(), last.ID)
	require.NoError(t, err)
	require.Len(t, chain, 4)
	for i, v := range chain {
		assert.Equal(t, 4-i, v.Version)
	}
}

func TestGetVersionHistoryTerminatesOnCycle(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewRuleService(db, setupTestStore(t), newStubSettings())

	v1, err := svc.CreateRuleVersion(context.Background(), testRuleParams("revenue"))
	require.NoError(t, err)
	v2, err := svc.CreateRuleVersion(context.Background(), testRuleParams("revenue"))
	require.NoError(t, err)

	// Corrupt the chain into a cycle directly, bypassing the service.
	require.NoError(t, db.Model(&models.BusinessRuleVersion{}).
		Where("id = ?", v1.ID).
		Update("previous_version_id", v2.ID).Error)

	chain, err := svc.GetVersionHistory(context.Background(), v2.ID)
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}

func TestGetVersionHistoryRespectsHopLimit(t *testing.T) {
	t.Parallel()
	settings := newStubSettings()
	settings.eval.HistoryMaxHops = 3
	svc := NewRuleService(setupTestDB(t), setupTestStore(t), settings)

	var last *models.BusinessRuleVersion
	for i := 0; i < 5; i++ {
		v, err := svc.CreateRuleVersion(context.Background(), testRuleParams("revenue"))
		require.NoError(t, err)
		last = v
	}

	chain, err := svc.GetVersionHistory(context.Background(), last.ID)
	require.NoError(t, err)
	assert.Len(t, chain, 3)
}

func TestCreateRuleVersionStoresAnnotations(t *testing.T) {
	t.Parallel()
	svc := setupRuleService(t)

	params := testRuleParams("revenue")
	params.Annotations = []models.RuleAnnotation{
		{
			Tag: "steep-loss",
			Expressions: []engine.Expression{
				{Field: "inclination", Operator: engine.OperatorLessThan, Value: -10},
			},
		},
	}

	rule, err := svc.CreateRuleVersion(context.Background(), params)
	require.NoError(t, err)

	anns, err := rule.DecodeAnnotations()
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Equal(t, "steep-loss", anns[0].Tag)

	params.Annotations[0].Expressions[0].Field = ""
	_, err = svc.CreateRuleVersion(context.Background(), params)
	require.Error(t, err)
}
