package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evaluationBody struct {
	ResourceID string `json:"resource_id"`
	MetricKey  string `json:"metric_key"`
	Evaluation struct {
		Condition  string  `json:"condition"`
		Confidence float64 `json:"confidence"`
		WindowSize int     `json:"window_size"`
		Inclination struct {
			Value   float64 `json:"value"`
			IsValid bool    `json:"is_valid"`
		} `json:"inclination"`
	} `json:"evaluation"`
	Playbook *struct {
		Title string   `json:"title"`
		Steps []string `json:"steps"`
	} `json:"playbook"`
}

func TestEvaluateGrowthSeries(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))
	seedReadingsHTTP(t, r, "team-a", "revenue", 45, 48, 50, 52, 54, 56, 58, 60)

	w := doJSON(t, r, http.MethodGet, "/api/evaluations/team-a/revenue", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body evaluationBody
	decodeData(t, w, &body)
	assert.Equal(t, "PODER", body.Evaluation.Condition)
	assert.Equal(t, 2, body.Evaluation.WindowSize)
	assert.Nil(t, body.Playbook)
}

func TestEvaluateDeclineWithPlaybookAndOverride(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))
	seedReadingsHTTP(t, r, "team-a", "revenue", 85, 80, 72, 65, 58, 50, 42, 35)

	w := doJSON(t, r, http.MethodPut, "/api/playbooks/PELIGRO", map[string]any{
		"title": "Severe decline response",
		"steps": []string{"notify owner"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/evaluations/team-a/revenue", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body evaluationBody
	decodeData(t, w, &body)
	assert.Equal(t, "PELIGRO", body.Evaluation.Condition)
	assert.InDelta(t, -16.67, body.Evaluation.Inclination.Value, 0.01)
	require.NotNil(t, body.Playbook)
	assert.Equal(t, "Severe decline response", body.Playbook.Title)

	// A wider window still lands in a decline band.
	w = doJSON(t, r, http.MethodGet, "/api/evaluations/team-a/revenue?window_size=8", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &body)
	assert.Equal(t, 8, body.Evaluation.WindowSize)
}

func TestEvaluateUnknownSeriesIsNotFound(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))

	w := doJSON(t, r, http.MethodGet, "/api/evaluations/ghost/revenue", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluateRejectsBadWindowSize(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))
	seedReadingsHTTP(t, r, "team-a", "revenue", 10, 20)

	w := doJSON(t, r, http.MethodGet, "/api/evaluations/team-a/revenue?window_size=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/evaluations/team-a/revenue?window_size=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaybookUpsertRejectsUnknownCondition(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))

	w := doJSON(t, r, http.MethodPut, "/api/playbooks/WHATEVER", map[string]any{
		"title": "x",
		"steps": []string{"y"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPlaybooks(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))

	w := doJSON(t, r, http.MethodPut, "/api/playbooks/NORMAL", map[string]any{
		"title": "Steady state",
		"steps": []string{"keep monitoring"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/playbooks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var playbooks []struct {
		Condition string `json:"condition"`
	}
	decodeData(t, w, &playbooks)
	require.Len(t, playbooks, 1)
	assert.Equal(t, "NORMAL", playbooks[0].Condition)
}
