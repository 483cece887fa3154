package handler

import (
	"fmt"
	"net/http"
	"testing"

	"pulseboard/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLifecycle(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))

	w := doJSON(t, r, http.MethodPost, "/api/configs", map[string]any{
		"name":       "baseline",
		"thresholds": engine.DefaultThresholds(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		ID       uint `json:"id"`
		Version  int  `json:"version"`
		IsActive bool `json:"is_active"`
	}
	decodeData(t, w, &created)
	assert.False(t, created.IsActive)
	assert.Equal(t, 1, created.Version)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/configs/%d/activate", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/configs/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, w, &active)
	assert.Equal(t, created.ID, active.ID)
	assert.Equal(t, "baseline", active.Name)

	// Deleting the active config is a conflict.
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/configs/%d", created.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestActivateConfigNotFound(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))

	w := doJSON(t, r, http.MethodPost, "/api/configs/999/activate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/configs/abc/activate", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetActiveConfigBootstraps(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))

	w := doJSON(t, r, http.MethodGet, "/api/configs/active", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var active struct {
		Name     string `json:"name"`
		IsActive bool   `json:"is_active"`
	}
	decodeData(t, w, &active)
	assert.Equal(t, "default", active.Name)
	assert.True(t, active.IsActive)
}

func TestUpdateConfigBumpsVersion(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))

	w := doJSON(t, r, http.MethodPost, "/api/configs", map[string]any{
		"name":       "tuned",
		"thresholds": engine.DefaultThresholds(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	decodeData(t, w, &created)

	next := engine.DefaultThresholds()
	next.Afluencia.MinInclination = 15.0
	next.Normal.MaxInclination = 15.0
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/configs/%d", created.ID), map[string]any{
		"thresholds": next,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Version int `json:"version"`
	}
	decodeData(t, w, &updated)
	assert.Equal(t, 2, updated.Version)
}

func TestCreateConfigRejectsBrokenThresholds(t *testing.T) {
	t.Parallel()
	r := newTestRouter(setupTestServer(t))

	bad := engine.DefaultThresholds()
	bad.Poder = nil
	w := doJSON(t, r, http.MethodPost, "/api/configs", map[string]any{
		"name":       "broken",
		"thresholds": bad,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
