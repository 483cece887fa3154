package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "./data/test.db")

	m, err := NewManager()
	require.NoError(t, err)

	server := m.GetEffectiveServerConfig()
	assert.Equal(t, 3001, server.Port)
	assert.Equal(t, "0.0.0.0", server.Host)

	eval := m.GetEvaluationConfig()
	assert.Equal(t, 2, eval.DefaultWindowSize)
	assert.Equal(t, 1000, eval.MaxSeriesPoints)
	assert.Equal(t, 200, eval.HistoryMaxHops)

	assert.True(t, m.GetCORSConfig().Enabled)
	assert.Empty(t, m.GetRedisDSN())
}

func TestNewManagerEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "./data/test.db")
	t.Setenv("PORT", "8080")
	t.Setenv("EVALUATION_DEFAULT_WINDOW_SIZE", "4")
	t.Setenv("AUTH_KEY", "sekret")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, 8080, m.GetEffectiveServerConfig().Port)
	assert.Equal(t, 4, m.GetEvaluationConfig().DefaultWindowSize)
	assert.Equal(t, "sekret", m.GetAuthConfig().Key)
}

func TestNewManagerRejectsBadValues(t *testing.T) {
	t.Setenv("DATABASE_DSN", "./data/test.db")
	t.Setenv("PORT", "99999")

	_, err := NewManager()
	assert.Error(t, err)
}

func TestNewManagerRejectsSmallWindow(t *testing.T) {
	t.Setenv("DATABASE_DSN", "./data/test.db")
	t.Setenv("EVALUATION_DEFAULT_WINDOW_SIZE", "1")

	_, err := NewManager()
	assert.Error(t, err)
}
