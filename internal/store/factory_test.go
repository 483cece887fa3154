package store

import (
	"testing"

	"pulseboard/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type factorySettings struct {
	redisDSN string
}

func (s factorySettings) GetAuthConfig() types.AuthConfig              { return types.AuthConfig{} }
func (s factorySettings) GetCORSConfig() types.CORSConfig              { return types.CORSConfig{} }
func (s factorySettings) GetLogConfig() types.LogConfig                { return types.LogConfig{} }
func (s factorySettings) GetDatabaseConfig() types.DatabaseConfig      { return types.DatabaseConfig{} }
func (s factorySettings) GetRedisDSN() string                          { return s.redisDSN }
func (s factorySettings) GetEffectiveServerConfig() types.ServerConfig { return types.ServerConfig{} }
func (s factorySettings) GetEvaluationConfig() types.EvaluationConfig  { return types.EvaluationConfig{} }
func (s factorySettings) Validate() error                              { return nil }
func (s factorySettings) DisplayServerConfig()                         {}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	s, err := NewStore(factorySettings{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.(*MemoryStore)
	assert.True(t, ok)
}

func TestNewStoreRejectsUnreachableRedis(t *testing.T) {
	_, err := NewStore(factorySettings{redisDSN: "redis://127.0.0.1:1/0"})
	assert.Error(t, err)
}
