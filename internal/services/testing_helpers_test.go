package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"pulseboard/internal/models"
	"pulseboard/internal/store"
	"pulseboard/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubSettings satisfies types.ConfigManager with fixed evaluation
// tunables; the other sections are irrelevant to service tests.
type stubSettings struct {
	eval types.EvaluationConfig
}

func newStubSettings() *stubSettings {
	return &stubSettings{
		eval: types.EvaluationConfig{
			DefaultWindowSize: 2,
			MaxSeriesPoints:   1000,
			HistoryMaxHops:    200,
		},
	}
}

func (s *stubSettings) GetAuthConfig() types.AuthConfig               { return types.AuthConfig{} }
func (s *stubSettings) GetCORSConfig() types.CORSConfig               { return types.CORSConfig{} }
func (s *stubSettings) GetLogConfig() types.LogConfig                 { return types.LogConfig{} }
func (s *stubSettings) GetDatabaseConfig() types.DatabaseConfig       { return types.DatabaseConfig{} }
func (s *stubSettings) GetRedisDSN() string                           { return "" }
func (s *stubSettings) GetEffectiveServerConfig() types.ServerConfig  { return types.ServerConfig{} }
func (s *stubSettings) GetEvaluationConfig() types.EvaluationConfig   { return s.eval }
func (s *stubSettings) Validate() error                               { return nil }
func (s *stubSettings) DisplayServerConfig()                          {}

// setupTestDB creates a unique in-memory database per test with all
// domain tables migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", testName, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: false,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	err = db.AutoMigrate(
		&models.MetricReading{},
		&models.ThresholdConfig{},
		&models.BusinessRuleVersion{},
		&models.ConditionPlaybook{},
	)
	require.NoError(t, err)
	return db
}

func setupTestStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	return s
}
