package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pulseboard/internal/models"
	"pulseboard/internal/services"
	"pulseboard/internal/store"
	"pulseboard/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testSettings struct {
	eval types.EvaluationConfig
}

func (s *testSettings) GetAuthConfig() types.AuthConfig              { return types.AuthConfig{Key: "test-key"} }
func (s *testSettings) GetCORSConfig() types.CORSConfig              { return types.CORSConfig{} }
func (s *testSettings) GetLogConfig() types.LogConfig                { return types.LogConfig{} }
func (s *testSettings) GetDatabaseConfig() types.DatabaseConfig      { return types.DatabaseConfig{} }
func (s *testSettings) GetRedisDSN() string                          { return "" }
func (s *testSettings) GetEffectiveServerConfig() types.ServerConfig { return types.ServerConfig{} }
func (s *testSettings) GetEvaluationConfig() types.EvaluationConfig  { return s.eval }
func (s *testSettings) Validate() error                              { return nil }
func (s *testSettings) DisplayServerConfig()                         {}

// setupTestServer builds a Server over a unique in-memory database with
// real services.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	testName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", testName, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: false,
		Logger:      logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.MetricReading{},
		&models.ThresholdConfig{},
		&models.BusinessRuleVersion{},
		&models.ConditionPlaybook{},
	))

	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })

	settings := &testSettings{eval: types.EvaluationConfig{
		DefaultWindowSize: 2,
		MaxSeriesPoints:   1000,
		HistoryMaxHops:    200,
	}}

	readings := services.NewReadingService(db)
	configs := services.NewConfigService(db, st)
	rules := services.NewRuleService(db, st, settings)
	playbooks := services.NewPlaybookService(db)
	eval := services.NewEvaluationService(readings, configs, rules, playbooks, settings)

	return NewServer(db, settings, readings, configs, rules, playbooks, eval)
}

// newTestRouter registers the API routes without middleware.
func newTestRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.GET("/health", s.Health)

	api := r.Group("/api")
	api.POST("/readings", s.CreateReadings)
	api.GET("/readings", s.ListReadings)
	api.GET("/configs", s.ListConfigs)
	api.GET("/configs/active", s.GetActiveConfig)
	api.POST("/configs", s.CreateConfig)
	api.PUT("/configs/:id", s.UpdateConfig)
	api.DELETE("/configs/:id", s.DeleteConfig)
	api.POST("/configs/:id/activate", s.ActivateConfig)
	api.GET("/rules", s.ListRules)
	api.POST("/rules", s.CreateRule)
	api.POST("/rules/:id/activate", s.ActivateRule)
	api.GET("/rules/:id/history", s.GetRuleHistory)
	api.GET("/playbooks", s.ListPlaybooks)
	api.PUT("/playbooks/:condition", s.UpsertPlaybook)
	api.GET("/evaluations/:resourceId/:metricKey", s.Evaluate)
	return r
}

type routerLike = http.Handler

func doJSON(t *testing.T, r routerLike, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope mirrors the standard response body.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func seedReadingsHTTP(t *testing.T, r routerLike, resourceID, metricKey string, values ...float64) {
	t.Helper()
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	batch := make([]map[string]any, len(values))
	for i, v := range values {
		batch[i] = map[string]any{
			"resource_id": resourceID,
			"metric_key":  metricKey,
			"value":       v,
			"timestamp":   base.AddDate(0, 0, 7*i).Format(time.RFC3339),
		}
	}
	w := doJSON(t, r, http.MethodPost, "/api/readings", map[string]any{"readings": batch})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
