// Package config provides environment-driven configuration management.
package config

import (
	"fmt"

	"pulseboard/internal/types"
	"pulseboard/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Manager implements types.ConfigManager backed by environment variables.
type Manager struct {
	server     types.ServerConfig
	auth       types.AuthConfig
	cors       types.CORSConfig
	log        types.LogConfig
	database   types.DatabaseConfig
	redisDSN   string
	evaluation types.EvaluationConfig
}

// NewManager loads configuration from the environment (and .env if present).
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}

	m := &Manager{
		server: types.ServerConfig{
			Port:                    utils.ParseInteger(utils.GetEnvOrDefault("PORT", "3001"), 3001),
			Host:                    utils.GetEnvOrDefault("HOST", "0.0.0.0"),
			ReadTimeout:             utils.ParseInteger(utils.GetEnvOrDefault("SERVER_READ_TIMEOUT", "60"), 60),
			WriteTimeout:            utils.ParseInteger(utils.GetEnvOrDefault("SERVER_WRITE_TIMEOUT", "60"), 60),
			IdleTimeout:             utils.ParseInteger(utils.GetEnvOrDefault("SERVER_IDLE_TIMEOUT", "120"), 120),
			GracefulShutdownTimeout: utils.ParseInteger(utils.GetEnvOrDefault("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", "10"), 10),
		},
		auth: types.AuthConfig{
			Key: utils.GetEnvOrDefault("AUTH_KEY", ""),
		},
		cors: types.CORSConfig{
			Enabled:          utils.ParseBoolean(utils.GetEnvOrDefault("ENABLE_CORS", "true"), true),
			AllowedOrigins:   utils.SplitAndTrim(utils.GetEnvOrDefault("ALLOWED_ORIGINS", "*"), ","),
			AllowedMethods:   utils.SplitAndTrim(utils.GetEnvOrDefault("ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"), ","),
			AllowedHeaders:   utils.SplitAndTrim(utils.GetEnvOrDefault("ALLOWED_HEADERS", "Content-Type,Authorization"), ","),
			AllowCredentials: utils.ParseBoolean(utils.GetEnvOrDefault("ALLOW_CREDENTIALS", "false"), false),
		},
		log: types.LogConfig{
			Level:      utils.GetEnvOrDefault("LOG_LEVEL", "info"),
			Format:     utils.GetEnvOrDefault("LOG_FORMAT", "text"),
			EnableFile: utils.ParseBoolean(utils.GetEnvOrDefault("LOG_ENABLE_FILE", "false"), false),
			FilePath:   utils.GetEnvOrDefault("LOG_FILE_PATH", "./data/logs/app.log"),
		},
		database: types.DatabaseConfig{
			DSN: utils.GetEnvOrDefault("DATABASE_DSN", "./data/pulseboard.db"),
		},
		redisDSN: utils.GetEnvOrDefault("REDIS_DSN", ""),
		evaluation: types.EvaluationConfig{
			DefaultWindowSize: utils.ParseInteger(utils.GetEnvOrDefault("EVALUATION_DEFAULT_WINDOW_SIZE", "2"), 2),
			MaxSeriesPoints:   utils.ParseInteger(utils.GetEnvOrDefault("EVALUATION_MAX_SERIES_POINTS", "1000"), 1000),
			HistoryMaxHops:    utils.ParseInteger(utils.GetEnvOrDefault("RULE_HISTORY_MAX_HOPS", "200"), 200),
		},
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetAuthConfig returns authentication configuration.
func (m *Manager) GetAuthConfig() types.AuthConfig { return m.auth }

// GetCORSConfig returns CORS configuration.
func (m *Manager) GetCORSConfig() types.CORSConfig { return m.cors }

// GetLogConfig returns logging configuration.
func (m *Manager) GetLogConfig() types.LogConfig { return m.log }

// GetDatabaseConfig returns database configuration.
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig { return m.database }

// GetRedisDSN returns the Redis DSN, empty when running on the memory store.
func (m *Manager) GetRedisDSN() string { return m.redisDSN }

// GetEffectiveServerConfig returns the server configuration.
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig { return m.server }

// GetEvaluationConfig returns evaluation pipeline tunables.
func (m *Manager) GetEvaluationConfig() types.EvaluationConfig { return m.evaluation }

// Validate checks configuration consistency at startup.
func (m *Manager) Validate() error {
	if m.server.Port < 1 || m.server.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", m.server.Port)
	}
	if m.database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN must not be empty")
	}
	if m.evaluation.DefaultWindowSize < 2 {
		return fmt.Errorf("EVALUATION_DEFAULT_WINDOW_SIZE must be at least 2, got %d", m.evaluation.DefaultWindowSize)
	}
	if m.evaluation.HistoryMaxHops < 1 {
		return fmt.Errorf("RULE_HISTORY_MAX_HOPS must be positive, got %d", m.evaluation.HistoryMaxHops)
	}
	return nil
}

// DisplayServerConfig logs the effective configuration at startup.
func (m *Manager) DisplayServerConfig() {
	logrus.Info("=== Server Configuration ===")
	logrus.Infof("Listen: %s:%d", m.server.Host, m.server.Port)
	logrus.Infof("Database: %s", m.database.DSN)
	if m.redisDSN != "" {
		logrus.Info("Store: redis")
	} else {
		logrus.Info("Store: memory")
	}
	logrus.Infof("Auth: %v", m.auth.Key != "")
	logrus.Infof("CORS: %v", m.cors.Enabled)
	logrus.Infof("Log level: %s", m.log.Level)
	logrus.Infof("Default evaluation window: %d", m.evaluation.DefaultWindowSize)
}
