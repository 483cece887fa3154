package store

import (
	"fmt"

	"pulseboard/internal/types"

	"github.com/sirupsen/logrus"
)

// NewStore creates a Store based on configuration: Redis when REDIS_DSN is
// set, otherwise the in-process memory store.
func NewStore(configManager types.ConfigManager) (Store, error) {
	redisDSN := configManager.GetRedisDSN()
	if redisDSN == "" {
		logrus.Info("Using in-memory store")
		return NewMemoryStore(), nil
	}

	redisStore, err := NewRedisStore(redisDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logrus.Info("Using Redis store")
	return redisStore, nil
}
