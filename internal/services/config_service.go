package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pulseboard/internal/engine"
	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/models"
	"pulseboard/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	configActivationLockKey = "pulseboard:lock:threshold_config"
	configChangedChannel    = "pulseboard:config_changed"

	// DefaultConfigName identifies the auto-created bootstrap configuration.
	DefaultConfigName = "default"
)

// ConfigService manages versioned threshold configurations. The activation
// invariant (at most one active config) is enforced with a single
// transaction per change plus a store-backed advisory lock so that
// concurrent activations serialize even across instances.
//
// The active configuration is cached in memory. Local changes invalidate
// the cache directly; changes made by other instances arrive as messages
// on the config-changed channel.
type ConfigService struct {
	db    *gorm.DB
	store store.Store

	cacheMu sync.RWMutex
	cached  *models.ThresholdConfig
}

// NewConfigService constructs a ConfigService and starts the watcher that
// invalidates the active-config cache on change events.
func NewConfigService(db *gorm.DB, st store.Store) *ConfigService {
	s := &ConfigService{db: db, store: st}
	sub, err := st.Subscribe(configChangedChannel)
	if err != nil {
		logrus.WithError(err).Warn("Config change subscription failed, cache invalidation is local-only")
		return s
	}
	go s.watchConfigChanges(sub)
	return s
}

// watchConfigChanges drops the cached active config whenever a change
// event arrives. Returns when the subscription channel closes.
func (s *ConfigService) watchConfigChanges(sub store.Subscription) {
	for msg := range sub.Channel() {
		logrus.WithField("payload", string(msg.Payload)).Debug("Config changed, invalidating cache")
		s.invalidateActiveCache()
	}
}

func (s *ConfigService) invalidateActiveCache() {
	s.cacheMu.Lock()
	s.cached = nil
	s.cacheMu.Unlock()
}

func (s *ConfigService) cacheActiveConfig(config *models.ThresholdConfig) {
	copied := *config
	s.cacheMu.Lock()
	s.cached = &copied
	s.cacheMu.Unlock()
}

// ConfigCreateParams captures the fields to create a threshold config.
type ConfigCreateParams struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Thresholds  engine.Thresholds `json:"thresholds"`
	CreatedBy   string            `json:"created_by"`
}

// ConfigUpdateParams captures the patchable fields. Touching Thresholds
// bumps the version; setting IsActive true deactivates all others in the
// same transaction.
type ConfigUpdateParams struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Thresholds  *engine.Thresholds `json:"thresholds,omitempty"`
	IsActive    *bool              `json:"is_active,omitempty"`
}

// ListConfigs returns all configurations, newest first.
func (s *ConfigService) ListConfigs(ctx context.Context) ([]models.ThresholdConfig, error) {
	var configs []models.ThresholdConfig
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&configs).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return configs, nil
}

// GetConfig loads one configuration by id.
func (s *ConfigService) GetConfig(ctx context.Context, id uint) (*models.ThresholdConfig, error) {
	var config models.ThresholdConfig
	if err := s.db.WithContext(ctx).First(&config, id).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return &config, nil
}

// CreateConfig validates and persists a new, inactive configuration.
func (s *ConfigService) CreateConfig(ctx context.Context, params ConfigCreateParams) (*models.ThresholdConfig, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, app_errors.NewValidationError("name is required")
	}
	raw, err := models.EncodeThresholds(params.Thresholds)
	if err != nil {
		return nil, app_errors.NewValidationError(err.Error())
	}

	config := models.ThresholdConfig{
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Version:     1,
		IsActive:    false,
		Thresholds:  raw,
		CreatedBy:   params.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(&config).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return &config, nil
}

// UpdateConfig applies a patch. Version bump and activation happen inside
// one transaction so a failed activation never leaves a bumped version
// behind.
func (s *ConfigService) UpdateConfig(ctx context.Context, id uint, params ConfigUpdateParams) (*models.ThresholdConfig, error) {
	var raw []byte
	if params.Thresholds != nil {
		encoded, err := models.EncodeThresholds(*params.Thresholds)
		if err != nil {
			return nil, app_errors.NewValidationError(err.Error())
		}
		raw = encoded
	}

	apply := func() (*models.ThresholdConfig, error) {
		var config models.ThresholdConfig
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&config, id).Error; err != nil {
				return err
			}
			if params.Name != nil {
				if strings.TrimSpace(*params.Name) == "" {
					return app_errors.NewValidationError("name cannot be empty")
				}
				config.Name = strings.TrimSpace(*params.Name)
			}
			if params.Description != nil {
				config.Description = *params.Description
			}
			if raw != nil {
				config.Thresholds = raw
				config.Version++
			}
			if params.IsActive != nil && *params.IsActive && !config.IsActive {
				if err := tx.Model(&models.ThresholdConfig{}).
					Where("is_active = ?", true).
					Update("is_active", false).Error; err != nil {
					return err
				}
				now := time.Now().UTC()
				config.IsActive = true
				config.ActivatedAt = &now
			}
			return tx.Save(&config).Error
		})
		if err != nil {
			var apiErr *app_errors.APIError
			if errors.As(err, &apiErr) {
				return nil, apiErr
			}
			return nil, app_errors.ParseDBError(err)
		}
		return &config, nil
	}

	if params.IsActive != nil && *params.IsActive {
		var config *models.ThresholdConfig
		err := withActivationLock(s.store, configActivationLockKey, func() error {
			var applyErr error
			config, applyErr = apply()
			return applyErr
		})
		if err != nil {
			return nil, err
		}
		s.invalidateActiveCache()
		s.notifyConfigChanged(config.ID)
		return config, nil
	}

	config, err := apply()
	if err != nil {
		return nil, err
	}
	// Patching the active config in place changes what evaluations see.
	if config.IsActive {
		s.invalidateActiveCache()
		s.notifyConfigChanged(config.ID)
	}
	return config, nil
}

// ActivateConfig atomically deactivates every configuration and activates
// the target. Unknown ids fail with NotFound.
func (s *ConfigService) ActivateConfig(ctx context.Context, id uint) (*models.ThresholdConfig, error) {
	var config models.ThresholdConfig
	err := withActivationLock(s.store, configActivationLockKey, func() error {
		return runWithTransientRetry(func() error {
			return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.First(&config, id).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.ThresholdConfig{}).
					Where("is_active = ?", true).
					Update("is_active", false).Error; err != nil {
					return err
				}
				now := time.Now().UTC()
				return tx.Model(&config).
					Updates(map[string]any{"is_active": true, "activated_at": now}).Error
			})
		})
	})
	if err != nil {
		var apiErr *app_errors.APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, app_errors.ParseDBError(err)
	}
	s.invalidateActiveCache()
	s.notifyConfigChanged(config.ID)
	return &config, nil
}

// DeleteConfig removes a configuration. Deleting the active one is a
// conflict; deactivate or activate a replacement first.
func (s *ConfigService) DeleteConfig(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var config models.ThresholdConfig
		if err := tx.First(&config, id).Error; err != nil {
			return err
		}
		if config.IsActive {
			return app_errors.NewConflictError("cannot delete the active threshold config")
		}
		return tx.Delete(&config).Error
	})
	if err != nil {
		var apiErr *app_errors.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return app_errors.ParseDBError(err)
	}
	return nil
}

// GetActiveConfig returns the active configuration, serving from the
// in-memory cache when possible and creating the documented default on
// first use. The bootstrap is the only auto-creation in the system.
func (s *ConfigService) GetActiveConfig(ctx context.Context) (*models.ThresholdConfig, error) {
	s.cacheMu.RLock()
	if s.cached != nil {
		copied := *s.cached
		s.cacheMu.RUnlock()
		return &copied, nil
	}
	s.cacheMu.RUnlock()

	var config models.ThresholdConfig
	err := s.db.WithContext(ctx).Where("is_active = ?", true).First(&config).Error
	if err == nil {
		s.cacheActiveConfig(&config)
		return &config, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, app_errors.ParseDBError(err)
	}

	lockErr := withActivationLock(s.store, configActivationLockKey, func() error {
		// Re-check under the lock: another request may have bootstrapped.
		if err := s.db.WithContext(ctx).Where("is_active = ?", true).First(&config).Error; err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		raw, err := models.EncodeThresholds(engine.DefaultThresholds())
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		config = models.ThresholdConfig{
			Name:        DefaultConfigName,
			Description: "Auto-created default threshold configuration",
			Version:     1,
			IsActive:    true,
			Thresholds:  raw,
			ActivatedAt: &now,
		}
		if err := s.db.WithContext(ctx).Create(&config).Error; err != nil {
			return err
		}
		logrus.WithField("config_id", config.ID).Info("Bootstrapped default threshold config")
		return nil
	})
	if lockErr != nil {
		var apiErr *app_errors.APIError
		if errors.As(lockErr, &apiErr) {
			return nil, apiErr
		}
		return nil, app_errors.ParseDBError(lockErr)
	}
	s.cacheActiveConfig(&config)
	return &config, nil
}

// notifyConfigChanged publishes a change event so other instances can
// invalidate their cached active config.
func (s *ConfigService) notifyConfigChanged(id uint) {
	payload := []byte(time.Now().UTC().Format(time.RFC3339))
	if err := s.store.Publish(configChangedChannel, payload); err != nil {
		logrus.WithField("config_id", id).WithError(err).Debug("Failed to publish config change")
	}
}
