// Package container wires application dependencies with dig.
package container

import (
	"pulseboard/internal/app"
	"pulseboard/internal/config"
	"pulseboard/internal/db"
	"pulseboard/internal/handler"
	"pulseboard/internal/router"
	"pulseboard/internal/services"
	"pulseboard/internal/store"

	"go.uber.org/dig"
)

// BuildContainer creates and configures the dependency injection container.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		config.NewManager,
		db.NewDB,
		store.NewStore,
		services.NewReadingService,
		services.NewConfigService,
		services.NewRuleService,
		services.NewPlaybookService,
		services.NewEvaluationService,
		handler.NewServer,
		router.NewRouter,
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
