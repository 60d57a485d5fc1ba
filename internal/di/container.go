// Package di provides dependency injection configuration for the Shelfmate client.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfmateapp/shelfmate/internal/config"
	"github.com/shelfmateapp/shelfmate/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
// Services are built lazily, so commands that never touch the backend never open a connection.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, flags)
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideBus)

	// Local storage
	do.Provide(injector, providers.ProvidePrefs)
	do.Provide(injector, providers.ProvideSealer)
	do.Provide(injector, providers.ProvideLanguage)

	// Backend
	do.Provide(injector, providers.ProvideAPIClient)
	do.Provide(injector, providers.ProvideIdentity)

	// Containers
	do.Provide(injector, providers.ProvideSession)
	do.Provide(injector, providers.ProvideTheme)
	do.Provide(injector, providers.ProvideRouter)

	// Feature services
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideSocialService)
	do.Provide(injector, providers.ProvideNotificationService)
	do.Provide(injector, providers.ProvideProfileService)

	return injector
}
