package countme

import "github.com/rs/zerolog"

type registryConfig struct {
	// when false, remove per-key mutex entries from `inits` after initialization.
	// Default: false.
	doNotCleanupInits bool
	logger            *zerolog.Logger
}

// RegistryOption configures a Registry constructed by NewRegistry.
type RegistryOption func(*registryConfig)

// WithInitCleanupDisabled controls whether per-key init mutex entries are removed from
// the registry's internal `inits` map after a type is registered.
// Init cleanup is enabled by default; this option disables it.
func WithInitCleanupDisabled() RegistryOption {
	return func(cfg *registryConfig) { cfg.doNotCleanupInits = true }
}

// WithLogger sets the logger used for type registration events and invariant reports.
func WithLogger(l zerolog.Logger) RegistryOption {
	return func(cfg *registryConfig) { cfg.logger = &l }
}
