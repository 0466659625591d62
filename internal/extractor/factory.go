package extractor

import (
	"fmt"

	"kycdocs/internal/config"
	"kycdocs/internal/port"
)

// ProviderFactory creates an EntityExtractor from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.EntityExtractor, error)

var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extractor provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates an EntityExtractor using the registered factory.
func NewExtractor(cfg *config.ProviderConfig) (port.EntityExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extractor provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
