package classifier

import (
	"fmt"

	"kycdocs/internal/config"
	"kycdocs/internal/port"
)

// ProviderFactory creates a PageClassifier from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.PageClassifier, error)

// registry of classifier provider factories, populated explicitly via
// RegisterProvider at wiring time.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a classifier provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewClassifier creates a PageClassifier using the registered factory.
func NewClassifier(cfg *config.ProviderConfig) (port.PageClassifier, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown classifier provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
