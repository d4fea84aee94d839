package sim

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-platformer/internal/registry"
)

// ErrNilCatalog is returned by Load when the world has no catalog.
var ErrNilCatalog = errors.New("sim: world has no catalog")

// ErrLookupMiss is the registry miss sentinel, re-exported for callers of this package.
var ErrLookupMiss = registry.ErrLookupMiss

// ConfigurationError reports a malformed map value that was recovered with a default.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sim: configuration %s: %s", e.Field, e.Reason)
}
