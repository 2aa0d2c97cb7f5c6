package scheduleapi

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the schedule-api component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "schedule-api",
		Factory:     NewComponent,
		Schema:      scheduleAPISchema,
		Type:        "processor",
		Protocol:    "http",
		Domain:      "rosterflow",
		Description: "Runs scheduling requests through the constraint pipeline",
		Version:     "0.1.0",
	})
}
