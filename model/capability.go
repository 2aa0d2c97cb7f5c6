// Package model provides capability-based model selection for the advisory
// oracle. Pipeline stages specify capabilities (planning, scheduling,
// validation, review) instead of model names, and the registry resolves
// them to available endpoints with fallback chains.
package model

// Capability is a semantic capability used for model selection.
type Capability string

const (
	// CapabilityPlanning is for building execution plans.
	CapabilityPlanning Capability = "planning"

	// CapabilityScheduling is for assignment suggestions.
	CapabilityScheduling Capability = "scheduling"

	// CapabilityValidation is for compliance analysis of a schedule.
	CapabilityValidation Capability = "validation"

	// CapabilityReview is for quality review of a finished schedule.
	CapabilityReview Capability = "review"

	// CapabilityFast is for quick, low-stakes completions.
	CapabilityFast Capability = "fast"
)

// StageCapabilities maps pipeline stage names to their capability.
var StageCapabilities = map[string]Capability{
	"planner":   CapabilityPlanning,
	"scheduler": CapabilityScheduling,
	"lawyer":    CapabilityValidation,
	"reviewer":  CapabilityReview,
}

// CapabilityForStage returns the capability for a pipeline stage,
// defaulting to CapabilityFast for unknown stages.
func CapabilityForStage(stage string) Capability {
	if c, ok := StageCapabilities[stage]; ok {
		return c
	}
	return CapabilityFast
}

// IsValid reports whether the capability is a known one.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityPlanning, CapabilityScheduling, CapabilityValidation, CapabilityReview, CapabilityFast:
		return true
	}
	return false
}

func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for
// unknown values.
func ParseCapability(s string) Capability {
	c := Capability(s)
	if c.IsValid() {
		return c
	}
	return ""
}
