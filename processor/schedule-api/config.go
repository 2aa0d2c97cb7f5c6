package scheduleapi

import (
	"fmt"
	"reflect"

	"github.com/c360studio/semstreams/component"

	"github.com/c360studio/rosterflow/schedule"
)

// scheduleAPISchema defines the configuration schema.
var scheduleAPISchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the schedule-api processor component.
type Config struct {
	// StreamName is the JetStream stream for consuming requests and
	// publishing results.
	StreamName string `json:"stream_name" schema:"type:string,description:JetStream stream for schedule traffic,category:basic,default:SCHEDULES"`

	// ConsumerName is the durable consumer name for request consumption.
	ConsumerName string `json:"consumer_name" schema:"type:string,description:Durable consumer name for request consumption,category:basic,default:schedule-api"`

	// RequestSubject is the subject pattern for schedule requests.
	RequestSubject string `json:"request_subject" schema:"type:string,description:Subject pattern for schedule requests,category:basic,default:schedule.request.v1"`

	// ResultSubject is where finished schedules are published when a
	// request carries no reply subject of its own.
	ResultSubject string `json:"result_subject" schema:"type:string,description:Subject for schedule results,category:basic,default:schedule.result.v1"`

	// OracleDisabled turns off advisory oracle consultation. All runs
	// then use the deterministic path only.
	OracleDisabled bool `json:"oracle_disabled" schema:"type:boolean,description:Disable advisory oracle consultation,category:basic,default:false"`

	// LawsPath points at a YAML labor-law rule file overlaying the
	// built-in table.
	LawsPath string `json:"laws_path,omitempty" schema:"type:string,description:Labor-law rule file overlaying built-in rules,category:basic"`

	// WatchLaws reloads the rule file when it changes.
	WatchLaws bool `json:"watch_laws" schema:"type:boolean,description:Reload the rule file on change,category:basic,default:true"`

	// VacationPolicy is "none" or "fairness".
	VacationPolicy string `json:"vacation_policy" schema:"type:string,description:Unsuggested-vacation behavior,category:basic,default:none"`

	// Ports contains input/output port definitions.
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Input/output port definitions,category:basic"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		StreamName:     "SCHEDULES",
		ConsumerName:   "schedule-api",
		RequestSubject: "schedule.request.v1",
		ResultSubject:  "schedule.result.v1",
		WatchLaws:      true,
		VacationPolicy: string(schedule.VacationPolicyNone),
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "schedule-requests",
					Type:        "jetstream",
					Subject:     "schedule.request.v1",
					StreamName:  "SCHEDULES",
					Description: "Receive schedule requests",
					Required:    true,
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "schedule-results",
					Type:        "jetstream",
					Subject:     "schedule.result.v1",
					Description: "Publish finished schedules",
					Required:    false,
				},
			},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return fmt.Errorf("stream_name is required")
	}
	if c.ConsumerName == "" {
		return fmt.Errorf("consumer_name is required")
	}
	if c.RequestSubject == "" {
		return fmt.Errorf("request_subject is required")
	}
	if c.ResultSubject == "" {
		return fmt.Errorf("result_subject is required")
	}
	switch schedule.VacationPolicy(c.VacationPolicy) {
	case schedule.VacationPolicyNone, schedule.VacationPolicyFairness:
	default:
		return fmt.Errorf("vacation_policy must be %q or %q",
			schedule.VacationPolicyNone, schedule.VacationPolicyFairness)
	}
	return nil
}
