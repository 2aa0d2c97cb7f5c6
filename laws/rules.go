// Package laws holds country-specific labor-law rule records consulted
// during schedule validation. Rules cover vacation entitlements only; they
// are advisory heuristics, not legal advice.
package laws

import (
	"fmt"
	"strings"
	"sync"

	"github.com/c360studio/rosterflow/schedule"
)

// Rule is the vacation-law record for one country.
type Rule struct {
	Name string `yaml:"name" json:"name"`

	// MandatoryVacationDays is the statutory annual paid-leave minimum.
	// Nil means no mandate is known (or none exists).
	MandatoryVacationDays *int `yaml:"mandatory_vacation_days" json:"mandatory_vacation_days"`

	Notes string `yaml:"notes,omitempty" json:"notes,omitempty"`

	// UnpaidLeaveProtected marks jurisdictions with protected unpaid
	// leave despite no paid mandate (US FMLA).
	UnpaidLeaveProtected bool `yaml:"unpaid_leave_protected,omitempty" json:"unpaid_leave_protected,omitempty"`

	MaxConsecutiveWorkDays *int `yaml:"max_consecutive_work_days,omitempty" json:"max_consecutive_work_days,omitempty"`
}

// MaxRecentVacations is the fairness ceiling on vacations taken within the
// rolling 60-day window. Employees above it are not granted more.
const MaxRecentVacations = 12

func intp(n int) *int { return &n }

func builtinRules() map[string]Rule {
	return map[string]Rule{
		"US": {
			Name:                  "United States",
			MandatoryVacationDays: intp(0),
			Notes:                 "No federal paid vacation required. Common practice: 10-15 days after 1 year.",
			UnpaidLeaveProtected:  true,
		},
		"EU": {
			Name:                  "European Union (minimum standard)",
			MandatoryVacationDays: intp(20),
			Notes:                 "Directive 2003/88/EC: at least 4 weeks paid annual leave",
		},
		"GB": {
			Name:                  "United Kingdom",
			MandatoryVacationDays: intp(28),
		},
		"CA": {
			Name:                  "Canada",
			MandatoryVacationDays: intp(10),
			Notes:                 "Provincial laws often more generous",
		},
		"DE": {
			Name:                  "Germany",
			MandatoryVacationDays: intp(24),
		},
		"FR": {
			Name:                  "France",
			MandatoryVacationDays: intp(25),
		},
		"AU": {
			Name:                  "Australia",
			MandatoryVacationDays: intp(20),
		},
		"JP": {
			Name:                  "Japan",
			MandatoryVacationDays: intp(10),
		},
	}
}

// Registry resolves country codes to rule records. It starts from the
// built-in table and can be overlaid with rules loaded from a YAML file,
// including hot reloads, so lookups take a read lock.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry returns a Registry seeded with the built-in country table.
func NewRegistry() *Registry {
	return &Registry{rules: builtinRules()}
}

// Lookup returns the rule record for a country code (ISO 3166-1 alpha-2,
// case-insensitive). Unknown codes get a permissive placeholder record and
// ok == false.
func (r *Registry) Lookup(country string) (Rule, bool) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if code == "" {
		code = "US"
	}
	r.mu.RLock()
	rule, ok := r.rules[code]
	r.mu.RUnlock()
	if ok {
		return rule, true
	}
	return Rule{
		Name:  fmt.Sprintf("Unknown (%s)", country),
		Notes: "No rules defined. Defaulting to permissive mode.",
	}, false
}

// Countries returns the known country codes.
func (r *Registry) Countries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rules))
	for code := range r.rules {
		out = append(out, code)
	}
	return out
}

// replace swaps the full rule table. Used by the watcher after a reload.
func (r *Registry) replace(rules map[string]Rule) {
	r.mu.Lock()
	r.rules = rules
	r.mu.Unlock()
}

// CanAssignVacation decides whether an employee may be granted another
// vacation slot. The check is permissive: it denies only when the employee
// has taken more than MaxRecentVacations in the rolling window.
func (r *Registry) CanAssignVacation(emp schedule.Employee) bool {
	return emp.PreviousVacations60Days <= MaxRecentVacations
}

// ScheduleWarnings returns advisory labor-law warnings for a schedule in
// the given country. These never invalidate a schedule.
func (r *Registry) ScheduleWarnings(country string) []string {
	var warnings []string
	code := strings.ToUpper(strings.TrimSpace(country))
	rule, known := r.Lookup(country)
	if code == "US" && rule.MandatoryVacationDays != nil && *rule.MandatoryVacationDays == 0 {
		warnings = append(warnings,
			"US has no federal paid vacation mandate; ensure company policy is followed.")
	}
	if !known && code != "" {
		warnings = append(warnings,
			fmt.Sprintf("no labor-law rules defined for country %q; running in permissive mode", country))
	}
	return warnings
}
