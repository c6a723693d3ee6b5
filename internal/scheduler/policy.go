package scheduler

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Policy tunes the alternatives path. The thresholds are deliberately
// configurable rather than hard-coded; operators can override them from a
// YAML file.
type Policy struct {
	// MaxAlternatives caps how many alternative times are offered.
	MaxAlternatives int `yaml:"max_alternatives"`
	// PreferDistinctDays spreads alternatives across calendar days.
	PreferDistinctDays bool `yaml:"prefer_distinct_days"`
	// LeisureEveningStartHour is the hour (0-23) from which a weekday
	// slot counts as an evening for leisure bias purposes.
	LeisureEveningStartHour int `yaml:"leisure_evening_start_hour"`
	// WorkdayStartHour and WorkdayEndHour bound weekday midday for the
	// leisure correction rule.
	WorkdayStartHour int `yaml:"workday_start_hour"`
	WorkdayEndHour   int `yaml:"workday_end_hour"`
	// MinVenuesBeforeAlternatives is how many venues must be in hand
	// before alternative venues are offered instead of alternative times.
	MinVenuesBeforeAlternatives int `yaml:"min_venues_before_alternatives"`
}

// DefaultPolicy returns the built-in alternatives policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAlternatives:             3,
		PreferDistinctDays:          true,
		LeisureEveningStartHour:     17,
		WorkdayStartHour:            9,
		WorkdayEndHour:              17,
		MinVenuesBeforeAlternatives: 2,
	}
}

// withDefaults fills invalid or unset fields from the built-in policy.
// A zero-valued Policy becomes DefaultPolicy in full; a partial one keeps
// every field the caller set.
func (p Policy) withDefaults() Policy {
	if p == (Policy{}) {
		return DefaultPolicy()
	}
	def := DefaultPolicy()
	if p.MaxAlternatives <= 0 {
		p.MaxAlternatives = def.MaxAlternatives
	}
	if p.LeisureEveningStartHour <= 0 || p.LeisureEveningStartHour > 23 {
		p.LeisureEveningStartHour = def.LeisureEveningStartHour
	}
	if p.WorkdayStartHour <= 0 {
		p.WorkdayStartHour = def.WorkdayStartHour
	}
	if p.WorkdayEndHour <= p.WorkdayStartHour {
		p.WorkdayEndHour = def.WorkdayEndHour
	}
	if p.MinVenuesBeforeAlternatives < 0 {
		p.MinVenuesBeforeAlternatives = def.MinVenuesBeforeAlternatives
	}
	return p
}

// LoadPolicy reads a policy file, filling unset fields from the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	return p.withDefaults(), nil
}
