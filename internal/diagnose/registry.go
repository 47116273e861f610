package diagnose

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/recoveryd-dev/recoveryd/internal/metrics"
)

// NoSuggestion is the operator-facing text used when no rule matched
const NoSuggestion = "No repair suggestion found for the given error."

// ErrInvalidRule is returned when Register receives something that cannot act as a rule
var ErrInvalidRule = errors.New("invalid rule type")

// Registry holds rules in registration order. Rules are registered at
// startup; after that the registry is only read and may be shared freely.
type Registry struct {
	rules  []RepairRule
	logger zerolog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		logger: logger.With().Str("component", "rule_registry").Logger(),
	}
}

// NewDefaultRegistry creates a registry with the built-in rules
func NewDefaultRegistry(logger zerolog.Logger) *Registry {
	r := NewRegistry(logger)
	// Built-in rules are non-nil values; Register cannot fail for them
	_ = r.Register(PermissionDenied{})
	_ = r.Register(MissingDirectory{})
	return r
}

// Register appends a rule. Rules are consulted in the order they were registered.
func (r *Registry) Register(rule RepairRule) error {
	if isNil(rule) {
		return fmt.Errorf("%w: rule must be a non-nil RepairRule", ErrInvalidRule)
	}
	r.rules = append(r.rules, rule)

	r.logger.Debug().
		Str("rule", rule.Name()).
		Int("position", len(r.rules)).
		Msg("Registered repair rule")
	return nil
}

// FindRepair returns the script of the first matching rule. The boolean is
// false when no rule applies, which is a normal outcome.
func (r *Registry) FindRepair(log, tenant string) (string, bool) {
	for _, rule := range r.rules {
		if !rule.Matches(log, tenant) {
			continue
		}

		r.logger.Info().
			Str("rule", rule.Name()).
			Bool("tenant_scoped", tenant != "").
			Msg("Repair rule matched")
		metrics.Diagnoses.WithLabelValues(rule.Name()).Inc()

		return rule.Generate(log, tenant), true
	}

	r.logger.Debug().Int("rule_count", len(r.rules)).Msg("No repair rule matched")
	metrics.Diagnoses.WithLabelValues("none").Inc()
	return "", false
}

// Rules returns the registered rule names in dispatch order
func (r *Registry) Rules() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name()
	}
	return names
}

func isNil(rule RepairRule) bool {
	if rule == nil {
		return true
	}
	v := reflect.ValueOf(rule)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
