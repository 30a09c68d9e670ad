package wave

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing: catalog empty or a required collaborator unset.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrCacheMiss: the selected monster type has no scaled stats.
	ErrCacheMiss = errors.New("scaled stats cache miss")
)

// ConditionKind classifies reported non-fatal conditions.
type ConditionKind uint8

const (
	ConditionConfigurationMissing ConditionKind = iota + 1
	ConditionCacheMiss
)

// String implements fmt.Stringer.
func (k ConditionKind) String() string {
	switch k {
	case ConditionConfigurationMissing:
		return "configuration_missing"
	case ConditionCacheMiss:
		return "cache_miss"
	default:
		return fmt.Sprintf("condition(%d)", uint8(k))
	}
}

// Err returns the sentinel error matching the kind.
func (k ConditionKind) Err() error {
	switch k {
	case ConditionConfigurationMissing:
		return ErrConfigurationMissing
	case ConditionCacheMiss:
		return ErrCacheMiss
	default:
		return errors.New(k.String())
	}
}

// Condition is a reported, non-fatal failure of a scheduler operation.
type Condition struct {
	Kind      ConditionKind
	Operation string // "start_wave", "change_monster", "spawn"
	Detail    string
}

// Error implements error. errors.Is matches the kind's sentinel.
func (c Condition) Error() string {
	return fmt.Sprintf("%s: %s: %s", c.Operation, c.Kind.Err(), c.Detail)
}

// Unwrap returns the sentinel for errors.Is.
func (c Condition) Unwrap() error {
	return c.Kind.Err()
}
