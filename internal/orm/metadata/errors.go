package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is matched by every ConfigError
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports definitions that cannot be compiled. It aborts the
// whole run.
type ConfigError struct {
	Entity string
	Field  string
	Link   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	var where []string
	if e.Entity != "" {
		where = append(where, "entity "+e.Entity)
	}
	if e.Field != "" {
		where = append(where, "field "+e.Field)
	}
	if e.Link != "" {
		where = append(where, "link "+e.Link)
	}

	msg := ErrConfiguration.Error()
	if len(where) > 0 {
		msg += " (" + strings.Join(where, ", ") + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrConfiguration) hold for every ConfigError
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError builds a ConfigError for an entity
func NewConfigError(entity, reason string, err error) *ConfigError {
	return &ConfigError{Entity: entity, Reason: reason, Err: err}
}

func fieldError(entity, field string, err error) *ConfigError {
	return &ConfigError{Entity: entity, Field: field, Reason: "invalid field declaration", Err: err}
}

func linkError(entity, link string, err error) *ConfigError {
	return &ConfigError{Entity: entity, Link: link, Reason: "invalid link declaration", Err: err}
}

func sectionError(section, name string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", ErrConfiguration, section, name, err)
}
