package flags

import (
	"maps"
	"slices"
)

// Environment is the deployment stage a context evaluates in.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvStaging, EnvProduction:
		return true
	}
	return false
}

// ParseEnvironment maps a config value to an Environment, falling back to
// development.
func ParseEnvironment(s string) Environment {
	if env := Environment(s); env.IsValid() {
		return env
	}
	return EnvDevelopment
}

// EvalContext is the input every flag decision is made against.
//
// UserPermissions distinguishes nil from empty: nil means the caller's
// permissions are unknown and permission checks are skipped, while an empty
// slice means no permissions were granted.
type EvalContext struct {
	UserID           string         `json:"userId,omitempty"`
	UserRole         string         `json:"userRole,omitempty"`
	UserPermissions  []string       `json:"userPermissions"`
	Environment      Environment    `json:"environment"`
	CustomAttributes map[string]any `json:"customAttributes,omitempty"`
}

// DefaultContext is an anonymous development context.
func DefaultContext() EvalContext {
	return EvalContext{Environment: EnvDevelopment}
}

func (c EvalContext) Clone() EvalContext {
	c.UserPermissions = slices.Clone(c.UserPermissions)
	c.CustomAttributes = maps.Clone(c.CustomAttributes)
	return c
}
