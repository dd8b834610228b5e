package config

import (
	"fmt"
	"os"
	"strings"
)

// Resolver expands environment references in configuration values.
type Resolver struct {
	lookup func(string) (string, bool)
}

// NewResolver creates a Resolver reading the process environment.
func NewResolver() *Resolver {
	return &Resolver{lookup: os.LookupEnv}
}

// Resolve returns value with a leading $VAR or ${VAR} replaced by the
// variable's value. Other values are returned as is. An unset variable
// resolves to "".
func (r *Resolver) Resolve(value string) (string, error) {
	if !strings.HasPrefix(value, "$") {
		return value, nil
	}

	name := strings.TrimPrefix(value, "$")
	if strings.HasPrefix(name, "{") {
		if !strings.HasSuffix(name, "}") {
			return "", fmt.Errorf("unterminated variable reference %q", value)
		}
		name = name[1 : len(name)-1]
	}
	if name == "" {
		return "", fmt.Errorf("empty variable reference %q", value)
	}

	v, _ := r.lookup(name)
	return strings.TrimSpace(v), nil
}
