package bind

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaptds/pkg/core"
)

// WireName converts an argument name into a parameter name the server accepts.
// Dots are not allowed in parameter names, so qualified names like "user.id"
// become "user__id".
func WireName(name string) string {
	return strings.ReplaceAll(name, ".", "__")
}

// Placeholder returns the reference to a named argument for use in a template.
func Placeholder(name string) string {
	return "@" + WireName(name)
}

// ArgumentError is returned when an argument list cannot be bound.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Reason)
}

// checkNames enforces unique wire names across one argument list. An output
// argument claims both its base name and its <base>OUT parameter name.
func checkNames(args []core.Argument) error {
	seen := make(map[string]bool, len(args))
	for _, a := range args {
		if a.Name == "" {
			return &ArgumentError{Name: a.Name, Reason: "name is empty"}
		}
		base := WireName(a.BaseName())
		if base == "" {
			return &ArgumentError{Name: a.Name, Reason: "output argument has no base name"}
		}
		names := []string{base}
		if a.Output {
			names = append(names, base+core.OutputMarker)
		}
		for _, n := range names {
			if seen[n] {
				return &ArgumentError{Name: a.Name, Reason: fmt.Sprintf("parameter @%s is bound more than once", n)}
			}
			seen[n] = true
		}
	}
	return nil
}
