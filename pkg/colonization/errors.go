package colonization

import (
	"errors"
	"fmt"
)

// ErrSealed is returned by Grow once Simplify has renumbered the skeleton.
var ErrSealed = errors.New("colonization: tree already simplified")

// ConfigurationError reports a missing or invalid Config field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("colonization: %s %s", e.Field, e.Reason)
}

// EmptyInputError reports an empty input set.
type EmptyInputError struct {
	Field string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("colonization: %s is empty", e.Field)
}

// DegenerateGeometryError marks a node whose attraction vectors summed to
// zero length. Grow skips such nodes for the round and counts them in
// Stats.Degenerate; the error never escapes Grow.
type DegenerateGeometryError struct {
	Node int
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("colonization: zero-length growth direction at node %d", e.Node)
}
