// Package bind turns a SQL template and named arguments into an executable
// sp_executesql batch.
//
// The server has no typed parameter binding for ad hoc batches, so every
// argument is declared with an inferred wire type and passed as a literal.
// All escaping of embedded SQL text happens here, through the connection's
// Escaper.
package bind

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaptds/pkg/core"
)

// RowCountColumn is the alias of the @@ROWCOUNT pseudo-column appended to
// output projections and row-count queries.
const RowCountColumn = "AffectedRows"

// Bound is the result of binding a template.
type Bound struct {
	// SQL is the executable batch.
	SQL string

	// Types holds the call-site type clauses, e.g. "@v int".
	Types []string

	// Values holds the call-site bindings, e.g. "@v = 5".
	Values []string

	// Declarations holds local variable declarations for output parameters.
	Declarations []string

	// Outputs holds the projection aliases of output parameters, e.g. "@id AS id".
	Outputs []string
}

// HasOutputs reports whether the batch ends with an output projection.
func (b *Bound) HasOutputs() bool {
	return len(b.Outputs) > 0
}

// Binder builds sp_executesql batches using one connection's dialect rules.
type Binder struct {
	esc core.Escaper
	lit core.Literalizer
}

// New creates a binder. Usually both arguments are the same core.Conn.
func New(esc core.Escaper, lit core.Literalizer) *Binder {
	return &Binder{esc: esc, lit: lit}
}

// Bind wraps template in an sp_executesql call with one typed parameter per
// argument. When output arguments are present the call is preceded by
// variable declarations and followed by a SELECT of the output variables and
// @@ROWCOUNT.
func (b *Binder) Bind(template string, args []core.Argument) (*Bound, error) {
	if err := checkNames(args); err != nil {
		return nil, err
	}

	bound := &Bound{
		Types:  make([]string, 0, len(args)),
		Values: make([]string, 0, len(args)),
	}

	for _, a := range args {
		typed, err := Infer(b.lit, a.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to bind argument %q: %w", a.Name, err)
		}

		if a.Output {
			k := WireName(a.BaseName())
			bound.Declarations = append(bound.Declarations, fmt.Sprintf("@%s %s", k, typed.WireType))
			bound.Outputs = append(bound.Outputs, fmt.Sprintf("@%s AS %s", k, k))
			bound.Types = append(bound.Types, fmt.Sprintf("@%s%s %s OUTPUT", k, core.OutputMarker, typed.WireType))
			bound.Values = append(bound.Values, fmt.Sprintf("@%s%s = @%s OUTPUT", k, core.OutputMarker, k))
			continue
		}

		k := WireName(a.Name)
		bound.Types = append(bound.Types, fmt.Sprintf("@%s %s", k, typed.WireType))
		bound.Values = append(bound.Values, fmt.Sprintf("@%s = %s", k, typed.Literal))
	}

	var sb strings.Builder
	sb.WriteString("EXEC sp_executesql N'")
	sb.WriteString(b.esc.Escape(template))
	sb.WriteString("', N'")
	sb.WriteString(b.esc.Escape(strings.Join(bound.Types, ", ")))
	sb.WriteString("'")
	if len(bound.Values) > 0 {
		sb.WriteString(", ")
		sb.WriteString(strings.Join(bound.Values, ", "))
	}
	exec := sb.String()

	if bound.HasOutputs() {
		exec = fmt.Sprintf("DECLARE %s; %s; SELECT %s, @@ROWCOUNT AS %s",
			strings.Join(bound.Declarations, ", "),
			exec,
			strings.Join(bound.Outputs, ", "),
			RowCountColumn,
		)
	}

	bound.SQL = exec
	return bound, nil
}
