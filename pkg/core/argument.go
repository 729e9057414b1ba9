package core

import "strings"

// OutputMarker is the name suffix that marks an argument as an OUTPUT parameter.
const OutputMarker = "OUT"

// Argument is one named value bound into an executed statement.
type Argument struct {
	Name   string
	Value  any
	Output bool
}

// Arg builds an argument. Names ending in OutputMarker are OUTPUT parameters.
func Arg(name string, value any) Argument {
	return Argument{
		Name:   name,
		Value:  value,
		Output: strings.HasSuffix(name, OutputMarker),
	}
}

// OutArg builds an OUTPUT argument whose variable is named base.
// The value supplies the declared type of the variable.
func OutArg(base string, value any) Argument {
	return Argument{Name: base + OutputMarker, Value: value, Output: true}
}

// BaseName returns the argument name with the output marker removed.
func (a Argument) BaseName() string {
	if !a.Output {
		return a.Name
	}
	return strings.TrimSuffix(a.Name, OutputMarker)
}

// TypedLiteral is a value's SQL literal text paired with its wire type declaration.
type TypedLiteral struct {
	Literal  string
	WireType string
}
