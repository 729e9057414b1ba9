package core

import "fmt"

// Mode selects how the result of an execution is extracted.
type Mode int

const (
	// ModeRaw hands the cursor to a Selector or Yield function.
	ModeRaw Mode = iota
	// ModeRowCount returns the number of affected rows.
	ModeRowCount
	// ModeScalarInsertID returns the identity value generated by the statement.
	ModeScalarInsertID
	// ModeEachRow drains every result and returns nothing.
	ModeEachRow
)

var modeNames = map[Mode]string{
	ModeRaw:            "raw",
	ModeRowCount:       "rowcount",
	ModeScalarInsertID: "insert",
	ModeEachRow:        "each",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name as printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeRaw, fmt.Errorf("unknown execution mode %q (expected raw, rowcount, insert or each)", s)
}

// Request is one execution: a SQL template, its arguments and the result mode.
type Request struct {
	SQL  string
	Args []Argument
	Mode Mode

	// Server names the logical server to run on. Empty uses the default.
	Server string

	// Selector extracts a value from the cursor in ModeRaw.
	Selector func(Cursor) (any, error)

	// Yield consumes the cursor in ModeRaw when Selector is nil.
	Yield func(Cursor) error
}

// HasOutputs reports whether any argument is an OUTPUT parameter.
func (r Request) HasOutputs() bool {
	for _, a := range r.Args {
		if a.Output {
			return true
		}
	}
	return false
}
