package dberr

import (
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"regexp"

	mssql "github.com/denisenkom/go-mssqldb"
)

// Numbered is implemented by driver errors that carry a server error number,
// such as go-mssqldb's mssql.Error.
type Numbered interface {
	SQLErrorNumber() int32
}

type messenger interface {
	SQLErrorMessage() string
}

// Rule classifies an error when Match returns true.
type Rule struct {
	Kind  Kind
	Match func(err error) bool
}

// CodeRule matches errors carrying the given server error number.
func CodeRule(number int32, kind Kind) Rule {
	return Rule{
		Kind: kind,
		Match: func(err error) bool {
			for _, n := range ErrorNumbers(err) {
				if n == number {
					return true
				}
			}
			return false
		},
	}
}

// ServerRules are the error numbers that identify a kind on their own.
// Foreign key and check violations share error 547 and are told apart by
// message text instead.
var ServerRules = []Rule{
	CodeRule(515, NotNullViolation),
	CodeRule(2627, UniqueViolation),
}

// Pattern maps a message regexp to a kind.
type Pattern struct {
	Re   *regexp.Regexp
	Kind Kind
}

// PatternClassifier classifies errors by message text.
type PatternClassifier struct {
	Patterns []Pattern
}

// DefaultPatterns recognizes SQL Server constraint violation messages.
var DefaultPatterns = &PatternClassifier{
	Patterns: []Pattern{
		{regexp.MustCompile(`Violation of UNIQUE KEY constraint|(Violation of PRIMARY KEY constraint.+)?Cannot insert duplicate key`), UniqueViolation},
		{regexp.MustCompile(`conflicted with the (FOREIGN KEY.*|REFERENCE) constraint`), ForeignKeyViolation},
		{regexp.MustCompile(`conflicted with the CHECK constraint`), CheckViolation},
		{regexp.MustCompile(`column does not allow nulls`), NotNullViolation},
	},
}

// Classify returns the kind of the first matching pattern, or Generic.
func (p *PatternClassifier) Classify(message string) Kind {
	for _, pat := range p.Patterns {
		if pat.Re.MatchString(message) {
			return pat.Kind
		}
	}
	return Generic
}

// Classifier evaluates its rules in order and falls back to message patterns.
type Classifier struct {
	Rules    []Rule
	Fallback *PatternClassifier
}

// NewClassifier returns a classifier with the SQL Server rules and patterns.
func NewClassifier() *Classifier {
	return &Classifier{Rules: ServerRules, Fallback: DefaultPatterns}
}

// Classify returns the kind of err. It does not consider connection state.
func (c *Classifier) Classify(err error) Kind {
	if err == nil {
		return Generic
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	for _, r := range c.Rules {
		if r.Match(err) {
			return r.Kind
		}
	}
	if c.Fallback != nil {
		return c.Fallback.Classify(Message(err))
	}
	return Generic
}

// Wrap classifies err into an *Error. active is the connection state observed
// after the failure; an inactive connection sets the disconnect flag whatever
// the kind. Errors that are already classified are returned unchanged.
func (c *Classifier) Wrap(err error, active bool) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	e := &Error{
		Kind:       c.Classify(err),
		Message:    Message(err),
		Disconnect: !active || isConnectionLoss(err),
		Err:        err,
	}
	if n, ok := ErrorNumber(err); ok {
		e.Number = n
	}
	if e.Kind == Generic && e.Disconnect {
		e.Kind = Disconnect
	}
	return e
}

// ErrorNumber extracts the server error number from err.
func ErrorNumber(err error) (int32, bool) {
	var n Numbered
	if errors.As(err, &n) {
		return n.SQLErrorNumber(), true
	}
	return 0, false
}

// ErrorNumbers returns every server error number carried by err. A batch
// that raises several errors reports the last one, and go-mssqldb keeps the
// full list in mssql.Error.All.
func ErrorNumbers(err error) []int32 {
	var me mssql.Error
	if errors.As(err, &me) && len(me.All) > 0 {
		nums := make([]int32, 0, len(me.All)+1)
		nums = append(nums, me.Number)
		for _, e := range me.All {
			nums = append(nums, e.Number)
		}
		return nums
	}
	if n, ok := ErrorNumber(err); ok {
		return []int32{n}
	}
	return nil
}

// Message returns the server message of err, or err.Error() when the driver
// does not expose one.
func Message(err error) string {
	var m messenger
	if errors.As(err, &m) {
		return m.SQLErrorMessage()
	}
	return err.Error()
}

func isConnectionLoss(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
