// Package dialect provides SQL Server literal and escaping rules.
// This package is lightweight and has no database driver dependencies,
// making it suitable for offline tools (such as printing a bound batch)
// that need dialect behavior without a database connection.
package dialect

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/leaptds/pkg/core"
)

// Literal layouts. datetime carries millisecond precision.
const (
	timestampLayout = "2006-01-02T15:04:05.000"
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05.000"
)

// backslashNewline matches a backslash followed by a line break. The server
// treats that pair inside a string literal as a line continuation and drops
// it, so it has to be written as an escaped backslash plus a doubled break.
var backslashNewline = regexp.MustCompile(`\\(\r\n|\n)`)

// Dialect renders Go values as SQL Server literals.
type Dialect struct {
	// Unicode selects N'...' string literals.
	Unicode bool

	// Location is the zone timestamps are rendered in. Nil uses UTC.
	Location *time.Location
}

// New returns a dialect using unicode strings and UTC timestamps.
func New() *Dialect {
	return &Dialect{Unicode: true, Location: time.UTC}
}

var _ core.Dialect = (*Dialect)(nil)

// Escape doubles single quotes so s can be embedded in a quoted literal.
func (d *Dialect) Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Literal returns the SQL literal text for v.
func (d *Dialect) Literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return floatLiteral(float64(x), 32)
	case float64:
		return floatLiteral(x, 64)
	case *big.Int:
		return x.String(), nil
	case *big.Float:
		if x.IsInf() {
			return "", fmt.Errorf("infinite value %s has no SQL literal", x.String())
		}
		return x.Text('f', -1), nil
	case *big.Rat:
		return ratLiteral(x), nil
	case json.Number:
		if _, err := strconv.ParseFloat(string(x), 64); err != nil {
			return "", fmt.Errorf("invalid number %q: %w", string(x), err)
		}
		return string(x), nil
	case string:
		return d.stringLiteral(x), nil
	case []byte:
		return "0x" + strings.ToUpper(hex.EncodeToString(x)), nil
	case time.Time:
		return "'" + x.In(d.location()).Format(timestampLayout) + "'", nil
	case civil.DateTime:
		return "'" + x.In(time.UTC).Format(timestampLayout) + "'", nil
	case civil.Date:
		return "'" + x.In(time.UTC).Format(dateLayout) + "'", nil
	case civil.Time:
		return "'" + time.Date(0, 1, 1, x.Hour, x.Minute, x.Second, x.Nanosecond, time.UTC).Format(timeLayout) + "'", nil
	case fmt.Stringer:
		return d.stringLiteral(x.String()), nil
	default:
		return "", fmt.Errorf("cannot literalize value of type %T", v)
	}
}

func (d *Dialect) stringLiteral(s string) string {
	body := backslashNewline.ReplaceAllString(d.Escape(s), `\\${1}${1}`)
	if d.Unicode {
		return "N'" + body + "'"
	}
	return "'" + body + "'"
}

func (d *Dialect) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

func floatLiteral(f float64, bitSize int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("float value %v has no SQL literal", f)
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize), nil
}

// ratLiteral renders r exactly when it is an integer, otherwise with 18
// fractional digits and trailing zeros removed.
func ratLiteral(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ParseLocation resolves a timezone setting: "utc", "local" or an IANA name.
func ParseLocation(name string) (*time.Location, error) {
	switch strings.ToLower(name) {
	case "", "utc":
		return time.UTC, nil
	case "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
