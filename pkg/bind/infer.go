package bind

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/leaptds/pkg/core"
)

// valueKind is the closed set of value shapes the server distinguishes when
// declaring a parameter type.
type valueKind int

const (
	kindSmallInt valueKind = iota
	kindBigInt
	kindFloat
	kindNumeric
	kindTimeOfDay
	kindDateTime
	kindDate
	kindNull
	kindTrue
	kindFalse
	kindBlob
	kindOther

	kindCount
)

// wireTypes is indexed by valueKind.
var wireTypes = [kindCount]string{
	kindSmallInt:  "int",
	kindBigInt:    "bigint",
	kindFloat:     "double precision",
	kindNumeric:   "numeric",
	kindTimeOfDay: "time",
	kindDateTime:  "datetime",
	kindDate:      "date",
	kindNull:      "nvarchar(max)",
	kindTrue:      "int",
	kindFalse:     "int",
	kindBlob:      "varbinary(max)",
	kindOther:     "nvarchar(max)",
}

// Infer returns the literal text and wire type for v. Values that need a
// textual SQL form are rendered by lit.
func Infer(lit core.Literalizer, v any) (core.TypedLiteral, error) {
	v, err := normalize(v)
	if err != nil {
		return core.TypedLiteral{}, err
	}

	kind := classify(v)
	typed := core.TypedLiteral{WireType: wireTypes[kind]}

	switch kind {
	case kindSmallInt, kindBigInt:
		typed.Literal = integerText(v)
		return typed, nil
	case kindNull:
		typed.Literal = "NULL"
		return typed, nil
	case kindTrue:
		typed.Literal = "1"
		return typed, nil
	case kindFalse:
		typed.Literal = "0"
		return typed, nil
	case kindFloat, kindNumeric, kindTimeOfDay, kindDateTime, kindDate, kindBlob, kindOther:
		text, err := lit.Literal(v)
		if err != nil {
			return core.TypedLiteral{}, fmt.Errorf("failed to literalize %T: %w", v, err)
		}
		typed.Literal = text
		return typed, nil
	default:
		panic(fmt.Sprintf("bind: unhandled value kind %d", kind))
	}
}

// classify maps a normalized value to its kind. Order matters: the first
// matching case wins.
func classify(v any) valueKind {
	switch x := v.(type) {
	case int64:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return kindSmallInt
		}
		return kindBigInt
	case uint64:
		switch {
		case x <= math.MaxInt32:
			return kindSmallInt
		case x <= math.MaxInt64:
			return kindBigInt
		}
		return kindNumeric
	case *big.Int:
		if x.IsInt64() {
			return classify(x.Int64())
		}
		return kindNumeric
	case float64:
		return kindFloat
	case *big.Float, *big.Rat, json.Number:
		return kindNumeric
	case civil.Time:
		return kindTimeOfDay
	case time.Time, civil.DateTime:
		return kindDateTime
	case civil.Date:
		return kindDate
	case nil:
		return kindNull
	case bool:
		if x {
			return kindTrue
		}
		return kindFalse
	case []byte:
		return kindBlob
	default:
		return kindOther
	}
}

// normalize unwraps driver.Valuer values and pointers and converts named
// basic types to their underlying type, so classify only sees a small set
// of concrete types.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Slice) && rv.IsNil() {
		return nil, nil
	}

	switch v.(type) {
	case *big.Int, *big.Float, *big.Rat, json.Number, time.Time,
		civil.Date, civil.Time, civil.DateTime, []byte, string:
		return v, nil
	}

	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := valuer.Value()
		if err != nil {
			return nil, fmt.Errorf("failed to read value of %T: %w", v, err)
		}
		if _, again := inner.(driver.Valuer); again {
			return inner, nil
		}
		return normalize(inner)
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
		if rv.CanInterface() {
			if _, ok := rv.Interface().(driver.Valuer); ok {
				return normalize(rv.Interface())
			}
		}
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32:
		// Go through the decimal text so 0.1 stays 0.1 instead of 0.10000000149011612.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(rv.Float(), 'g', -1, 32), 64)
		return f, nil
	case reflect.Float64:
		return rv.Float(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			return s.String(), nil
		}
		return rv.String(), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), nil
		}
	}
	return rv.Interface(), nil
}

func integerText(v any) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case *big.Int:
		return x.String()
	}
	return fmt.Sprint(v)
}
