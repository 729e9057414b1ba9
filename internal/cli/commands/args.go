package commands

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/leaptds/pkg/core"
)

// argTypes lists the type prefixes accepted in --arg values, e.g. "id=int:5".
var argTypes = []string{"str", "int", "float", "numeric", "bool", "hex", "date", "time", "datetime", "null"}

// parseArgs parses name=value pairs. Names ending in OUT become output
// arguments, as do the names given with --out.
func parseArgs(in, out []string) ([]core.Argument, error) {
	args := make([]core.Argument, 0, len(in)+len(out))
	for _, raw := range in {
		name, value, err := parseArg(raw)
		if err != nil {
			return nil, err
		}
		args = append(args, core.Arg(name, value))
	}
	for _, raw := range out {
		name, value, err := parseArg(raw)
		if err != nil {
			return nil, err
		}
		args = append(args, core.OutArg(name, value))
	}
	return args, nil
}

func parseArg(raw string) (string, any, error) {
	name, text, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid argument %q (expected name=value)", raw)
	}
	value, err := parseArgValue(text)
	if err != nil {
		return "", nil, fmt.Errorf("argument %s: %w", name, err)
	}
	return name, value, nil
}

// parseArgValue converts the text of an argument. An explicit "type:" prefix
// forces the type; otherwise the most specific of null, bool, integer, float,
// 0x-prefixed hex and string is used.
func parseArgValue(text string) (any, error) {
	if typ, rest, ok := strings.Cut(text, ":"); ok && isArgType(typ) {
		return parseTyped(typ, rest)
	}

	switch {
	case strings.EqualFold(text, "null"):
		return nil, nil
	case text == "true" || text == "false":
		return text == "true", nil
	case strings.HasPrefix(text, "0x"):
		if b, err := hex.DecodeString(text[2:]); err == nil {
			return b, nil
		}
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !strings.ContainsAny(text, "iInN") {
		return f, nil
	}
	return text, nil
}

func isArgType(s string) bool {
	for _, t := range argTypes {
		if t == s {
			return true
		}
	}
	return false
}

func parseTyped(typ, text string) (any, error) {
	switch typ {
	case "str":
		return text, nil
	case "int":
		return strconv.ParseInt(text, 10, 64)
	case "float":
		return strconv.ParseFloat(text, 64)
	case "numeric":
		r, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, fmt.Errorf("invalid numeric %q", text)
		}
		return r, nil
	case "bool":
		return strconv.ParseBool(text)
	case "hex":
		return hex.DecodeString(strings.TrimPrefix(text, "0x"))
	case "date":
		return civil.ParseDate(text)
	case "time":
		return civil.ParseTime(text)
	case "datetime":
		if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
			return t, nil
		}
		return civil.ParseDateTime(text)
	case "null":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown argument type %q", typ)
}
