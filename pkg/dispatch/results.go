package dispatch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leaptds/pkg/core"
)

// firstValue returns the first column of the first row in any result set.
// It stops reading as soon as the value is found.
func firstValue(cur core.Cursor) (any, error) {
	for {
		if cur.Next() {
			values, err := cur.Values()
			if err != nil {
				return nil, err
			}
			if len(values) == 0 {
				return nil, nil
			}
			return values[0], nil
		}
		if err := cur.Err(); err != nil {
			return nil, err
		}
		if !cur.NextResultSet() {
			return nil, cur.Err()
		}
	}
}

// lastResultRow reads every result set and returns the first row of the last
// one that had rows. Output projections are always the final result set.
func lastResultRow(cur core.Cursor) (*core.Row, error) {
	var last *core.Row
	for {
		first := true
		for cur.Next() {
			if !first {
				continue
			}
			first = false
			row, err := currentRow(cur)
			if err != nil {
				return nil, err
			}
			last = row
		}
		if err := cur.Err(); err != nil {
			return nil, err
		}
		if !cur.NextResultSet() {
			break
		}
	}
	return last, cur.Err()
}

// drain reads and discards every row of every result set.
func drain(cur core.Cursor) error {
	for {
		for cur.Next() {
		}
		if err := cur.Err(); err != nil {
			return err
		}
		if !cur.NextResultSet() {
			return cur.Err()
		}
	}
}

func currentRow(cur core.Cursor) (*core.Row, error) {
	cols, err := cur.Columns()
	if err != nil {
		return nil, err
	}
	values, err := cur.Values()
	if err != nil {
		return nil, err
	}
	return &core.Row{Columns: cols, Values: values}, nil
}

// ExecuteRowCount runs sqlText and returns the number of rows it affected.
func (d *Dispatcher) ExecuteRowCount(ctx context.Context, sqlText string, args ...core.Argument) (int64, error) {
	res, err := d.Execute(ctx, core.Request{SQL: sqlText, Args: args, Mode: core.ModeRowCount})
	if err != nil {
		return 0, err
	}
	return toInt64(res.Value)
}

// ExecuteInsertID runs sqlText and returns the identity value it generated,
// or 0 when it generated none.
func (d *Dispatcher) ExecuteInsertID(ctx context.Context, sqlText string, args ...core.Argument) (int64, error) {
	res, err := d.Execute(ctx, core.Request{SQL: sqlText, Args: args, Mode: core.ModeScalarInsertID})
	if err != nil {
		return 0, err
	}
	return toInt64(res.Value)
}

// ExecuteEachRow runs sqlText for its side effects, e.g. DDL, discarding
// every result set.
func (d *Dispatcher) ExecuteEachRow(ctx context.Context, sqlText string, args ...core.Argument) error {
	_, err := d.Execute(ctx, core.Request{SQL: sqlText, Args: args, Mode: core.ModeEachRow})
	return err
}

// ExecuteOutputs runs sqlText and returns its output parameters plus the
// AffectedRows column. At least one argument must be an output argument.
func (d *Dispatcher) ExecuteOutputs(ctx context.Context, sqlText string, args ...core.Argument) (*core.Row, error) {
	req := core.Request{SQL: sqlText, Args: args, Mode: core.ModeEachRow}
	if !req.HasOutputs() {
		return nil, fmt.Errorf("no output arguments given")
	}
	res, err := d.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Row, nil
}

// Each runs sqlText and calls fn for every row of its first result set.
// Output arguments are rejected; use ExecuteOutputs for them.
func (d *Dispatcher) Each(ctx context.Context, sqlText string, args []core.Argument, fn func(*core.Row) error) error {
	req := core.Request{SQL: sqlText, Args: args, Mode: core.ModeRaw}
	if req.HasOutputs() {
		return fmt.Errorf("each does not accept output arguments")
	}
	req.Yield = func(cur core.Cursor) error {
		for cur.Next() {
			row, err := currentRow(cur)
			if err != nil {
				return err
			}
			if err := fn(row); err != nil {
				return err
			}
		}
		return cur.Err()
	}
	_, err := d.Execute(ctx, req)
	return err
}

// toInt64 converts a scalar read from the server. NULL converts to 0.
func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected scalar type %T", v)
	}
}
