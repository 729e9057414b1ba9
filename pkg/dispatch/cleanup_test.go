package dispatch_test

import (
	"context"
	"errors"
	"testing"

	mssqldb "github.com/denisenkom/go-mssqldb"
	"github.com/leapstack-labs/leaptds/internal/testutil"
	"github.com/leapstack-labs/leaptds/pkg/adapters/mssql/dialect"
	"github.com/leapstack-labs/leaptds/pkg/core"
	"github.com/leapstack-labs/leaptds/pkg/dberr"
	"github.com/leapstack-labs/leaptds/pkg/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCursor serves one result set with a single column.
type stubCursor struct {
	rows      [][]any
	pos       int
	valuesErr error
	done      bool
	closed    bool
}

func (c *stubCursor) Columns() ([]string, error) { return []string{"n"}, nil }

func (c *stubCursor) Next() bool {
	if c.pos < len(c.rows) {
		c.pos++
		return true
	}
	return false
}

func (c *stubCursor) Values() ([]any, error) {
	if c.valuesErr != nil {
		return nil, c.valuesErr
	}
	return c.rows[c.pos-1], nil
}

func (c *stubCursor) NextResultSet() bool {
	c.done = true
	return false
}

func (c *stubCursor) Err() error { return nil }

func (c *stubCursor) Close() error {
	c.closed = true
	return nil
}

type stubConn struct {
	*dialect.Dialect
	cur       *stubCursor
	cancelErr error
	cancelled int
}

func (c *stubConn) Execute(_ context.Context, _ string) (core.Cursor, error) {
	return c.cur, nil
}

func (c *stubConn) IsActive(_ context.Context) bool { return true }

func (c *stubConn) Pending() bool {
	return !c.cur.closed && !c.cur.done
}

func (c *stubConn) CancelPending() error {
	c.cancelled++
	_ = c.cur.Close()
	return c.cancelErr
}

type stubPool struct {
	conn     *stubConn
	released int
}

func (p *stubPool) Acquire(_ context.Context, _ string) (core.Conn, func(), error) {
	return p.conn, func() { p.released++ }, nil
}

func newStubDispatcher(t *testing.T, cur *stubCursor, cancelErr error) (*dispatch.Dispatcher, *stubPool) {
	t.Helper()
	pool := &stubPool{conn: &stubConn{Dialect: dialect.New(), cur: cur, cancelErr: cancelErr}}
	return dispatch.New(pool, dispatch.WithLogger(testutil.NewTestLogger(t))), pool
}

func TestDispatcher_CancelsUnreadResults(t *testing.T) {
	tests := []struct {
		name string
		run  func(*dispatch.Dispatcher) (int64, error)
	}{
		{"row count", func(d *dispatch.Dispatcher) (int64, error) {
			return d.ExecuteRowCount(context.Background(), "UPDATE t SET a = 1")
		}},
		{"insert id", func(d *dispatch.Dispatcher) (int64, error) {
			return d.ExecuteInsertID(context.Background(), "INSERT INTO t DEFAULT VALUES")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := &stubCursor{rows: [][]any{{int64(4)}, {int64(7)}}}
			d, pool := newStubDispatcher(t, cur, nil)

			n, err := tt.run(d)
			require.NoError(t, err)
			assert.Equal(t, int64(4), n)
			assert.Equal(t, 1, pool.conn.cancelled)
			assert.Equal(t, 1, pool.released)
		})
	}
}

func TestDispatcher_CancelFailureKeepsPrimaryError(t *testing.T) {
	cur := &stubCursor{
		rows:      [][]any{{int64(1)}},
		valuesErr: mssqldb.Error{Number: 2627, Message: "dup"},
	}
	d, pool := newStubDispatcher(t, cur, errors.New("cancel failed"))

	_, err := d.ExecuteRowCount(context.Background(), "INSERT INTO t VALUES (1)")
	require.Error(t, err)
	assert.ErrorIs(t, err, dberr.ErrUniqueViolation)
	assert.NotContains(t, err.Error(), "cancel failed")

	var e *dberr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, int32(2627), e.Number)

	assert.Equal(t, 1, pool.conn.cancelled)
	assert.Equal(t, 1, pool.released)
}

func TestDispatcher_NoCancelAfterDrain(t *testing.T) {
	cur := &stubCursor{rows: [][]any{{int64(1)}, {int64(2)}}}
	d, pool := newStubDispatcher(t, cur, errors.New("should not be called"))

	require.NoError(t, d.ExecuteEachRow(context.Background(), "CREATE TABLE t (id int)"))
	assert.Equal(t, 0, pool.conn.cancelled)
	assert.Equal(t, 1, pool.released)
}

func TestDispatcher_EachRejectsOutputs(t *testing.T) {
	cur := &stubCursor{rows: [][]any{{int64(1)}}}
	d, pool := newStubDispatcher(t, cur, nil)

	calls := 0
	err := d.Each(context.Background(), "SET @idOUT = 1",
		[]core.Argument{core.OutArg("id", 0)},
		func(*core.Row) error {
			calls++
			return nil
		})
	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, pool.released, "nothing should be acquired")
}
