// Package dispatch executes requests against pooled connections and extracts
// results according to the request's mode.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leaptds/pkg/bind"
	"github.com/leapstack-labs/leaptds/pkg/core"
	"github.com/leapstack-labs/leaptds/pkg/dberr"
)

// Trailing queries appended to the template before binding.
const (
	rowCountQuery = "; SELECT @@ROWCOUNT AS " + bind.RowCountColumn
	identityQuery = "; SELECT CAST(SCOPE_IDENTITY() AS bigint) AS Ident"
)

// DefaultServer is the server used when neither the request nor the
// dispatcher names one.
const DefaultServer = "default"

// Result is the outcome of one execution.
type Result struct {
	Mode core.Mode

	// Value holds the scalar of ModeRowCount and ModeScalarInsertID, or the
	// Selector's return value in ModeRaw.
	Value any

	// Row holds the output parameter projection when the request had outputs.
	Row *core.Row
}

// Dispatcher runs requests. It holds no per-call state and is safe for
// concurrent use as long as its Pool is.
type Dispatcher struct {
	pool       core.Pool
	classifier *dberr.Classifier
	logger     *slog.Logger
	server     string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Nil uses a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClassifier replaces the SQL Server error classifier.
func WithClassifier(c *dberr.Classifier) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.classifier = c
		}
	}
}

// WithDefaultServer sets the server used by requests that do not name one.
func WithDefaultServer(name string) Option {
	return func(d *Dispatcher) {
		if name != "" {
			d.server = name
		}
	}
}

// New creates a dispatcher over pool.
func New(pool core.Pool, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pool:       pool,
		classifier: dberr.NewClassifier(),
		logger:     slog.New(slog.DiscardHandler),
		server:     DefaultServer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// On returns a dispatcher whose convenience methods run on server.
func (d *Dispatcher) On(server string) *Dispatcher {
	cp := *d
	cp.server = server
	return &cp
}

// Execute runs req on one borrowed connection. Driver failures are returned
// as *dberr.Error. Errors from req.Selector and req.Yield are returned as is
// unless they came from the cursor.
func (d *Dispatcher) Execute(ctx context.Context, req core.Request) (*Result, error) {
	server := req.Server
	if server == "" {
		server = d.server
	}

	conn, release, err := d.pool.Acquire(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection to %s: %w", server, err)
	}
	defer release()

	sqlText, hasOutputs, err := BuildSQL(conn, req)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	start := time.Now()
	cur, err := conn.Execute(ctx, sqlText)
	d.logger.Debug("executed sql",
		slog.String("id", id),
		slog.String("server", server),
		slog.String("mode", req.Mode.String()),
		slog.String("sql", sqlText),
		slog.Duration("duration", time.Since(start)))
	if err != nil {
		return nil, d.fail(ctx, conn, id, err)
	}

	defer func() {
		if !conn.Pending() {
			return
		}
		if cerr := conn.CancelPending(); cerr != nil {
			d.logger.Warn("failed to cancel pending results",
				slog.String("id", id), slog.String("error", cerr.Error()))
		}
	}()

	res := &Result{Mode: req.Mode}
	switch {
	case req.Mode == core.ModeRowCount || req.Mode == core.ModeScalarInsertID:
		res.Value, err = firstValue(cur)
	case hasOutputs:
		res.Row, err = lastResultRow(cur)
	case req.Mode == core.ModeEachRow:
		err = drain(cur)
	case req.Mode == core.ModeRaw:
		wc := &watchedCursor{Cursor: cur}
		switch {
		case req.Selector != nil:
			res.Value, err = req.Selector(wc)
		case req.Yield != nil:
			err = req.Yield(wc)
		}
		if err != nil && fromCursor(err) {
			return nil, d.fail(ctx, conn, id, err)
		}
		if err != nil {
			return nil, err
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unknown execution mode %s", req.Mode)
	}
	if err != nil {
		return nil, d.fail(ctx, conn, id, err)
	}
	return res, nil
}

// BuildSQL returns the batch Execute would send for req: the template with
// the mode's trailing query, wrapped by the binder when arguments are present.
// It also reports whether the batch ends with an output projection.
func BuildSQL(d core.Dialect, req core.Request) (string, bool, error) {
	sqlText := req.SQL
	switch req.Mode {
	case core.ModeRowCount:
		sqlText += rowCountQuery
	case core.ModeScalarInsertID:
		sqlText += identityQuery
	}

	if len(req.Args) == 0 {
		return sqlText, false, nil
	}

	bound, err := bind.New(d, d).Bind(sqlText, req.Args)
	if err != nil {
		return "", false, err
	}
	return bound.SQL, bound.HasOutputs(), nil
}

// fail classifies a driver error, checking whether the connection survived.
func (d *Dispatcher) fail(ctx context.Context, conn core.Conn, id string, err error) error {
	active := conn.IsActive(ctx)
	classified := d.classifier.Wrap(err, active)
	d.logger.Debug("execution failed",
		slog.String("id", id),
		slog.Bool("active", active),
		slog.String("error", classified.Error()))
	return classified
}

// watchedCursor marks the errors it returns so that errors coming back from
// caller code can be told apart from driver errors.
type watchedCursor struct {
	core.Cursor
}

func (w *watchedCursor) Values() ([]any, error) {
	v, err := w.Cursor.Values()
	if err != nil {
		return nil, &cursorError{err: err}
	}
	return v, nil
}

func (w *watchedCursor) Err() error {
	if err := w.Cursor.Err(); err != nil {
		return &cursorError{err: err}
	}
	return nil
}

// cursorError is a driver error surfaced through a watchedCursor.
type cursorError struct {
	err error
}

func (e *cursorError) Error() string { return e.err.Error() }

func (e *cursorError) Unwrap() error { return e.err }

func fromCursor(err error) bool {
	var ce *cursorError
	return errors.As(err, &ce)
}
