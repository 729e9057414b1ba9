package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leaptds/pkg/adapter"
	"github.com/leapstack-labs/leaptds/pkg/adapters/mssql/dialect"
	"github.com/leapstack-labs/leaptds/pkg/core"
)

// MockServer is the server name of pools built by NewMockPool.
const MockServer = "default"

// mockAdapter opens a fixed sqlmock database.
type mockAdapter struct {
	name string
	db   *sql.DB
}

func (a *mockAdapter) Name() string { return a.name }

func (a *mockAdapter) Open(_ context.Context, _ adapter.Config) (*adapter.Handle, error) {
	return &adapter.Handle{DB: a.db, Dialect: dialect.New()}, nil
}

// NewMockPool returns a pool whose only server, MockServer, is backed by
// sqlmock. Queries are matched verbatim. The pool is closed when the test ends.
func NewMockPool(t testing.TB) (*adapter.Pool, sqlmock.Sqlmock) {
	t.Helper()
	return newMockPool(t, false)
}

// NewMockPoolWithPings is NewMockPool with ping expectations enabled, so
// tests can drive IsActive with mock.ExpectPing.
func NewMockPoolWithPings(t testing.TB) (*adapter.Pool, sqlmock.Sqlmock) {
	t.Helper()
	return newMockPool(t, true)
}

func newMockPool(t testing.TB, monitorPings bool) (*adapter.Pool, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(monitorPings))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	name := "sqlmock_" + strings.ToLower(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	adapter.Register(name, func(_ *slog.Logger) adapter.Adapter { return &mockAdapter{name: name, db: db} })

	pool := adapter.NewPool(map[string]core.ServerConfig{
		MockServer: {Type: name},
	}, NewTestLogger(t))
	t.Cleanup(func() { _ = pool.Close() })

	return pool, mock
}
