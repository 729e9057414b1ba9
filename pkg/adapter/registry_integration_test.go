package adapter_test

import (
	"testing"

	"github.com/leapstack-labs/leaptds/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leaptds/pkg/adapters/mssql"
)

func TestMSSQLSelfRegistration(t *testing.T) {
	// SQL Server should be auto-registered via init() under both names
	assert.True(t, adapter.IsRegistered("mssql"), "mssql adapter should be auto-registered")
	assert.True(t, adapter.IsRegistered("sqlserver"), "sqlserver alias should be auto-registered")
}

func TestListAdapters(t *testing.T) {
	adapters := adapter.ListAdapters()

	assert.Contains(t, adapters, "mssql", "mssql should be in adapter list")
	assert.Contains(t, adapters, "sqlserver", "sqlserver should be in adapter list")
}

func TestIsRegistered(t *testing.T) {
	tests := []struct {
		name        string
		adapterName string
		expected    bool
	}{
		{"mssql registered", "mssql", true},
		{"sqlserver registered", "sqlserver", true},
		{"unknown not registered", "unknown_db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.IsRegistered(tt.adapterName)
			assert.Equal(t, tt.expected, got, "IsRegistered(%q)", tt.adapterName)
		})
	}
}

func TestGet(t *testing.T) {
	factory, ok := adapter.Get("mssql")
	require.True(t, ok, "Get(mssql) should return true")
	require.NotNil(t, factory, "Get(mssql) should return non-nil factory")

	_, ok = adapter.Get("nonexistent")
	assert.False(t, ok, "Get(nonexistent) should return false")
}

func TestNewAdapter_Success(t *testing.T) {
	cfg := adapter.Config{
		Type: "mssql",
		Host: "db.internal",
	}

	adp, err := adapter.NewAdapter(cfg, nil)
	require.NoError(t, err, "NewAdapter(mssql) failed")
	require.NotNil(t, adp, "NewAdapter(mssql) returned nil adapter")
	assert.Equal(t, "mssql", adp.Name())
}

func TestNewAdapter_UnknownType(t *testing.T) {
	cfg := adapter.Config{
		Type: "unknown_adapter",
	}

	_, err := adapter.NewAdapter(cfg, nil)
	require.Error(t, err, "NewAdapter(unknown_adapter) should fail")

	var unknownErr *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)

	assert.Equal(t, "unknown_adapter", unknownErr.Type, "error type")
	assert.Contains(t, unknownErr.Available, "mssql", "Available adapters should include mssql")
}
