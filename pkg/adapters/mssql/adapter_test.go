package mssql

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/leapstack-labs/leaptds/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name      string
		cfg       adapter.Config
		params    Params
		wantHost  string
		wantPath  string
		wantUser  string
		wantPass  string
		wantQuery map[string]string
	}{
		{
			name:     "defaults",
			cfg:      adapter.Config{},
			wantHost: "localhost:1433",
		},
		{
			name:      "host port and credentials",
			cfg:       adapter.Config{Host: "db.internal", Port: 14330, User: "sa", Password: "p@ss:word", Database: "sales"},
			wantHost:  "db.internal:14330",
			wantUser:  "sa",
			wantPass:  "p@ss:word",
			wantQuery: map[string]string{"database": "sales"},
		},
		{
			name:     "named instance has no port",
			cfg:      adapter.Config{Host: "db.internal", Port: 1433, Instance: "SQLEXPRESS"},
			wantHost: "db.internal",
			wantPath: "/SQLEXPRESS",
		},
		{
			name:   "params and options",
			cfg:    adapter.Config{Host: "db", Options: map[string]string{"encrypt": "disable"}},
			params: Params{AppName: "leaptds", ConnTimeout: 15},
			wantQuery: map[string]string{
				"app name":           "leaptds",
				"connection timeout": "15",
				"encrypt":            "disable",
			},
			wantHost: "db:1433",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildDSN(tt.cfg, &tt.params)

			u, err := url.Parse(dsn)
			require.NoError(t, err, "DSN should be a valid URL: %s", dsn)
			assert.Equal(t, "sqlserver", u.Scheme)
			assert.Equal(t, tt.wantHost, u.Host)
			assert.Equal(t, tt.wantPath, u.Path)

			if tt.wantUser != "" {
				require.NotNil(t, u.User)
				assert.Equal(t, tt.wantUser, u.User.Username())
				pass, _ := u.User.Password()
				assert.Equal(t, tt.wantPass, pass)
			} else {
				assert.Nil(t, u.User)
			}

			q := u.Query()
			assert.Len(t, q, len(tt.wantQuery))
			for k, v := range tt.wantQuery {
				assert.Equal(t, v, q.Get(k), "query %q", k)
			}
		})
	}
}

func TestNewDialect(t *testing.T) {
	off := false
	d, err := NewDialect(&Params{UnicodeStrings: &off, Timezone: "Asia/Tokyo"})
	require.NoError(t, err)
	assert.False(t, d.Unicode)
	assert.Equal(t, "Asia/Tokyo", d.Location.String())

	d, err = NewDialect(&Params{})
	require.NoError(t, err)
	assert.True(t, d.Unicode)
	assert.Equal(t, time.UTC, d.Location)

	_, err = NewDialect(&Params{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestAdapter_OpenRejectsBadParams(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "mssql", a.Name())

	_, err := a.Open(context.Background(), adapter.Config{
		Type:   "mssql",
		Params: map[string]any{"textsize": -1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "textsize")
}
