package mssql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		check   func(t *testing.T, p *Params)
		wantErr string
	}{
		{
			name: "empty",
			raw:  nil,
			check: func(t *testing.T, p *Params) {
				assert.Equal(t, 0, p.TextSize)
				assert.True(t, p.Unicode())
				assert.Empty(t, p.SessionInitSQL())
			},
		},
		{
			name: "all fields",
			raw: map[string]any{
				"textsize":          2147483647,
				"app_name":          "reports",
				"conn_timeout":      30,
				"max_open_conns":    10,
				"max_idle_conns":    2,
				"conn_max_lifetime": "5m",
				"unicode_strings":   false,
				"timezone":          "local",
			},
			check: func(t *testing.T, p *Params) {
				assert.Equal(t, 2147483647, p.TextSize)
				assert.Equal(t, "reports", p.AppName)
				assert.Equal(t, 30, p.ConnTimeout)
				assert.Equal(t, 10, p.MaxOpenConns)
				assert.Equal(t, 2, p.MaxIdleConns)
				assert.Equal(t, 5*time.Minute, p.ConnMaxLifetime)
				assert.False(t, p.Unicode())
				assert.Equal(t, "local", p.Timezone)
				assert.Equal(t, "SET TEXTSIZE 2147483647", p.SessionInitSQL())
			},
		},
		{
			name: "weakly typed values from env",
			raw:  map[string]any{"textsize": "65536", "unicode_strings": "true"},
			check: func(t *testing.T, p *Params) {
				assert.Equal(t, 65536, p.TextSize)
				assert.True(t, p.Unicode())
			},
		},
		{
			name:    "unknown key",
			raw:     map[string]any{"text_size": 10},
			wantErr: "invalid mssql params",
		},
		{
			name:    "negative textsize",
			raw:     map[string]any{"textsize": -5},
			wantErr: "textsize must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseParams(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}
