package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{"nil", nil, 0, false},
		{"int64", int64(5), 5, false},
		{"int32", int32(-2), -2, false},
		{"uint8", uint8(200), 200, false},
		{"float64", float64(3), 3, false},
		{"bytes", []byte("17"), 17, false},
		{"string", "18", 18, false},
		{"bad string", "x", 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toInt64(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
