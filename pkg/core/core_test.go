package core_test

import (
	"testing"

	"github.com/leapstack-labs/leaptds/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArg(t *testing.T) {
	tests := []struct {
		name       string
		arg        core.Argument
		wantOutput bool
		wantBase   string
	}{
		{"input", core.Arg("id", 1), false, "id"},
		{"marker suffix", core.Arg("idOUT", 0), true, "id"},
		{"marker is case sensitive", core.Arg("idout", 0), false, "idout"},
		{"dotted output", core.Arg("user.idOUT", 0), true, "user.id"},
		{"out arg", core.OutArg("total", 0), true, "total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOutput, tt.arg.Output)
			assert.Equal(t, tt.wantBase, tt.arg.BaseName())
		})
	}

	assert.Equal(t, "totalOUT", core.OutArg("total", 0).Name)
}

func TestMode(t *testing.T) {
	for _, m := range []core.Mode{core.ModeRaw, core.ModeRowCount, core.ModeScalarInsertID, core.ModeEachRow} {
		parsed, err := core.ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	assert.Equal(t, "Mode(9)", core.Mode(9).String())

	_, err := core.ParseMode("stream")
	assert.Error(t, err)
}

func TestRequest_HasOutputs(t *testing.T) {
	assert.False(t, core.Request{}.HasOutputs())
	assert.False(t, core.Request{Args: []core.Argument{core.Arg("a", 1)}}.HasOutputs())
	assert.True(t, core.Request{Args: []core.Argument{core.Arg("a", 1), core.OutArg("b", 0)}}.HasOutputs())
}

func TestRow(t *testing.T) {
	r := &core.Row{Columns: []string{"id", "AffectedRows"}, Values: []any{int64(7), int64(1)}}

	v, ok := r.Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]any{"id": int64(7), "AffectedRows": int64(1)}, r.Map())

	var nilRow *core.Row
	_, ok = nilRow.Get("id")
	assert.False(t, ok)
}
