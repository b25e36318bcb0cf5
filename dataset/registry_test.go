package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/seqkit/core"
)

func TestRegistry_EncodeFirstSeenOrder(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, 0, r.Encode("b"))
	assert.Equal(t, 1, r.Encode("a"))
	assert.Equal(t, 0, r.Encode("b"))
	assert.Equal(t, 2, r.Encode("c"))

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Size())
	assert.Equal(t, []string{"b", "a", "c"}, r.Keys())

	code, ok := r.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, code)
	_, ok = r.Lookup("zzz")
	assert.False(t, ok)
	assert.Equal(t, 3, r.Len(), "Lookup must not assign")
}

func TestRegistry_Decode(t *testing.T) {
	r := NewRegistry()
	r.Encode("x")
	r.Encode("y")

	raw, ok := r.Decode(1)
	require.True(t, ok)
	assert.Equal(t, "y", raw)
	_, ok = r.Decode(2)
	assert.False(t, ok)
	_, ok = r.Decode(-1)
	assert.False(t, ok)
}

func TestRegistry_ShiftAll(t *testing.T) {
	r := NewRegistry()
	r.Encode("x")
	r.Encode("y")

	require.True(t, r.ShiftAll())
	assert.True(t, r.Shifted())
	assert.Equal(t, map[string]int{"x": 1, "y": 2}, r.Map())
	assert.Equal(t, 3, r.Size())
	assert.Equal(t, 2, r.Len())

	_, ok := r.Decode(PaddingCode)
	assert.False(t, ok, "padding code decodes to nothing")
	raw, ok := r.Decode(1)
	require.True(t, ok)
	assert.Equal(t, "x", raw)

	// 第二次调用不再移位
	assert.False(t, r.ShiftAll())
	assert.Equal(t, map[string]int{"x": 1, "y": 2}, r.Map())

	// 移位后新 ID 从 Len()+1 开始，不会拿到 PaddingCode
	assert.Equal(t, 3, r.Encode("z"))
}

func TestNewRegistryFrom(t *testing.T) {
	tests := []struct {
		name        string
		seed        map[string]int
		wantShifted bool
		wantNext    int
	}{
		{"empty", map[string]int{}, false, 0},
		{"zero based", map[string]int{"a": 0, "b": 1}, false, 2},
		{"already shifted", map[string]int{"a": 1, "b": 2}, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistryFrom(tt.seed)
			require.NoError(t, err)
			assert.Equal(t, tt.wantShifted, r.Shifted())
			assert.Equal(t, tt.wantNext, r.Encode("new"))
		})
	}
}

func TestNewRegistryFrom_RejectsNonContiguous(t *testing.T) {
	tests := []struct {
		name string
		seed map[string]int
	}{
		{"gap", map[string]int{"a": 0, "b": 5}},
		{"duplicate", map[string]int{"a": 0, "b": 0}},
		{"starts at two", map[string]int{"a": 2, "b": 3}},
		{"negative", map[string]int{"a": -1, "b": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistryFrom(tt.seed)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, ErrInvalidRegistry))
			assert.True(t, core.IsInvalidInput(err))
		})
	}
}

func TestNewRegistryFrom_PreservesCodes(t *testing.T) {
	seed := map[string]int{"u3": 2, "u1": 0, "u2": 1}
	r, err := NewRegistryFrom(seed)
	require.NoError(t, err)

	assert.Equal(t, seed, r.Map())
	assert.Equal(t, []string{"u1", "u2", "u3"}, r.Keys())

	// 修改原始 map 不影响 Registry
	seed["u4"] = 3
	_, ok := r.Lookup("u4")
	assert.False(t, ok)
}
