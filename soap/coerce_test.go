package soap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceInteger(t *testing.T) {
	v, err := Coerce("ui2", "42")
	require.NoError(t, err)
	assert.Equal(t, ClassInteger, v.Class)
	assert.Equal(t, int64(42), v.Int)
}

func TestCoerceFloat(t *testing.T) {
	v, err := Coerce("r4", "3.5")
	require.NoError(t, err)
	assert.Equal(t, ClassFloat, v.Class)
	assert.InDelta(t, 3.5, v.Float, 0.0001)
}

func TestCoerceString(t *testing.T) {
	v, err := Coerce("string", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Str)
}

func TestCoerceBooleanVariants(t *testing.T) {
	for _, s := range []string{"1", "true", "yes"} {
		v, err := Coerce("boolean", s)
		require.NoError(t, err)
		assert.True(t, v.Bool)
	}
	for _, s := range []string{"0", "false", "no"} {
		v, err := Coerce("boolean", s)
		require.NoError(t, err)
		assert.False(t, v.Bool)
	}
}

func TestCoerceBase64(t *testing.T) {
	v, err := Coerce("bin.base64", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v.Bytes)
}

func TestCoerceUnknownTypeErrors(t *testing.T) {
	_, err := Coerce("not-a-real-type", "x")
	assert.Error(t, err)
}

func TestCoerceUnparseableIntegerErrors(t *testing.T) {
	_, err := Coerce("ui2", "not-a-number")
	assert.Error(t, err)
}
