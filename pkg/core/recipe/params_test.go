package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesNumbers(t *testing.T) {
	v := Values{
		"i":    int64(3),
		"f":    2.5,
		"list": []any{1, int64(2), 3.5},
		"bad":  "x",
	}

	n, err := v.Int("i", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = v.Int("f", 0)
	assert.Error(t, err)

	f, err := v.Float("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, f)

	list, err := v.Floats("list")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3.5}, list)

	_, err = v.Float("bad", 0)
	assert.Error(t, err)
}

func TestValuesStringsAndMatrix(t *testing.T) {
	v := Values{
		"names":  []any{"a", "b"},
		"mixed":  []any{"a", 1},
		"matrix": []any{[]any{1, 2}, []float64{3, 4}},
		"flag":   true,
	}

	names, err := v.Strings("names")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	_, err = v.Strings("mixed")
	assert.Error(t, err)

	m, err := v.Matrix("matrix")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, m)

	b, err := v.Bool("flag", false)
	require.NoError(t, err)
	assert.True(t, b)

	none, err := v.Strings("absent")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParamsClone(t *testing.T) {
	p := Params{Layer: Values{"y": 1}}
	c := p.Clone()
	c.Layer["y"] = 2
	assert.Equal(t, 1, p.Layer["y"])
	assert.Nil(t, c.Scene)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "new-scene", ShapeNewScene.String())
	assert.True(t, ShapeGridPosition.ReturnsInfrastructure())
	assert.False(t, ShapeFrame.ReturnsInfrastructure())
}
