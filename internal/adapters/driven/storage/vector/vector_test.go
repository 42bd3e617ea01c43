package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	in := []float32{0, 1.5, -2.25, float32(math.Pi)}

	out, err := Decode(Encode(in))

	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Len(t, Encode(in), 16)
}

func TestEncode_Empty(t *testing.T) {
	assert.Nil(t, Encode(nil))
	out, err := Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDecode_InvalidLength(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestCosineDistance_DimensionMismatch(t *testing.T) {
	_, err := CosineDistance([]float32{1}, []float32{1, 2})
	assert.Error(t, err)
}

func TestTopK(t *testing.T) {
	in := []Scored{
		{Index: 0, Distance: 0.5},
		{Index: 1, Distance: 0.1},
		{Index: 2, Distance: 0.5},
		{Index: 3, Distance: 0.9},
	}

	out := TopK(in, 3)

	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].Index)
	assert.Equal(t, 0, out[1].Index)
	assert.Equal(t, 2, out[2].Index)
	assert.Len(t, TopK([]Scored{{Index: 0}}, 10), 1)
}

func TestMagnitude(t *testing.T) {
	assert.InDelta(t, 5.0, Magnitude([]float32{3, 4}), 1e-9)
}
