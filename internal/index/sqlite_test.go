package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorSerializationRoundTrip(t *testing.T) {
	vectors := [][]float32{
		{},
		{0},
		{1.5, -2.25, 0.0001, -0},
		{3.4e38, -3.4e38, 1.18e-38},
	}
	for _, v := range vectors {
		got, err := deserializeVector(serializeVector(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDeserializeVectorBadLength(t *testing.T) {
	_, err := deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
