package layers

import (
	"math/rand"
	"testing"

	"txtclassify_lib/nn"
	"txtclassify_lib/tensor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConv1dIdentityKernel(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	conv := NewConv1d(3, rng)
	for i := range conv.K.Data {
		conv.K.Data[i] = 0
	}
	for b := 0; b < 3; b++ {
		conv.K.Set(1, b, b)
	}

	x := tensor.New(2, 3)
	x.Data = []float64{1, 2, 3, 4, 5, 6}
	out, err := conv.Forward(x, nn.Train)
	require.NoError(t, err)
	assert.Equal(t, x.Data, out.Data, "identity kernel should preserve input")
}

func TestConv1dMixesColumns(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	conv := NewConv1d(2, rng)
	conv.K.Data = []float64{0, 1, 1, 0} // swap the two batch positions
	conv.B.Data = []float64{10, 20}

	x := tensor.New(1, 2)
	x.Data = []float64{3, 7}
	out, err := conv.Forward(x, nn.Train)
	require.NoError(t, err)
	assert.Equal(t, []float64{17, 23}, out.Data)
}

func TestConv1dBackward(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	conv := NewConv1d(2, rng)
	conv.K.Data = []float64{1, 2, 3, 4}

	x := tensor.New(1, 2)
	x.Data = []float64{5, 6}
	_, err := conv.Forward(x, nn.Train)
	require.NoError(t, err)

	grad := tensor.New(1, 2)
	grad.Data = []float64{1, -1}
	gradIn, err := conv.Backward(grad)
	require.NoError(t, err)

	// dK[b,b'] = g[b]·x[b'], dB[b] = g[b], dx[b'] = Σ_b K[b,b']·g[b].
	assert.Equal(t, []float64{5, 6, -5, -6}, conv.gradK.Data)
	assert.Equal(t, []float64{1, -1}, conv.gradB.Data)
	assert.Equal(t, []float64{1 - 3, 2 - 4}, gradIn.Data)
}

func TestConv1dBatchWidthBound(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	conv := NewConv1d(25, rng)

	_, err := conv.Forward(tensor.New(26, 10), nn.Train)
	assert.Error(t, err, "conv layer is tied to its construction batch width")

	_, err = conv.Forward(tensor.New(26, 25), nn.Train)
	assert.NoError(t, err)
}
