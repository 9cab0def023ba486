package layers

import (
	"math"
	"math/rand"
	"testing"

	"txtclassify_lib/nn"
	"txtclassify_lib/tensor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchNormTrainNormalizes(t *testing.T) {
	bn := NewBatchNorm(2)
	rng := rand.New(rand.NewSource(1))
	x := tensor.New(2, 50)
	for i := range x.Data {
		x.Data[i] = rng.NormFloat64()*3 + 7
	}

	out, err := bn.Forward(x, nn.Train)
	require.NoError(t, err)

	// With gamma=1, beta=0 each feature row should come out near
	// zero-mean, unit-variance.
	for i := 0; i < 2; i++ {
		mean, variance := 0.0, 0.0
		for b := 0; b < 50; b++ {
			mean += out.Data[i*50+b]
		}
		mean /= 50
		for b := 0; b < 50; b++ {
			d := out.Data[i*50+b] - mean
			variance += d * d
		}
		variance /= 50
		assert.InDelta(t, 0, mean, 1e-9)
		assert.InDelta(t, 1, variance, 1e-3)
	}
}

func TestBatchNormRunningStatsMove(t *testing.T) {
	bn := NewBatchNorm(1)
	x := tensor.New(1, 4)
	x.Data = []float64{10, 10, 10, 10}
	_, err := bn.Forward(x, nn.Train)
	require.NoError(t, err)

	// One step of momentum 0.1 from (0, 1) toward (10, 0).
	assert.InDelta(t, 1.0, bn.RunningMean.Data[0], 1e-12)
	assert.InDelta(t, 0.9, bn.RunningVar.Data[0], 1e-12)
}

func TestBatchNormEvalUsesRunningStats(t *testing.T) {
	bn := NewBatchNorm(1)
	bn.RunningMean.Data[0] = 5
	bn.RunningVar.Data[0] = 4

	x := tensor.New(1, 3)
	x.Data = []float64{5, 7, 3}
	out, err := bn.Forward(x, nn.Eval)
	require.NoError(t, err)

	invStd := 1 / math.Sqrt(4+1e-5)
	assert.InDelta(t, 0, out.Data[0], 1e-9)
	assert.InDelta(t, 2*invStd, out.Data[1], 1e-9)
	assert.InDelta(t, -2*invStd, out.Data[2], 1e-9)
}

func TestBatchNormBackward(t *testing.T) {
	bn := NewBatchNorm(1)
	x := tensor.New(1, 4)
	x.Data = []float64{1, 2, 3, 4}
	_, err := bn.Forward(x, nn.Train)
	require.NoError(t, err)

	grad := tensor.New(1, 4)
	grad.Data = []float64{1, 0, 0, -1}
	gradIn, err := bn.Backward(grad)
	require.NoError(t, err)
	require.Equal(t, []int{1, 4}, gradIn.Shape)

	// Gradient through the normalization must stay finite and sum to
	// zero across the batch (the mean term removes any constant shift).
	sum := 0.0
	for _, g := range gradIn.Data {
		require.False(t, math.IsNaN(g) || math.IsInf(g, 0))
		sum += g
	}
	assert.InDelta(t, 0, sum, 1e-9)

	// dBeta = sum of grads, dGamma = sum of grad*xhat.
	assert.InDelta(t, 0, bn.gradBeta.Data[0], 1e-12)
	assert.Less(t, bn.gradGamma.Data[0], 0.0)
}

func TestBatchNormErrors(t *testing.T) {
	bn := NewBatchNorm(3)

	_, err := bn.Forward(tensor.New(2, 4), nn.Train)
	assert.Error(t, err, "feature mismatch")

	_, err = bn.Forward(tensor.New(3, 1), nn.Train)
	assert.Error(t, err, "single-sample training batch")

	_, err = bn.Backward(tensor.New(3, 4))
	assert.Error(t, err, "backward before a training forward")
}
