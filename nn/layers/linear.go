// Package layers holds the network building blocks. All layers work on
// column-major batches: a [features, batch] tensor carries one sample
// per column.
package layers

import (
	"fmt"
	"math"
	"math/rand"

	"txtclassify_lib/nn"
	"txtclassify_lib/tensor"
)

// Linear is a fully-connected layer computing y = W·x + b.
type Linear struct {
	W *tensor.Tensor // [out, in]
	B *tensor.Tensor // [out]

	gradW *tensor.Tensor
	gradB *tensor.Tensor

	lastInput *tensor.Tensor
}

// NewLinear sets up an inDim→outDim layer with Xavier-scaled weights.
func NewLinear(inDim, outDim int, rng *rand.Rand) *Linear {
	l := &Linear{
		W:     tensor.New(outDim, inDim),
		B:     tensor.New(outDim),
		gradW: tensor.New(outDim, inDim),
		gradB: tensor.New(outDim),
	}
	scale := math.Sqrt(2.0 / float64(inDim+outDim))
	for i := range l.W.Data {
		l.W.Data[i] = rng.NormFloat64() * scale
	}
	return l
}

// Forward computes W·x + b for a [in, batch] input.
func (l *Linear) Forward(x *tensor.Tensor, _ nn.Mode) (*tensor.Tensor, error) {
	if len(x.Shape) != 2 {
		return nil, fmt.Errorf("linear expects [in, batch] input, got %v", x.Shape)
	}
	if x.Shape[0] != l.W.Shape[1] {
		return nil, fmt.Errorf("linear expects %d input features, got %d", l.W.Shape[1], x.Shape[0])
	}
	l.lastInput = x.Clone()
	wx, err := tensor.MatMul(l.W, x)
	if err != nil {
		return nil, err
	}
	batch := x.Shape[1]
	for j := 0; j < l.W.Shape[0]; j++ {
		for b := 0; b < batch; b++ {
			wx.Data[j*batch+b] += l.B.Data[j]
		}
	}
	return wx, nil
}

// Backward accumulates dL/dW = g·xᵀ and dL/db = Σ g, and returns
// dL/dx = Wᵀ·g.
func (l *Linear) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if l.lastInput == nil {
		return nil, fmt.Errorf("linear: backward before forward")
	}
	inDim, outDim := l.W.Shape[1], l.W.Shape[0]
	batch := l.lastInput.Shape[1]
	if len(grad.Shape) != 2 || grad.Shape[0] != outDim || grad.Shape[1] != batch {
		return nil, fmt.Errorf("linear: gradient shape %v does not match output [%d, %d]", grad.Shape, outDim, batch)
	}
	for j := 0; j < outDim; j++ {
		for b := 0; b < batch; b++ {
			g := grad.Data[j*batch+b]
			l.gradB.Data[j] += g
			for i := 0; i < inDim; i++ {
				l.gradW.Data[j*inDim+i] += g * l.lastInput.Data[i*batch+b]
			}
		}
	}
	gradIn := tensor.New(inDim, batch)
	for i := 0; i < inDim; i++ {
		for b := 0; b < batch; b++ {
			val := 0.0
			for j := 0; j < outDim; j++ {
				val += l.W.Data[j*inDim+i] * grad.Data[j*batch+b]
			}
			gradIn.Data[i*batch+b] = val
		}
	}
	return gradIn, nil
}

// Params exposes W and b for the optimizer.
func (l *Linear) Params() []*nn.Param {
	return []*nn.Param{
		{Value: l.W, Grad: l.gradW},
		{Value: l.B, Grad: l.gradB},
	}
}
