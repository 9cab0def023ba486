package layers

import (
	"fmt"
	"math"
	"math/rand"

	"txtclassify_lib/nn"
	"txtclassify_lib/tensor"
)

// Conv1d is a kernel-size-1 convolution whose channels are the batch
// positions of a [features, batch] tensor: each output column is a
// learned mix of every input column plus a per-position bias. It is a
// cross-sample reweighting, not a spatial filter, and it ties the layer
// to the batch width fixed at construction.
type Conv1d struct {
	K *tensor.Tensor // [batch, batch]
	B *tensor.Tensor // [batch]

	gradK *tensor.Tensor
	gradB *tensor.Tensor

	lastInput *tensor.Tensor
}

// NewConv1d creates the mixing layer for a fixed batch width.
func NewConv1d(batch int, rng *rand.Rand) *Conv1d {
	c := &Conv1d{
		K:     tensor.New(batch, batch),
		B:     tensor.New(batch),
		gradK: tensor.New(batch, batch),
		gradB: tensor.New(batch),
	}
	scale := math.Sqrt(2.0 / float64(batch+batch))
	for i := range c.K.Data {
		c.K.Data[i] = rng.NormFloat64() * scale
	}
	return c
}

// Forward computes out[i,b] = Σ_b' K[b,b']·x[i,b'] + B[b].
func (c *Conv1d) Forward(x *tensor.Tensor, _ nn.Mode) (*tensor.Tensor, error) {
	batch := c.K.Shape[0]
	if len(x.Shape) != 2 || x.Shape[1] != batch {
		return nil, fmt.Errorf("conv1d is bound to batch width %d, got input %v", batch, x.Shape)
	}
	c.lastInput = x.Clone()
	features := x.Shape[0]
	out := tensor.New(features, batch)
	for i := 0; i < features; i++ {
		for b := 0; b < batch; b++ {
			sum := c.B.Data[b]
			for bp := 0; bp < batch; bp++ {
				sum += c.K.Data[b*batch+bp] * x.Data[i*batch+bp]
			}
			out.Data[i*batch+b] = sum
		}
	}
	return out, nil
}

// Backward accumulates kernel and bias gradients and returns
// dL/dx[i,b'] = Σ_b K[b,b']·g[i,b].
func (c *Conv1d) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if c.lastInput == nil {
		return nil, fmt.Errorf("conv1d: backward before forward")
	}
	batch := c.K.Shape[0]
	features := c.lastInput.Shape[0]
	if len(grad.Shape) != 2 || grad.Shape[0] != features || grad.Shape[1] != batch {
		return nil, fmt.Errorf("conv1d: gradient shape %v does not match [%d, %d]", grad.Shape, features, batch)
	}
	for b := 0; b < batch; b++ {
		for i := 0; i < features; i++ {
			g := grad.Data[i*batch+b]
			c.gradB.Data[b] += g
			for bp := 0; bp < batch; bp++ {
				c.gradK.Data[b*batch+bp] += g * c.lastInput.Data[i*batch+bp]
			}
		}
	}
	gradIn := tensor.New(features, batch)
	for i := 0; i < features; i++ {
		for bp := 0; bp < batch; bp++ {
			val := 0.0
			for b := 0; b < batch; b++ {
				val += c.K.Data[b*batch+bp] * grad.Data[i*batch+b]
			}
			gradIn.Data[i*batch+bp] = val
		}
	}
	return gradIn, nil
}

// Params exposes the mixing kernel and bias for the optimizer.
func (c *Conv1d) Params() []*nn.Param {
	return []*nn.Param{
		{Value: c.K, Grad: c.gradK},
		{Value: c.B, Grad: c.gradB},
	}
}
