package layers

import (
	"fmt"
	"math/rand"

	"txtclassify_lib/nn"
	"txtclassify_lib/tensor"
)

// Dropout zeroes activations with probability p during training and
// scales the survivors by 1/(1-p). In Eval mode it is the identity.
type Dropout struct {
	p    float64
	rng  *rand.Rand
	mask []float64 // nil after an Eval-mode forward
}

// NewDropout creates a dropout layer with drop probability p.
func NewDropout(p float64, rng *rand.Rand) *Dropout {
	return &Dropout{p: p, rng: rng}
}

// Forward applies the stochastic mask in Train mode.
func (d *Dropout) Forward(x *tensor.Tensor, mode nn.Mode) (*tensor.Tensor, error) {
	if mode == nn.Eval || d.p == 0 {
		d.mask = nil
		return x.Clone(), nil
	}
	if d.p < 0 || d.p >= 1 {
		return nil, fmt.Errorf("dropout probability %f out of [0, 1)", d.p)
	}
	keep := 1 / (1 - d.p)
	d.mask = make([]float64, len(x.Data))
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		if d.rng.Float64() >= d.p {
			d.mask[i] = keep
			out.Data[i] = v * keep
		}
	}
	return out, nil
}

// Backward applies the same mask to the incoming gradient.
func (d *Dropout) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if d.mask == nil {
		return grad.Clone(), nil
	}
	if len(grad.Data) != len(d.mask) {
		return nil, fmt.Errorf("dropout: gradient shape %v does not match mask length %d", grad.Shape, len(d.mask))
	}
	gradIn := tensor.New(grad.Shape...)
	for i, g := range grad.Data {
		gradIn.Data[i] = g * d.mask[i]
	}
	return gradIn, nil
}

// Params returns nothing; dropout has no learnable state.
func (d *Dropout) Params() []*nn.Param { return nil }
