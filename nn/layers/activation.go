package layers

import (
	"fmt"

	"txtclassify_lib/nn"
	"txtclassify_lib/tensor"
)

// ReLU is the rectifier activation layer.
type ReLU struct {
	lastInput *tensor.Tensor
}

// NewReLU creates a new rectifier layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward zeroes the negative entries of x.
func (a *ReLU) Forward(x *tensor.Tensor, _ nn.Mode) (*tensor.Tensor, error) {
	a.lastInput = x.Clone()
	return tensor.ReluPlain(x), nil
}

// Backward passes gradients through where the input was positive.
func (a *ReLU) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if a.lastInput == nil {
		return nil, fmt.Errorf("relu: backward before forward")
	}
	if len(grad.Data) != len(a.lastInput.Data) {
		return nil, fmt.Errorf("relu: gradient shape %v does not match input %v", grad.Shape, a.lastInput.Shape)
	}
	gradIn := tensor.New(grad.Shape...)
	for i, v := range a.lastInput.Data {
		if v > 0 {
			gradIn.Data[i] = grad.Data[i]
		}
	}
	return gradIn, nil
}

// Params returns nothing; ReLU has no learnable state.
func (a *ReLU) Params() []*nn.Param { return nil }
