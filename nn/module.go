package nn

import (
	"txtclassify_lib/tensor"
)

// Mode selects the forward-pass behavior: Train updates batch-norm
// statistics and applies dropout, Eval does neither.
type Mode int

const (
	Train Mode = iota
	Eval
)

// Param is a learnable tensor paired with its accumulated gradient.
type Param struct {
	Value *tensor.Tensor
	Grad  *tensor.Tensor
}

// Module defines a single layer/unit in the network.
type Module interface {
	Forward(x *tensor.Tensor, mode Mode) (*tensor.Tensor, error)
	// Backward takes the gradient of the loss with respect to the module's
	// output and returns the gradient with respect to the module's input,
	// accumulating parameter gradients along the way.
	Backward(grad *tensor.Tensor) (*tensor.Tensor, error)
	Params() []*Param
}

// Sequential chains multiple Modules in order.
type Sequential struct {
	Layers []Module
}

// Forward applies each layer in sequence.
func (s *Sequential) Forward(x *tensor.Tensor, mode Mode) (*tensor.Tensor, error) {
	var err error
	out := x
	for _, layer := range s.Layers {
		out, err = layer.Forward(out, mode)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Backward applies Backward in reverse order.
func (s *Sequential) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	var err error
	out := grad
	for i := len(s.Layers) - 1; i >= 0; i-- {
		out, err = s.Layers[i].Backward(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Params collects the learnable parameters of all layers.
func (s *Sequential) Params() []*Param {
	var ps []*Param
	for _, layer := range s.Layers {
		ps = append(ps, layer.Params()...)
	}
	return ps
}
