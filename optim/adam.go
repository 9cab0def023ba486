// Package optim implements the gradient-descent side of training.
package optim

import (
	"math"

	"txtclassify_lib/nn"
)

// Adam is the adaptive first-order optimizer with bias-corrected
// momentum and variance estimates.
type Adam struct {
	params []*nn.Param
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64

	m [][]float64
	v [][]float64
	t int
}

// NewAdam creates an optimizer over params with the standard
// hyperparameters (beta1 0.9, beta2 0.999, eps 1e-8).
func NewAdam(params []*nn.Param, lr float64) *Adam {
	a := &Adam{
		params: params,
		lr:     lr,
		beta1:  0.9,
		beta2:  0.999,
		eps:    1e-8,
		m:      make([][]float64, len(params)),
		v:      make([][]float64, len(params)),
	}
	for i, p := range params {
		a.m[i] = make([]float64, len(p.Value.Data))
		a.v[i] = make([]float64, len(p.Value.Data))
	}
	return a
}

// Step applies one Adam update using the gradients accumulated on the
// parameters.
func (a *Adam) Step() {
	a.t++
	bias1 := 1 - math.Pow(a.beta1, float64(a.t))
	bias2 := 1 - math.Pow(a.beta2, float64(a.t))
	for i, p := range a.params {
		for j, g := range p.Grad.Data {
			a.m[i][j] = a.beta1*a.m[i][j] + (1-a.beta1)*g
			a.v[i][j] = a.beta2*a.v[i][j] + (1-a.beta2)*g*g
			mHat := a.m[i][j] / bias1
			vHat := a.v[i][j] / bias2
			p.Value.Data[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// ZeroGrad clears the accumulated gradients.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		for j := range p.Grad.Data {
			p.Grad.Data[j] = 0
		}
	}
}
