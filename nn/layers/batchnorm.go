package layers

import (
	"fmt"
	"math"

	"txtclassify_lib/nn"
	"txtclassify_lib/tensor"
)

// BatchNorm normalizes each feature row across the batch, with a
// learnable scale (gamma) and shift (beta) per feature. Train mode uses
// batch statistics and updates the running estimates; Eval mode uses
// the running estimates.
type BatchNorm struct {
	Gamma *tensor.Tensor // [features]
	Beta  *tensor.Tensor // [features]

	RunningMean *tensor.Tensor // [features]
	RunningVar  *tensor.Tensor // [features]

	gradGamma *tensor.Tensor
	gradBeta  *tensor.Tensor

	eps      float64
	momentum float64

	// cached by a Train-mode forward pass
	xhat   *tensor.Tensor
	invStd []float64
}

// NewBatchNorm creates a batch-norm layer over the given feature count.
func NewBatchNorm(features int) *BatchNorm {
	bn := &BatchNorm{
		Gamma:       tensor.New(features),
		Beta:        tensor.New(features),
		RunningMean: tensor.New(features),
		RunningVar:  tensor.New(features),
		gradGamma:   tensor.New(features),
		gradBeta:    tensor.New(features),
		eps:         1e-5,
		momentum:    0.1,
	}
	for i := 0; i < features; i++ {
		bn.Gamma.Data[i] = 1
		bn.RunningVar.Data[i] = 1
	}
	return bn
}

// Forward normalizes a [features, batch] input.
func (bn *BatchNorm) Forward(x *tensor.Tensor, mode nn.Mode) (*tensor.Tensor, error) {
	features := bn.Gamma.Shape[0]
	if len(x.Shape) != 2 || x.Shape[0] != features {
		return nil, fmt.Errorf("batchnorm expects [%d, batch] input, got %v", features, x.Shape)
	}
	batch := x.Shape[1]
	out := tensor.New(features, batch)

	if mode == nn.Eval {
		for i := 0; i < features; i++ {
			invStd := 1 / math.Sqrt(bn.RunningVar.Data[i]+bn.eps)
			for b := 0; b < batch; b++ {
				xhat := (x.Data[i*batch+b] - bn.RunningMean.Data[i]) * invStd
				out.Data[i*batch+b] = bn.Gamma.Data[i]*xhat + bn.Beta.Data[i]
			}
		}
		return out, nil
	}

	if batch < 2 {
		return nil, fmt.Errorf("batchnorm needs at least 2 samples to train, got %d", batch)
	}
	bn.xhat = tensor.New(features, batch)
	bn.invStd = make([]float64, features)
	m := float64(batch)
	for i := 0; i < features; i++ {
		mean := 0.0
		for b := 0; b < batch; b++ {
			mean += x.Data[i*batch+b]
		}
		mean /= m
		variance := 0.0
		for b := 0; b < batch; b++ {
			d := x.Data[i*batch+b] - mean
			variance += d * d
		}
		variance /= m
		invStd := 1 / math.Sqrt(variance+bn.eps)
		bn.invStd[i] = invStd
		for b := 0; b < batch; b++ {
			xhat := (x.Data[i*batch+b] - mean) * invStd
			bn.xhat.Data[i*batch+b] = xhat
			out.Data[i*batch+b] = bn.Gamma.Data[i]*xhat + bn.Beta.Data[i]
		}
		// running stats keep the unbiased variance estimate
		bn.RunningMean.Data[i] = (1-bn.momentum)*bn.RunningMean.Data[i] + bn.momentum*mean
		bn.RunningVar.Data[i] = (1-bn.momentum)*bn.RunningVar.Data[i] + bn.momentum*variance*m/(m-1)
	}
	return out, nil
}

// Backward uses the cached Train-mode statistics:
//
//	dx = gamma·invStd · (g - mean(g) - xhat·mean(g·xhat))
func (bn *BatchNorm) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if bn.xhat == nil {
		return nil, fmt.Errorf("batchnorm: backward before a training forward pass")
	}
	features := bn.Gamma.Shape[0]
	batch := bn.xhat.Shape[1]
	if len(grad.Shape) != 2 || grad.Shape[0] != features || grad.Shape[1] != batch {
		return nil, fmt.Errorf("batchnorm: gradient shape %v does not match [%d, %d]", grad.Shape, features, batch)
	}
	gradIn := tensor.New(features, batch)
	m := float64(batch)
	for i := 0; i < features; i++ {
		sumG, sumGX := 0.0, 0.0
		for b := 0; b < batch; b++ {
			g := grad.Data[i*batch+b]
			sumG += g
			sumGX += g * bn.xhat.Data[i*batch+b]
		}
		bn.gradBeta.Data[i] += sumG
		bn.gradGamma.Data[i] += sumGX
		k := bn.Gamma.Data[i] * bn.invStd[i]
		for b := 0; b < batch; b++ {
			g := grad.Data[i*batch+b]
			gradIn.Data[i*batch+b] = k * (g - sumG/m - bn.xhat.Data[i*batch+b]*sumGX/m)
		}
	}
	return gradIn, nil
}

// Params exposes gamma and beta for the optimizer. Running statistics
// are not learnable and stay out of the optimizer's reach.
func (bn *BatchNorm) Params() []*nn.Param {
	return []*nn.Param{
		{Value: bn.Gamma, Grad: bn.gradGamma},
		{Value: bn.Beta, Grad: bn.gradBeta},
	}
}
