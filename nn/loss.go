package nn

import (
	"fmt"
	"math"

	"txtclassify_lib/tensor"
)

// Softmax applies a column-wise softmax to a [classes, batch] tensor.
// A 1-D tensor is treated as a single column.
func Softmax(logits *tensor.Tensor) *tensor.Tensor {
	classes, batch := logits.Shape[0], 1
	if len(logits.Shape) == 2 {
		batch = logits.Shape[1]
	}
	out := tensor.New(logits.Shape...)
	for b := 0; b < batch; b++ {
		maxLogit := logits.Data[b]
		for j := 1; j < classes; j++ {
			if v := logits.Data[j*batch+b]; v > maxLogit {
				maxLogit = v
			}
		}
		expSum := 0.0
		for j := 0; j < classes; j++ {
			e := math.Exp(logits.Data[j*batch+b] - maxLogit)
			out.Data[j*batch+b] = e
			expSum += e
		}
		for j := 0; j < classes; j++ {
			out.Data[j*batch+b] /= expSum
		}
	}
	return out
}

// CrossEntropy is softmax cross-entropy over integer class labels.
type CrossEntropy struct{}

// Forward returns the mean cross-entropy of a [classes, batch] logit
// tensor against labels, where labels[b] is the class of column b.
func (CrossEntropy) Forward(logits *tensor.Tensor, labels []int) (float64, error) {
	if len(logits.Shape) != 2 {
		return 0, fmt.Errorf("cross-entropy expects [classes, batch] logits, got %v", logits.Shape)
	}
	classes, batch := logits.Shape[0], logits.Shape[1]
	if len(labels) != batch {
		return 0, fmt.Errorf("label count %d does not match batch %d", len(labels), batch)
	}
	probs := Softmax(logits)
	loss := 0.0
	for b, label := range labels {
		if label < 0 || label >= classes {
			return 0, fmt.Errorf("label %d out of range [0, %d)", label, classes)
		}
		p := probs.Data[label*batch+b]
		if p < 1e-10 {
			p = 1e-10
		}
		loss -= math.Log(p)
	}
	return loss / float64(batch), nil
}

// Backward returns the gradient of the mean loss with respect to the
// logits: (softmax - onehot) / batch.
func (CrossEntropy) Backward(logits *tensor.Tensor, labels []int) (*tensor.Tensor, error) {
	if len(logits.Shape) != 2 {
		return nil, fmt.Errorf("cross-entropy expects [classes, batch] logits, got %v", logits.Shape)
	}
	classes, batch := logits.Shape[0], logits.Shape[1]
	if len(labels) != batch {
		return nil, fmt.Errorf("label count %d does not match batch %d", len(labels), batch)
	}
	grad := Softmax(logits)
	for b, label := range labels {
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("label %d out of range [0, %d)", label, classes)
		}
		grad.Data[label*batch+b] -= 1
	}
	for i := range grad.Data {
		grad.Data[i] /= float64(batch)
	}
	return grad, nil
}
