// Package model assembles the checksum-feature letter classifier:
// a fixed-topology feed-forward network mapping one CRC-8 feature to a
// 26-way score.
package model

import (
	"fmt"
	"math/rand"

	"txtclassify_lib/nn"
	"txtclassify_lib/nn/layers"
	"txtclassify_lib/tensor"
	"txtclassify_lib/utils"
	"txtclassify_lib/words"
)

// WeightsVersion tags the persisted weights format.
const WeightsVersion = "1.0"

// TxtClassify predicts a word's first letter from its checksum feature.
// The forward pass is fixed: linear 1→26, batch-norm, relu, a
// cross-batch 1×1 conv, batch-norm, relu, linear 26→26, batch-norm,
// relu, dropout. The conv ties the model to the batch size given at
// construction.
type TxtClassify struct {
	BatchSize int

	l1   *layers.Linear
	bn1  *layers.BatchNorm
	conv *layers.Conv1d
	bn2  *layers.BatchNorm
	l2   *layers.Linear
	bn3  *layers.BatchNorm
	drop *layers.Dropout

	seq  *nn.Sequential
	loss nn.CrossEntropy
}

// New builds the network for cfg's batch size, drawing initial weights
// from rng.
func New(cfg utils.Config, rng *rand.Rand) *TxtClassify {
	m := &TxtClassify{
		BatchSize: cfg.BatchSize,
		l1:        layers.NewLinear(1, words.NumClasses, rng),
		bn1:       layers.NewBatchNorm(words.NumClasses),
		conv:      layers.NewConv1d(cfg.BatchSize, rng),
		bn2:       layers.NewBatchNorm(words.NumClasses),
		l2:        layers.NewLinear(words.NumClasses, words.NumClasses, rng),
		bn3:       layers.NewBatchNorm(words.NumClasses),
		drop:      layers.NewDropout(0.4, rng),
	}
	m.seq = &nn.Sequential{Layers: []nn.Module{
		m.l1,
		m.bn1,
		layers.NewReLU(),
		m.conv,
		m.bn2,
		layers.NewReLU(),
		m.l2,
		m.bn3,
		layers.NewReLU(),
		m.drop,
	}}
	return m
}

// Scores runs the forward pass on a [1, batch] feature tensor and
// returns [26, batch] unnormalized class scores.
func (m *TxtClassify) Scores(x *tensor.Tensor, mode nn.Mode) (*tensor.Tensor, error) {
	if len(x.Shape) != 2 || x.Shape[1] != m.BatchSize {
		return nil, fmt.Errorf("model is bound to batch size %d, got input %v", m.BatchSize, x.Shape)
	}
	return m.seq.Forward(x, mode)
}

// Loss runs a Train-mode forward pass and returns the mean
// cross-entropy against the labels.
func (m *TxtClassify) Loss(x *tensor.Tensor, labels []int) (float64, error) {
	scores, err := m.Scores(x, nn.Train)
	if err != nil {
		return 0, err
	}
	return m.loss.Forward(scores, labels)
}

// LossFromScores returns the mean cross-entropy of already computed
// scores, leaving the layer caches of the producing forward pass
// intact for Backward.
func (m *TxtClassify) LossFromScores(scores *tensor.Tensor, labels []int) (float64, error) {
	return m.loss.Forward(scores, labels)
}

// LossGrad returns the gradient of the mean cross-entropy with respect
// to the scores.
func (m *TxtClassify) LossGrad(scores *tensor.Tensor, labels []int) (*tensor.Tensor, error) {
	return m.loss.Backward(scores, labels)
}

// Backward propagates a score gradient through the network,
// accumulating parameter gradients.
func (m *TxtClassify) Backward(grad *tensor.Tensor) error {
	_, err := m.seq.Backward(grad)
	return err
}

// Params exposes all learnable parameters for the optimizer.
func (m *TxtClassify) Params() []*nn.Param {
	return m.seq.Params()
}

// Save writes the model weights, including batch-norm running
// statistics, to a JSON file.
func (m *TxtClassify) Save(path string) error {
	w := &utils.ModelWeights{
		Version: WeightsVersion,
		Layers: map[string]utils.LayerWeight{
			"linear_1": {
				Weight: utils.TensorToWeightData("weight", m.l1.W),
				Bias:   utils.TensorToWeightData("bias", m.l1.B),
			},
			"conv": {
				Weight: utils.TensorToWeightData("weight", m.conv.K),
				Bias:   utils.TensorToWeightData("bias", m.conv.B),
			},
			"linear_2": {
				Weight: utils.TensorToWeightData("weight", m.l2.W),
				Bias:   utils.TensorToWeightData("bias", m.l2.B),
			},
			"bn_1": batchNormWeights(m.bn1),
			"bn_2": batchNormWeights(m.bn2),
			"bn_3": batchNormWeights(m.bn3),
		},
	}
	return utils.SaveWeights(path, w)
}

func batchNormWeights(bn *layers.BatchNorm) utils.LayerWeight {
	return utils.LayerWeight{
		Weight: utils.TensorToWeightData("gamma", bn.Gamma),
		Bias:   utils.TensorToWeightData("beta", bn.Beta),
		Mean:   utils.TensorToWeightData("running_mean", bn.RunningMean),
		Var:    utils.TensorToWeightData("running_var", bn.RunningVar),
	}
}

// Load reads weights from path into a freshly constructed model.
func Load(path string, cfg utils.Config, rng *rand.Rand) (*TxtClassify, error) {
	w, err := utils.LoadWeights(path)
	if err != nil {
		return nil, err
	}
	m := New(cfg, rng)
	for name, dst := range map[string]struct{ w, b *tensor.Tensor }{
		"linear_1": {m.l1.W, m.l1.B},
		"conv":     {m.conv.K, m.conv.B},
		"linear_2": {m.l2.W, m.l2.B},
	} {
		lw, ok := w.Layers[name]
		if !ok {
			return nil, fmt.Errorf("weights file is missing layer %q", name)
		}
		if err := lw.Weight.CopyInto(dst.w); err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		if err := lw.Bias.CopyInto(dst.b); err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
	}
	for name, bn := range map[string]*layers.BatchNorm{
		"bn_1": m.bn1,
		"bn_2": m.bn2,
		"bn_3": m.bn3,
	} {
		lw, ok := w.Layers[name]
		if !ok {
			return nil, fmt.Errorf("weights file is missing layer %q", name)
		}
		if err := lw.Weight.CopyInto(bn.Gamma); err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		if err := lw.Bias.CopyInto(bn.Beta); err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		if err := lw.Mean.CopyInto(bn.RunningMean); err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		if err := lw.Var.CopyInto(bn.RunningVar); err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
	}
	return m, nil
}
