package model

import (
	"math/rand"

	"txtclassify_lib/nn"
	"txtclassify_lib/tensor"
	"txtclassify_lib/words"

	"gonum.org/v1/gonum/floats"
)

// Evaluate generates one fresh batch of synthetic samples (the model's
// batch size, word lengths below wordDim), runs an Eval-mode forward
// pass and returns the fraction of samples whose arg-max class matches
// the true label.
func Evaluate(m *TxtClassify, rng *rand.Rand, wordDim int) (float64, error) {
	set := words.BuildSet(rng, m.BatchSize, wordDim)
	scores, err := m.Scores(set.Features, nn.Eval)
	if err != nil {
		return 0, err
	}
	correct := 0
	for b, label := range set.Labels {
		if PredictedClass(scores, b) == label {
			correct++
		}
	}
	return float64(correct) / float64(len(set.Labels)), nil
}

// PredictedClass returns the arg-max class of column b in a
// [classes, batch] score tensor.
func PredictedClass(scores *tensor.Tensor, b int) int {
	batch := scores.Shape[1]
	column := make([]float64, scores.Shape[0])
	for j := range column {
		column[j] = scores.Data[j*batch+b]
	}
	return floats.MaxIdx(column)
}
