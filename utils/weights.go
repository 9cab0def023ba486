package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"txtclassify_lib/tensor"
)

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// ModelWeights represents all weights in a model
type ModelWeights struct {
	Version string                 `json:"version"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// LayerWeight contains the tensors of a layer. Weight/Bias cover linear
// and conv layers; batch-norm layers additionally persist their running
// mean and variance so a reloaded model evaluates identically.
type LayerWeight struct {
	Weight *WeightData `json:"weight,omitempty"`
	Bias   *WeightData `json:"bias,omitempty"`
	Mean   *WeightData `json:"mean,omitempty"`
	Var    *WeightData `json:"var,omitempty"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// TensorToWeightData converts a tensor to serializable weight data
func TensorToWeightData(name string, t *tensor.Tensor) *WeightData {
	return &WeightData{
		Name:  name,
		Shape: append([]int{}, t.Shape...),
		Data:  append([]float64{}, t.Data...),
	}
}

// WeightDataToTensor converts weight data back to a tensor
func WeightDataToTensor(wd *WeightData) *tensor.Tensor {
	t := tensor.New(wd.Shape...)
	copy(t.Data, wd.Data)
	return t
}

// CopyInto copies stored weight data into an existing tensor, checking
// only that the element counts line up.
func (wd *WeightData) CopyInto(t *tensor.Tensor) error {
	if wd == nil {
		return fmt.Errorf("missing weight data")
	}
	if len(wd.Data) != len(t.Data) {
		return fmt.Errorf("weight %q has %d values, expected %d", wd.Name, len(wd.Data), len(t.Data))
	}
	copy(t.Data, wd.Data)
	return nil
}
