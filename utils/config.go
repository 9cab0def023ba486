package utils

import (
	"fmt"
)

// Config holds every knob of a training or inference run. It is passed
// explicitly to the generator, the model constructor and the driver.
type Config struct {
	WordDim      int // exclusive upper bound on word length
	BatchSize    int // also fixes the conv layer's batch width
	Epochs       int
	TrainSamples int
	LearningRate float64
	Seed         int64
	WeightsFile  string
	CurveFile    string
}

// Default returns the configuration of the reference run.
func Default() Config {
	return Config{
		WordDim:      10,
		BatchSize:    25,
		Epochs:       500,
		TrainSamples: 5000,
		LearningRate: 0.001,
		Seed:         42,
		WeightsFile:  "txtclassify.json",
		CurveFile:    "training.png",
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c.WordDim < 2 {
		return fmt.Errorf("word dim must be at least 2 (got %d)", c.WordDim)
	}
	if c.BatchSize < 2 {
		return fmt.Errorf("batch size must be at least 2 for batch statistics (got %d)", c.BatchSize)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive (got %d)", c.Epochs)
	}
	if c.TrainSamples < c.BatchSize {
		return fmt.Errorf("train samples (%d) must cover at least one batch (%d)", c.TrainSamples, c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive (got %f)", c.LearningRate)
	}
	return nil
}
