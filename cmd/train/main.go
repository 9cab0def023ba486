// txtclassify-train: trains the checksum-feature letter classifier on
// synthetic words and saves the weights.
//
// Usage:
//
//	txtclassify-train --epochs=500 --batch-size=25 --lr=0.001
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"txtclassify_lib/model"
	"txtclassify_lib/nn"
	"txtclassify_lib/optim"
	"txtclassify_lib/utils"
	"txtclassify_lib/words"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var (
	wordDim      = flag.Int("word-dim", 10, "Exclusive upper bound on word length")
	epochs       = flag.Int("epochs", 500, "Number of training epochs")
	batchSize    = flag.Int("batch-size", 25, "Samples per batch (also the conv width)")
	trainSamples = flag.Int("samples", 5000, "Size of the synthetic training set")
	learningRate = flag.Float64("lr", 0.001, "Learning rate")
	seed         = flag.Int64("seed", 42, "Random seed")
	weightsFile  = flag.String("weights", "txtclassify.json", "Output weights file (JSON)")
	curveFile    = flag.String("curve", "training.png", "Output accuracy/loss curve (PNG)")
	verbose      = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	cfg := utils.Config{
		WordDim:      *wordDim,
		BatchSize:    *batchSize,
		Epochs:       *epochs,
		TrainSamples: *trainSamples,
		LearningRate: *learningRate,
		Seed:         *seed,
		WeightsFile:  *weightsFile,
		CurveFile:    *curveFile,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Word dim:      %d\n", cfg.WordDim)
	fmt.Printf("  Epochs:        %d\n", cfg.Epochs)
	fmt.Printf("  Batch size:    %d\n", cfg.BatchSize)
	fmt.Printf("  Train samples: %d\n", cfg.TrainSamples)
	fmt.Printf("  Learning rate: %.4f\n", cfg.LearningRate)
	fmt.Printf("  Seed:          %d\n", cfg.Seed)
	fmt.Println()

	rng := rand.New(rand.NewSource(cfg.Seed))
	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	m := model.New(cfg, rng)
	opt := optim.NewAdam(m.Params(), cfg.LearningRate)
	stats.ModelInitTime = time.Since(start)

	fmt.Printf("Generating %d synthetic samples...\n", cfg.TrainSamples)
	start = time.Now()
	train := words.BuildSet(rng, cfg.TrainSamples, cfg.WordDim)
	stats.DataGenTime = time.Since(start)

	batches := cfg.TrainSamples / cfg.BatchSize
	steps := 0
	history := make([][2]float64, 0, cfg.Epochs)

	fmt.Println("Starting training...")
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		losses := make([]float64, 0, batches)
		for batch := 0; batch < batches; batch++ {
			x, labels := train.Batch(batch*cfg.BatchSize, cfg.BatchSize)

			start = time.Now()
			scores, err := m.Scores(x, nn.Train)
			if err != nil {
				fatalf("forward pass: %v", err)
			}
			stats.ForwardPassTime += time.Since(start)

			start = time.Now()
			loss, err := m.LossFromScores(scores, labels)
			if err != nil {
				fatalf("loss: %v", err)
			}
			stats.LossComputationTime += time.Since(start)

			start = time.Now()
			grad, err := m.LossGrad(scores, labels)
			if err != nil {
				fatalf("loss gradient: %v", err)
			}
			if err := m.Backward(grad); err != nil {
				fatalf("backward pass: %v", err)
			}
			stats.BackwardPassTime += time.Since(start)

			start = time.Now()
			opt.Step()
			opt.ZeroGrad()
			stats.UpdateTime += time.Since(start)

			losses = append(losses, loss)
			steps++
		}

		meanLoss := stat.Mean(losses, nil)

		start = time.Now()
		acc, err := model.Evaluate(m, rng, cfg.WordDim)
		if err != nil {
			fatalf("evaluation: %v", err)
		}
		stats.EvalTime += time.Since(start)

		fmt.Printf("Epoch %d/%d | Loss: %.6f | Accuracy: %.4f\n", epoch, cfg.Epochs, meanLoss, acc)
		history = append(history, [2]float64{acc, meanLoss})
	}

	stats.TotalTime = time.Since(totalStart)
	fmt.Printf("\nTraining complete! Total time: %.2fs\n", stats.TotalTime.Seconds())
	utils.PrintTimingStats(stats, steps)

	fmt.Printf("\nSaving weights to %s...\n", cfg.WeightsFile)
	if err := m.Save(cfg.WeightsFile); err != nil {
		fatalf("saving weights: %v", err)
	}

	fmt.Printf("Rendering curve to %s...\n", cfg.CurveFile)
	if err := renderCurve(history, cfg.CurveFile); err != nil {
		fatalf("rendering curve: %v", err)
	}
	fmt.Println("Done!")
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// renderCurve plots per-epoch accuracy and mean loss.
func renderCurve(history [][2]float64, path string) error {
	p := plot.New()
	p.Title.Text = "training"
	p.X.Label.Text = "epoch"

	accPts := make(plotter.XYs, len(history))
	lossPts := make(plotter.XYs, len(history))
	for i, h := range history {
		accPts[i] = plotter.XY{X: float64(i + 1), Y: h[0]}
		lossPts[i] = plotter.XY{X: float64(i + 1), Y: h[1]}
	}
	if err := plotutil.AddLinePoints(p, "acc", accPts, "loss", lossPts); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
