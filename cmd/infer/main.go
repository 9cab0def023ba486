// txtclassify-infer: loads trained weights and predicts the first
// letter of freshly generated synthetic words.
//
// Usage:
//
//	txtclassify-infer --weights=txtclassify.json --samples=25
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"txtclassify_lib/model"
	"txtclassify_lib/nn"
	"txtclassify_lib/utils"
	"txtclassify_lib/words"
)

var (
	weightsFile = flag.String("weights", "txtclassify.json", "Weights JSON file")
	samples     = flag.Int("samples", 25, "Number of words to predict (must match the trained batch size)")
	wordDim     = flag.Int("word-dim", 10, "Exclusive upper bound on word length")
	seed        = flag.Int64("seed", 0, "Random seed (0 uses a fixed default)")
)

func main() {
	flag.Parse()

	cfg := utils.Default()
	cfg.BatchSize = *samples
	cfg.WordDim = *wordDim
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	m, err := model.Load(*weightsFile, cfg, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading weights: %v\n", err)
		os.Exit(1)
	}

	set := words.BuildSet(rng, cfg.BatchSize, cfg.WordDim)
	scores, err := m.Scores(set.Features, nn.Eval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	probs := nn.Softmax(scores)

	batch := probs.Shape[1]
	for b, word := range set.Words {
		class := model.PredictedClass(probs, b)
		confidence := probs.Data[class*batch+b]
		fmt.Printf("input: %-9s predicted: %c  confidence: %.4f  actual: %c\n",
			word, byte('a'+class), confidence, byte('a'+set.Labels[b]))
	}
}
