// Package words generates the synthetic samples the classifier trains on:
// random lowercase words labeled by the alphabetic rank of their first
// letter, with a CRC-8 checksum of the word's bytes as the sole feature.
package words

import (
	"math/rand"

	"txtclassify_lib/tensor"

	"github.com/sigurn/crc8"
)

// NumClasses is one class per lowercase letter.
const NumClasses = 26

// crcTable uses the plain CRC-8 parameters (poly 0x07, init 0, xorout 0).
var crcTable = crc8.MakeTable(crc8.CRC8)

// Letter returns a random lowercase letter.
func Letter(rng *rand.Rand) byte {
	return byte('a' + rng.Intn(NumClasses))
}

// Build assembles a random word of the given length and returns it
// together with the alphabetic rank of its first letter.
func Build(rng *rand.Rand, wordLen int) (string, int) {
	buf := make([]byte, wordLen)
	for i := range buf {
		buf[i] = Letter(rng)
	}
	return string(buf), int(buf[0] - 'a')
}

// Checksum maps a word to its single numeric feature, in [0, 255].
// Same word always yields the same feature; distinct words may collide.
func Checksum(word string) float64 {
	return float64(crc8.Checksum([]byte(word), crcTable))
}

// Set is a batch of samples in column layout: Features has shape
// [1, len(Words)], one checksum per column.
type Set struct {
	Words    []string
	Features *tensor.Tensor
	Labels   []int
}

// BuildSet draws n words with length uniform in [1, wordDim).
func BuildSet(rng *rand.Rand, n, wordDim int) Set {
	s := Set{
		Words:    make([]string, n),
		Features: tensor.New(1, n),
		Labels:   make([]int, n),
	}
	for i := 0; i < n; i++ {
		word, label := Build(rng, 1+rng.Intn(wordDim-1))
		s.Words[i] = word
		s.Features.Data[i] = Checksum(word)
		s.Labels[i] = label
	}
	return s
}

// Batch returns the feature columns and labels for samples
// [start, start+size).
func (s Set) Batch(start, size int) (*tensor.Tensor, []int) {
	x := tensor.New(1, size)
	copy(x.Data, s.Features.Data[start:start+size])
	return x, s.Labels[start : start+size]
}
