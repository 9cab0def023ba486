package words

import (
	"math/rand"
	"testing"
)

func TestBuildLabelIsFirstLetterRank(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		word, label := Build(rng, 1+rng.Intn(9))
		want := int(word[0] - 'a')
		if label != want {
			t.Fatalf("word %q: label = %d, want %d", word, label, want)
		}
		if label < 0 || label >= NumClasses {
			t.Fatalf("word %q: label %d out of range", word, label)
		}
	}
}

func TestChecksumRangeAndDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		word, _ := Build(rng, 10)
		f := Checksum(word)
		if f < 0 || f > 255 {
			t.Fatalf("word %q: feature %f out of [0, 255]", word, f)
		}
		if f != Checksum(word) {
			t.Fatalf("word %q: checksum not deterministic", word)
		}
	}
}

func TestChecksumKnownValue(t *testing.T) {
	// Single byte 'a' (0x61) through poly 0x07, init 0, xorout 0.
	if got := Checksum("a"); got != 32 {
		t.Fatalf("Checksum(\"a\") = %f, want 32", got)
	}
}

func TestChecksumCollisionsTolerated(t *testing.T) {
	// Only 256 feature values exist, so a few thousand words are
	// guaranteed to collide, including across labels. Generation must
	// carry on regardless.
	rng := rand.New(rand.NewSource(3))
	seen := map[float64]int{}
	crossLabel := false
	for i := 0; i < 5000; i++ {
		word, label := Build(rng, 10)
		f := Checksum(word)
		if prev, ok := seen[f]; ok && prev != label {
			crossLabel = true
		}
		seen[f] = label
	}
	if !crossLabel {
		t.Fatal("expected at least one cross-label checksum collision in 5000 words")
	}
}

func TestBuildSetShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	s := BuildSet(rng, 25, 10)
	if len(s.Words) != 25 || len(s.Labels) != 25 {
		t.Fatalf("unexpected set size: %d words, %d labels", len(s.Words), len(s.Labels))
	}
	if s.Features.Shape[0] != 1 || s.Features.Shape[1] != 25 {
		t.Fatalf("unexpected feature shape: %v", s.Features.Shape)
	}
	for i, w := range s.Words {
		if len(w) < 1 || len(w) >= 10 {
			t.Fatalf("word %d has length %d, want [1, 10)", i, len(w))
		}
		if s.Features.Data[i] != Checksum(w) {
			t.Fatalf("feature %d does not match checksum of %q", i, w)
		}
	}
}

func TestBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := BuildSet(rng, 100, 10)
	x, labels := s.Batch(25, 25)
	if x.Shape[0] != 1 || x.Shape[1] != 25 {
		t.Fatalf("unexpected batch shape: %v", x.Shape)
	}
	if len(labels) != 25 {
		t.Fatalf("unexpected label count: %d", len(labels))
	}
	for i := 0; i < 25; i++ {
		if x.Data[i] != s.Features.Data[25+i] {
			t.Fatalf("batch feature %d does not match set feature %d", i, 25+i)
		}
		if labels[i] != s.Labels[25+i] {
			t.Fatalf("batch label %d does not match set label %d", i, 25+i)
		}
	}
}
