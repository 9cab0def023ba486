package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Tensor is a simple n-D array backed by a flat []float64.
type Tensor struct {
	Data  []float64
	Shape []int
}

// New allocates a Tensor of given shape (product of dims = len(Data)).
func New(shape ...int) *Tensor {
	total := 1
	for _, d := range shape {
		total *= d
	}
	return &Tensor{
		Data:  make([]float64, total),
		Shape: append([]int(nil), shape...),
	}
}

// NewWithData creates a 1-D tensor from existing data slice.
func NewWithData(data []float64) *Tensor {
	return &Tensor{
		Data:  append([]float64(nil), data...),
		Shape: []int{len(data)},
	}
}

// Clone returns a deep copy of t.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		Data:  append([]float64(nil), t.Data...),
		Shape: append([]int(nil), t.Shape...),
	}
}

// Add returns a+b (same shape), or error if shapes differ.
func Add(a, b *Tensor) (*Tensor, error) {
	if len(a.Shape) != len(b.Shape) {
		return nil, fmt.Errorf("shape mismatch: %v vs %v", a.Shape, b.Shape)
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return nil, fmt.Errorf("shape mismatch: %v vs %v", a.Shape, b.Shape)
		}
	}
	out := New(a.Shape...)
	for i := range a.Data {
		out.Data[i] = a.Data[i] + b.Data[i]
	}
	return out, nil
}

// MatMul returns a×b (2-D only), or error if dims mismatch.
func MatMul(a, b *Tensor) (*Tensor, error) {
	if len(a.Shape) != 2 || len(b.Shape) != 2 {
		return nil, fmt.Errorf("MatMul requires 2-D tensors, got %v and %v", a.Shape, b.Shape)
	}
	r, k := a.Shape[0], a.Shape[1]
	k2, c := b.Shape[0], b.Shape[1]
	if k != k2 {
		return nil, fmt.Errorf("inner dimensions must match: %d vs %d", k, k2)
	}
	am := mat.NewDense(r, k, a.Data)
	bm := mat.NewDense(k2, c, b.Data)
	var cm mat.Dense
	cm.Mul(am, bm)
	return &Tensor{
		Data:  append([]float64(nil), cm.RawMatrix().Data...),
		Shape: []int{r, c},
	}, nil
}

// ReluPlain applies ReLU to each element in a, returns new Tensor.
func ReluPlain(a *Tensor) *Tensor {
	out := New(a.Shape...)
	for i, v := range a.Data {
		if v > 0 {
			out.Data[i] = v
		} else {
			out.Data[i] = 0
		}
	}
	return out
}

// At returns the element at the given indices.
// For a 2D tensor [r, c], At(i, j) returns the element at row i, column j.
func (t *Tensor) At(indices ...int) float64 {
	return t.Data[t.index("At", indices)]
}

// Set sets the element at the given indices to the given value.
func (t *Tensor) Set(value float64, indices ...int) {
	t.Data[t.index("Set", indices)] = value
}

func (t *Tensor) index(op string, indices []int) int {
	if len(indices) != len(t.Shape) {
		panic(fmt.Sprintf("%s: expected %d indices, got %d", op, len(t.Shape), len(indices)))
	}
	idx := 0
	stride := 1
	for i := len(indices) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= t.Shape[i] {
			panic(fmt.Sprintf("%s: index %d out of bounds for dimension %d (shape: %v)", op, indices[i], i, t.Shape))
		}
		idx += indices[i] * stride
		stride *= t.Shape[i]
	}
	return idx
}
