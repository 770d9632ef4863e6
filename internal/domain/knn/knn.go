// Package knn implements exact top-k inner-product search over a dense
// float32 matrix. Corpus vectors are unit-normalized, so the inner product
// equals cosine similarity.
package knn

import (
	"fmt"
	"math"
)

// normEpsilon guards against division by zero when normalizing.
const normEpsilon = 1e-12

// Matrix is a dense row-major float32 matrix: one row per corpus passage,
// contiguous backing array. Built once at corpus load, read-only afterwards;
// safe for concurrent readers. This is the accelerated exact structure: the
// full-corpus path scans it without candidate indirection.
type Matrix struct {
	data []float32
	rows int
	dim  int
}

// NewMatrix allocates a rows x dim matrix. A 0x0 matrix is valid: an empty
// corpus searches to an empty result, it is not a malformed one.
func NewMatrix(rows, dim int) (*Matrix, error) {
	if rows < 0 {
		return nil, fmt.Errorf("rows must be non-negative, got %d", rows)
	}
	if dim < 0 {
		return nil, fmt.Errorf("dim must be non-negative, got %d", dim)
	}
	if dim == 0 && rows > 0 {
		return nil, fmt.Errorf("dim must be positive for %d rows", rows)
	}
	return &Matrix{data: make([]float32, rows*dim), rows: rows, dim: dim}, nil
}

// SetRow copies v into row i. Used during corpus load only.
func (m *Matrix) SetRow(i int, v []float32) error {
	if i < 0 || i >= m.rows {
		return fmt.Errorf("row %d out of range [0,%d)", i, m.rows)
	}
	if len(v) != m.dim {
		return fmt.Errorf("row %d has dim %d, want %d", i, len(v), m.dim)
	}
	copy(m.data[i*m.dim:(i+1)*m.dim], v)
	return nil
}

// Row returns a view of row i. The caller must not mutate it.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.dim : (i+1)*m.dim]
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Dim returns the vector dimensionality.
func (m *Matrix) Dim() int { return m.dim }

// Scored pairs an original corpus index with its similarity score.
type Scored struct {
	Index int
	Score float32
}

// Dot returns the inner product of equal-length vectors.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalize scales v to unit length in place and returns it. A zero vector
// stays (effectively) zero thanks to the epsilon guard.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	inv := 1 / (math.Sqrt(sum) + normEpsilon)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// TopK returns the k best hits among the given candidate rows, sorted by
// descending score with ties broken by ascending corpus index. k is clamped
// to len(candidates); an empty candidate set yields an empty result, never an
// error. query must have the matrix dimensionality.
func TopK(m *Matrix, query []float32, candidates []int, k int) []Scored {
	if k > len(candidates) {
		k = len(candidates)
	}
	if k <= 0 {
		return nil
	}
	sel := newSelector(k)
	for _, idx := range candidates {
		sel.offer(idx, Dot(m.Row(idx), query))
	}
	return sel.take()
}

// TopKAll is the full-corpus path: scans the contiguous matrix directly, no
// candidate indirection. Result-identical to TopK over all indices. Use only
// when the candidate set equals the whole corpus; a restricted subset must go
// through TopK over exactly that subset.
func TopKAll(m *Matrix, query []float32, k int) []Scored {
	if k > m.rows {
		k = m.rows
	}
	if k <= 0 {
		return nil
	}
	sel := newSelector(k)
	row := m.data
	for i := 0; i < m.rows; i++ {
		sel.offer(i, Dot(row[:m.dim], query))
		row = row[m.dim:]
	}
	return sel.take()
}

// selector keeps the best k offers in order. Insertion into a k-sized sorted
// buffer; fine for the small k this system uses.
type selector struct {
	k   int
	buf []Scored
}

func newSelector(k int) *selector {
	return &selector{k: k, buf: make([]Scored, 0, k)}
}

// better reports whether a outranks b: higher score first, then lower
// corpus index. The index rule makes equal-score ordering deterministic.
func better(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

func (s *selector) offer(idx int, score float32) {
	item := Scored{Index: idx, Score: score}
	if len(s.buf) == s.k {
		if !better(item, s.buf[len(s.buf)-1]) {
			return
		}
		s.buf = s.buf[:len(s.buf)-1]
	}
	pos := len(s.buf)
	for pos > 0 && better(item, s.buf[pos-1]) {
		pos--
	}
	s.buf = append(s.buf, Scored{})
	copy(s.buf[pos+1:], s.buf[pos:])
	s.buf[pos] = item
}

func (s *selector) take() []Scored { return s.buf }
