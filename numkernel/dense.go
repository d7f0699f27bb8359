package numkernel

import "fmt"

// Dense is a row-major matrix of float64 values, stored in a single flat
// slice for cache-friendly access. It is the dense numeric array
// abstraction the HMM core's parameter matrices (trans_mat, emission_prob,
// covariance blocks) are built on when a genuine two-dimensional type is
// useful rather than a plain []float64 row slice.
//
// Adapted from lvlath's matrix.Dense: same layout and bounds-checking
// discipline, without the graph-adjacency ingestion/export machinery.
type Dense struct {
	r, c int       // number of rows and columns
	data []float64 // flat backing storage, length == r*c
}

// NewDense allocates an r×c Dense matrix initialized to zero.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// Rows returns the number of rows. Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns. Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

func (m *Dense) index(i, j int) (int, error) {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return 0, ErrIndexOutOfBounds
	}
	return i*m.c + j, nil
}

// At retrieves the element at (i, j). Complexity: O(1).
func (m *Dense) At(i, j int) (float64, error) {
	idx, err := m.index(i, j)
	if err != nil {
		return 0, fmt.Errorf("Dense.At(%d,%d): %w", i, j, err)
	}
	return m.data[idx], nil
}

// Set assigns v at (i, j). Complexity: O(1).
func (m *Dense) Set(i, j int, v float64) error {
	idx, err := m.index(i, j)
	if err != nil {
		return fmt.Errorf("Dense.Set(%d,%d): %w", i, j, err)
	}
	m.data[idx] = v
	return nil
}

// Row returns a copy of row i as a []float64. Complexity: O(c).
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, fmt.Errorf("Dense.Row(%d): %w", i, ErrIndexOutOfBounds)
	}
	row := make([]float64, m.c)
	copy(row, m.data[i*m.c:(i+1)*m.c])
	return row, nil
}

// Clone returns a deep copy of the matrix. Complexity: O(r*c).
func (m *Dense) Clone() *Dense {
	out := &Dense{r: m.r, c: m.c, data: make([]float64, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Fill sets every entry to v. Complexity: O(r*c).
func (m *Dense) Fill(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

// ToRows returns the matrix as a slice of row slices (copies). Complexity: O(r*c).
func (m *Dense) ToRows() [][]float64 {
	rows := make([][]float64, m.r)
	for i := 0; i < m.r; i++ {
		row := make([]float64, m.c)
		copy(row, m.data[i*m.c:(i+1)*m.c])
		rows[i] = row
	}
	return rows
}

// DenseFromRows builds a Dense from row-major [][]float64 data, validating
// that every row has the same length. Complexity: O(r*c).
func DenseFromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	r, c := len(rows), len(rows[0])
	d, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("DenseFromRows: row %d has length %d, want %d: %w", i, len(row), c, ErrInvalidDimensions)
		}
		copy(d.data[i*c:(i+1)*c], row)
	}
	return d, nil
}
