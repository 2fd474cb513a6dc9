package optimus

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DataMatrix holds n observations of p variables. Rows align positionally
// with clustering label vectors. A DataMatrix is immutable after
// construction and safe for concurrent reads.
type DataMatrix struct {
	n, p  int
	cols  [][]float64
	names []string
}

// NewDataMatrix builds a DataMatrix from per-observation rows. All rows must
// have the same number of variables. names may be nil, in which case columns
// are named "V1".."Vp"; otherwise len(names) must equal the column count.
func NewDataMatrix(rows [][]float64, names []string) (*DataMatrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("optimus: data must have at least one observation")
	}
	p := len(rows[0])
	if p == 0 {
		return nil, fmt.Errorf("optimus: data must have at least one variable")
	}
	for i, row := range rows {
		if len(row) != p {
			return nil, fmt.Errorf("optimus: row %d has %d variables, want %d", i, len(row), p)
		}
	}
	if names != nil && len(names) != p {
		return nil, fmt.Errorf("optimus: got %d column names for %d columns", len(names), p)
	}

	cols := make([][]float64, p)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			col[i] = rows[i][j]
		}
		cols[j] = col
	}

	named := make([]string, p)
	for j := 0; j < p; j++ {
		if names != nil {
			named[j] = names[j]
		} else {
			named[j] = fmt.Sprintf("V%d", j+1)
		}
	}

	return &DataMatrix{n: n, p: p, cols: cols, names: named}, nil
}

// Rows returns the number of observations.
func (d *DataMatrix) Rows() int { return d.n }

// Cols returns the number of variables.
func (d *DataMatrix) Cols() int { return d.p }

// Name returns the name of column j.
func (d *DataMatrix) Name(j int) string { return d.names[j] }

// Column returns the values of variable j across all observations.
// The returned slice is internal storage and must not be modified.
func (d *DataMatrix) Column(j int) []float64 { return d.cols[j] }

// ToDense copies the matrix into a gonum mat.Dense (observations × variables)
// for callers that post-process results with gonum.
func (d *DataMatrix) ToDense() *mat.Dense {
	m := mat.NewDense(d.n, d.p, nil)
	for j, col := range d.cols {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}
