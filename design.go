package optimus

import "gonum.org/v1/gonum/mat"

// groupDesign is the treatment-coded design for one clustering: the sorted
// distinct levels (smallest label is the reference), a per-observation level
// index, and per-level observation counts. Built once per clustering and
// shared read-only across column fits.
type groupDesign struct {
	levels []int
	index  []int // index[i] in [0, k): level position of observation i
	counts []int
	n, k   int
}

// newGroupDesign builds the design for a label vector.
func newGroupDesign(labels []int) *groupDesign {
	levels := distinctLevels(labels)
	pos := make(map[int]int, len(levels))
	for j, l := range levels {
		pos[l] = j
	}

	index := make([]int, len(labels))
	counts := make([]int, len(levels))
	for i, l := range labels {
		j := pos[l]
		index[i] = j
		counts[j]++
	}

	return &groupDesign{
		levels: levels,
		index:  index,
		counts: counts,
		n:      len(labels),
		k:      len(levels),
	}
}

// matrix returns the n×k treatment-coded design: an intercept column followed
// by one indicator column per non-reference level, in level order.
func (d *groupDesign) matrix() *mat.Dense {
	x := mat.NewDense(d.n, d.k, nil)
	for i := 0; i < d.n; i++ {
		x.Set(i, 0, 1)
		if j := d.index[i]; j > 0 {
			x.Set(i, j, 1)
		}
	}
	return x
}
