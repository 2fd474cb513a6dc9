package optimus

import "sort"

// distinctLevels returns the sorted distinct labels present in labels.
func distinctLevels(labels []int) []int {
	seen := make(map[int]struct{}, 8)
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	levels := make([]int, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

// groupCount returns the number of distinct labels in labels.
func groupCount(labels []int) int {
	seen := make(map[int]struct{}, 8)
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// nullClustering returns the single-group baseline clustering for n
// observations.
func nullClustering(n int) []int {
	return make([]int, n)
}

// relabelPair returns a copy of labels with every occurrence of a or b
// replaced by to.
func relabelPair(labels []int, a, b, to int) []int {
	out := make([]int, len(labels))
	for i, l := range labels {
		if l == a || l == b {
			out[i] = to
		} else {
			out[i] = l
		}
	}
	return out
}

// mergeLabelBase is the start of the reserved label namespace for merged
// clusters. Labels at or above the base never collide with labels produced
// by hierarchy cutting or by any realistic caller-supplied clustering.
const mergeLabelBase = 1 << 20

// mergeLabeler allocates monotonically increasing labels for merged clusters
// from a namespace disjoint from all labels in the starting clustering.
// It is owned by a single merge run; there is no global state.
type mergeLabeler struct {
	next int
}

// newMergeLabeler reserves a namespace above both mergeLabelBase and the
// largest label already in use.
func newMergeLabeler(labels []int) *mergeLabeler {
	next := mergeLabelBase
	for _, l := range labels {
		if l >= next {
			next = l + 1
		}
	}
	return &mergeLabeler{next: next}
}

// alloc returns the next unused merge label.
func (m *mergeLabeler) alloc() int {
	l := m.next
	m.next++
	return l
}
