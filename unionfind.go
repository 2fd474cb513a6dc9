package optimus

// unionFind is a disjoint-set structure sized for cutting a scipy-format
// linkage: original observations occupy IDs 0..n-1 and merged clusters
// n..2n-2, so a linkage row's children can be unioned under the row's own
// cluster ID. Path compression keeps cuts near-linear.
type unionFind struct {
	parent []int
}

// newUnionFind creates a unionFind for n observations plus their n-1
// potential merged clusters.
func newUnionFind(n int) *unionFind {
	total := 2*n - 1
	if total < 1 {
		total = 1
	}
	parent := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	return &unionFind{parent: parent}
}

// find returns the root of the set containing x, with path compression.
func (uf *unionFind) find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// merge places both children of linkage row t under the row's cluster ID.
func (uf *unionFind) merge(left, right, clusterID int) {
	uf.parent[uf.find(left)] = clusterID
	uf.parent[uf.find(right)] = clusterID
}
