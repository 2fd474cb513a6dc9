// Package optimus compares competing clusterings of multivariate data by how
// well each clustering predicts the data through per-variable statistical
// models.
//
// For a candidate partition of the observations, optimus fits one generalized
// linear model per data column with cluster membership as the sole categorical
// predictor, extracts each model's AIC, and sums across columns into a single
// score. Lower sum-of-AIC means the clustering is a better description of the
// data. Three drivers are built on this engine:
//
//   - FindOptimal scans a family of partitions (cut levels of a hierarchy, or
//     an explicit list of label vectors) and scores each one.
//   - Characteristic reports which variables are most diagnostic of cluster
//     membership, per cluster or globally.
//   - MergeClusters greedily collapses the pair of clusters whose merge least
//     degrades the score, building a merge sequence.
//
// Basic usage:
//
//	data, err := optimus.NewDataMatrix(rows, names)
//	cfg := optimus.DefaultConfig()
//	cfg.Family = optimus.FamilyPoisson
//	cfg.CutLevels = []int{2, 3, 4, 5}
//	table, err := optimus.FindOptimal(data, optimus.ClusteringInput{Linkage: link}, cfg)
//	best, ok := table.Best()
//
// Hierarchies use the scipy linkage encoding: each row is
// [left, right, distance, size] and merged cluster IDs start at the number of
// observations. Explicit label vectors may use any integer labels; labels are
// opaque identifiers, not ordered and not necessarily contiguous.
//
// # Model families
//
// Config.Family selects the per-variable model: FamilyGaussian (linear model),
// FamilyPoisson (log-link counts), FamilyNegativeBinomial (log-link counts
// with estimated dispersion), FamilyBinomial (complementary log-log link for
// presence/absence when Trials is 1, logit on success proportions otherwise),
// and FamilyOrdinal (proportional-odds cumulative logits). One family applies
// uniformly to every column of a DataMatrix for one invocation.
//
// Individual columns that cannot be fitted (degenerate response, singular
// design) are reported as typed per-column failures; batch drivers mark the
// owning partition invalid and keep scoring everything else.
package optimus
