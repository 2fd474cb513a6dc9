package optimus

import "math"

// AicTable is the scored comparison of a family of candidate clusterings,
// one row per candidate in generation order. Lower SumAIC is better; the
// table imposes no ranking of its own.
type AicTable struct {
	Rows []AicRow

	// Provenance for downstream display.
	Family  Family
	Trials  int
	Mode    Mode
	Levels  []int // requested cut levels (hierarchy mode only)
	Workers int
}

// FindOptimal scores every candidate clustering produced from input against
// data: one model per column with cluster membership as the sole predictor,
// summed into a sum-of-AIC per candidate. A candidate with failed column
// fits yields an invalid row; the scan always completes for the rest.
func FindOptimal(data *DataMatrix, input ClusteringInput, cfg Config) (*AicTable, error) {
	if err := prepare(data, &cfg); err != nil {
		return nil, err
	}
	fitter, err := fitterFor(cfg.Family, cfg.Trials)
	if err != nil {
		return nil, err
	}

	cands, mode, err := enumerate(input, data.Rows(), cfg)
	if err != nil {
		return nil, err
	}

	table := &AicTable{
		Rows:    make([]AicRow, 0, len(cands)),
		Family:  cfg.Family,
		Trials:  cfg.Trials,
		Mode:    mode,
		Workers: cfg.Workers,
	}
	if mode == ModeHierarchy {
		table.Levels = cfg.CutLevels
	}

	for _, c := range cands {
		if c.err != nil {
			table.Rows = append(table.Rows, AicRow{
				Groups: c.groups,
				SumAIC: math.NaN(),
				Reason: c.err.Error(),
			})
			continue
		}
		table.Rows = append(table.Rows, scoreLabels(data, c.labels, fitter, cfg.Workers))
	}
	return table, nil
}

// FitClustering fits every column of data against one clustering and returns
// the per-column fits alongside the aggregated row. It is the scoring
// primitive the batch drivers share, exposed for callers that want
// per-variable detail for a single partition.
func FitClustering(data *DataMatrix, labels []int, cfg Config) ([]ColumnFit, AicRow, error) {
	if err := prepare(data, &cfg); err != nil {
		return nil, AicRow{}, err
	}
	if len(labels) != data.Rows() {
		return nil, AicRow{}, lengthMismatch(len(labels), data.Rows())
	}
	fitter, err := fitterFor(cfg.Family, cfg.Trials)
	if err != nil {
		return nil, AicRow{}, err
	}

	d := newGroupDesign(labels)
	fits := fitColumnsParallel(data, d, fitter, cfg.Workers)
	return fits, sumAIC(labels, d.k, fits), nil
}

// Best returns the valid row with the lowest SumAIC, ties going to the
// earlier row. ok is false when no row is valid.
func (t *AicTable) Best() (best AicRow, ok bool) {
	for _, row := range t.Rows {
		if !row.Valid {
			continue
		}
		if !ok || row.SumAIC < best.SumAIC {
			best = row
			ok = true
		}
	}
	return best, ok
}

// Curve returns (groups, sumAIC) pairs for valid rows in table order,
// ready for plotting with group count as the independent axis.
func (t *AicTable) Curve() [][2]float64 {
	curve := make([][2]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row.Valid {
			curve = append(curve, [2]float64{float64(row.Groups), row.SumAIC})
		}
	}
	return curve
}
