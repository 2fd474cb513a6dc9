package optimus

import "sync"

// fitColumns fits every data column against one design sequentially.
func fitColumns(data *DataMatrix, d *groupDesign, f columnFitter) []ColumnFit {
	fits := make([]ColumnFit, data.Cols())
	for j := 0; j < data.Cols(); j++ {
		fits[j] = fitColumn(f, d, j, data.Column(j))
	}
	return fits
}

// fitColumnsParallel fits columns using multiple goroutines. Each worker
// handles a contiguous range of columns; ranges don't overlap, so result
// writes need no synchronization and the output is identical to the
// sequential path. Falls back to fitColumns if numWorkers <= 1.
func fitColumnsParallel(data *DataMatrix, d *groupDesign, f columnFitter, numWorkers int) []ColumnFit {
	p := data.Cols()
	if numWorkers <= 1 || p <= 1 {
		return fitColumns(data, d, f)
	}

	fits := make([]ColumnFit, p)

	var wg sync.WaitGroup
	colsPerWorker := (p + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * colsPerWorker
		end := start + colsPerWorker
		if end > p {
			end = p
		}
		if start >= p {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				fits[j] = fitColumn(f, d, j, data.Column(j))
			}
		}(start, end)
	}

	wg.Wait()
	return fits
}

// scoreLabels fits all columns for one clustering and aggregates the result.
func scoreLabels(data *DataMatrix, labels []int, f columnFitter, numWorkers int) AicRow {
	d := newGroupDesign(labels)
	fits := fitColumnsParallel(data, d, f, numWorkers)
	return sumAIC(labels, d.k, fits)
}

// pairTrial is one candidate merge of two cluster labels.
type pairTrial struct {
	a, b int
	row  AicRow
}

// scorePairsParallel scores every candidate pair merge of the current
// clustering, relabeling each pair to trialLabel. Pairs are chunked across
// workers; within one trial the column fits run sequentially. Trial order in
// the result matches the input pair order regardless of worker count.
func scorePairsParallel(data *DataMatrix, labels []int, pairs [][2]int, trialLabel int, f columnFitter, numWorkers int) []pairTrial {
	trials := make([]pairTrial, len(pairs))

	scoreRange := func(start, end int) {
		for i := start; i < end; i++ {
			trial := relabelPair(labels, pairs[i][0], pairs[i][1], trialLabel)
			trials[i] = pairTrial{
				a:   pairs[i][0],
				b:   pairs[i][1],
				row: scoreLabels(data, trial, f, 1),
			}
		}
	}

	if numWorkers <= 1 || len(pairs) <= 1 {
		scoreRange(0, len(pairs))
		return trials
	}

	var wg sync.WaitGroup
	pairsPerWorker := (len(pairs) + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * pairsPerWorker
		end := start + pairsPerWorker
		if end > len(pairs) {
			end = len(pairs)
		}
		if start >= len(pairs) {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			scoreRange(start, end)
		}(start, end)
	}

	wg.Wait()
	return trials
}
