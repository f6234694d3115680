package tapesoup

import (
	"runtime"
	"sync"

	"github.com/xrash/smetrics"
	bf "nickandperla.net/tapesoup/brainfuck"
)

// GridMetrics summarises one grid: how diverse it is, which program dominates
// and how far the rest are from it.
type GridMetrics struct {
	Epoch         int
	Cells         int
	UniqueCells   int
	Dominant      bf.Program
	DominantCount int
	// Histogram counts cell values by the OP they execute as. Values the
	// conversions don't map are counted as data.
	Histogram [bf.OP_COUNT]int
	DataCount int
	// MeanDistance is the mean edit distance, over the human readable
	// encoding, from every cell to the dominant program.
	MeanDistance float64
}

// shardMetrics holds per-row-range aggregates that get merged into GridMetrics.
type shardMetrics struct {
	histogram [bf.OP_COUNT]int
	data      int
	distance  int
}

// ComputeGridMetrics scans the grid once to find the dominant program, then
// measures the rows in parallel.
func ComputeGridMetrics(state *RunState, conversions bf.Conversions) *GridMetrics {
	grid := state.Grid
	m := &GridMetrics{
		Epoch:       state.Epoch,
		Cells:       grid.Height() * grid.Width(),
		UniqueCells: grid.UniqueCells(),
	}
	if m.Cells == 0 {
		return m
	}

	counts := make(map[string]int, m.Cells)
	var buf []byte
	for _, row := range grid {
		for _, cell := range row {
			buf = programKey(buf, cell)
			counts[string(buf)]++
		}
	}
	for _, n := range counts {
		m.DominantCount = max(m.DominantCount, n)
	}
	// Ties go to the first program in row-major order.
FIND:
	for _, row := range grid {
		for _, cell := range row {
			buf = programKey(buf, cell)
			if counts[string(buf)] == m.DominantCount {
				m.Dominant = cell.Clone()
				break FIND
			}
		}
	}
	dominant := conversions.Encode(m.Dominant)

	shards := min(runtime.NumCPU(), grid.Height())
	results := make([]shardMetrics, shards)
	var wg sync.WaitGroup
	for i := 0; i < shards; i++ {
		wg.Add(1)
		go func(shard int) {
			defer wg.Done()
			sm := &results[shard]
			for x := shard; x < grid.Height(); x += shards {
				for _, cell := range grid[x] {
					for _, v := range cell {
						if op, ok := conversions.Lookup(v); ok && op.Valid() {
							sm.histogram[op]++
						} else {
							sm.data++
						}
					}
					sm.distance += smetrics.WagnerFischer(conversions.Encode(cell), dominant, 1, 1, 1)
				}
			}
		}(i)
	}
	wg.Wait()

	var distance int
	for _, sm := range results {
		for op, n := range sm.histogram {
			m.Histogram[op] += n
		}
		m.DataCount += sm.data
		distance += sm.distance
	}
	m.MeanDistance = float64(distance) / float64(m.Cells)
	return m
}
