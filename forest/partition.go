package forest

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/goforest/utils"
)

// Partition assigns the global z-order cell sequence contiguously to the
// given number of simulated ranks and rebuilds the shared ownership
// metadata: the global prefix array and the per rank, per tree offsets.
// Ranks may end up empty when there are more ranks than cells.
func (w *World) Partition(ranks int) {
	if ranks < 1 {
		panic(fmt.Errorf("rank count must be positive, have %d", ranks))
	}
	pm := utils.NewPartitionMap(ranks, len(w.Cells))
	w.pm = pm
	w.NumRanks = ranks
	w.Prefix = pm.GlobalPrefix()
	w.TreeOffsets = make([][]int, ranks)
	for r := 0; r < ranks; r++ {
		counts := make([]int, w.Conn.NumTrees)
		for g := w.Prefix[r]; g < w.Prefix[r+1]; g++ {
			counts[w.Cells[g].Tree]++
		}
		offsets := make([]int, w.Conn.NumTrees)
		for t := 1; t < w.Conn.NumTrees; t++ {
			offsets[t] = offsets[t-1] + counts[t-1]
		}
		w.TreeOffsets[r] = offsets
	}
}

// Owner returns the rank owning global cell g, delegating to the partition
// map's bucket search.
func (w *World) Owner(g int) (rank int) {
	if w.pm == nil {
		panic("forest is not partitioned")
	}
	rank, _, _ = w.pm.GetBucket(g)
	if rank == -1 {
		panic(fmt.Errorf("global index %d outside [0,%d)", g, len(w.Cells)))
	}
	return
}

// LocalCount returns the number of cells owned by rank.
func (w *World) LocalCount(rank int) int {
	return w.Prefix[rank+1] - w.Prefix[rank]
}

// TreeOffset returns the count of cells, within rank's contiguous run, that
// belong to trees preceding tree in the tree ordering.
func (w *World) TreeOffset(rank, tree int) int {
	return w.TreeOffsets[rank][tree]
}

// TreeLocalIndex returns cell g's index within its owning tree's portion of
// the owner's run, the per-tree local number carried on ghost records.
func (w *World) TreeLocalIndex(g int) int {
	rank := w.Owner(g)
	return g - w.Prefix[rank] - w.TreeOffsets[rank][w.Cells[g].Tree]
}

// AnalyzePartition reports the load balance of the current partition.
func (w *World) AnalyzePartition() {
	loads := make([]float64, w.NumRanks)
	for r := 0; r < w.NumRanks; r++ {
		loads[r] = float64(w.LocalCount(r))
	}
	var (
		mean      = stat.Mean(loads, nil)
		max       = floats.Max(loads)
		min       = floats.Min(loads)
		imbalance float64
	)
	if mean > 0 {
		imbalance = max/mean - 1
	}
	log.Printf("Partition analysis:")
	log.Printf("  Cells: %d over %d ranks", len(w.Cells), w.NumRanks)
	log.Printf("  Load range: [%g, %g], avg: %.2f", min, max, mean)
	log.Printf("  Load imbalance: %.2f%%", imbalance*100)
	for r := 0; r < w.NumRanks; r++ {
		log.Printf("  Rank %d: cells [%d, %d)", r, w.Prefix[r], w.Prefix[r+1])
	}
}
