package utils

import "fmt"

/*
PartitionMap splits a contiguous global index range over a number of ranks,
with a maximum imbalance of one item between any two ranks. The split is the
ownership model for the forest: rank r owns the half-open index range
Partitions[r], and the cumulative counts form the global prefix array used
to convert a (rank, local index) pair into a global index.
*/
type PartitionMap struct {
	MaxIndex   int // MaxIndex is partitioned into NumRanks contiguous runs
	NumRanks   int
	Partitions [][2]int // Beginning and end index of each rank's run
}

func NewPartitionMap(NumRanks, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:   maxIndex,
		NumRanks:   NumRanks,
		Partitions: make([][2]int, NumRanks),
	}
	for n := 0; n < NumRanks; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// Split1D computes rank's index range, spreading the remainder of the
// division over the leading ranks so no two ranks differ by more than one.
func (pm *PartitionMap) Split1D(rank int) (bucket [2]int) {
	var (
		base      = pm.MaxIndex / pm.NumRanks
		remainder = pm.MaxIndex % pm.NumRanks
	)
	bucket[0] = rank * base
	if rank < remainder {
		bucket[0] += rank
		bucket[1] = bucket[0] + base + 1
	} else {
		bucket[0] += remainder
		bucket[1] = bucket[0] + base
	}
	return
}

// GlobalPrefix returns the cumulative cell-count array of length NumRanks+1:
// entry r is the total count owned by ranks 0..r-1, entry 0 is zero and the
// last entry is MaxIndex. It is monotonically non-decreasing (empty ranks
// repeat the previous value).
func (pm *PartitionMap) GlobalPrefix() (prefix []int) {
	prefix = make([]int, pm.NumRanks+1)
	for n := 0; n < pm.NumRanks; n++ {
		prefix[n+1] = pm.Partitions[n][1]
	}
	return
}

// GetBucket finds the rank owning a global index, starting from a
// proportional guess and walking toward the owner. Returns -1 when the index
// is outside [0, MaxIndex).
func (pm *PartitionMap) GetBucket(gIdx int) (rank, min, max int) {
	if gIdx < 0 || gIdx >= pm.MaxIndex {
		return -1, 0, 0
	}
	rank = pm.NumRanks * gIdx / pm.MaxIndex
	for {
		min, max = pm.Partitions[rank][0], pm.Partitions[rank][1]
		if gIdx < min {
			rank--
		} else if gIdx >= max {
			rank++
		} else {
			return
		}
		if rank < 0 || rank >= pm.NumRanks {
			// Unreachable for a well formed map, the walk is bracketed
			panic(fmt.Errorf("owner walk escaped for index %d", gIdx))
		}
	}
}

func (pm *PartitionMap) GetBucketRange(rank int) (gMin, gMax int) {
	gMin, gMax = pm.Partitions[rank][0], pm.Partitions[rank][1]
	return
}

// GetBucketDimension returns the number of items owned by rank.
func (pm *PartitionMap) GetBucketDimension(rank int) (count int) {
	count = pm.Partitions[rank][1] - pm.Partitions[rank][0]
	return
}

func (pm *PartitionMap) GetLocalIndex(gIdx int) (local, rank int) {
	var min int
	rank, min, _ = pm.GetBucket(gIdx)
	if rank == -1 {
		panic(fmt.Errorf("global index %d outside [0,%d)", gIdx, pm.MaxIndex))
	}
	local = gIdx - min
	return
}

func (pm *PartitionMap) GetGlobalIndex(local, rank int) (gIdx int) {
	gIdx = pm.Partitions[rank][0] + local
	return
}
