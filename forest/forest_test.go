package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goforest/types"
)

func TestConnectivity(t *testing.T) {
	{ // Unit square: every face is a wall
		conn := NewUnitSquare()
		assert.Equal(t, 2, conn.Dim)
		assert.Equal(t, 4, conn.NumFaces())
		for f := 0; f < 4; f++ {
			assert.True(t, conn.IsBoundary(0, f))
		}
	}
	{ // Periodic: opposite faces connect, nothing is a wall
		conn := NewPeriodic(2)
		for f := 0; f < 4; f++ {
			assert.False(t, conn.IsBoundary(0, f))
			assert.Equal(t, 0, conn.ToTree[0][f])
			assert.Equal(t, f^1, conn.ToFace[0][f])
		}
	}
	{ // 2x2 brick, non-periodic: inner faces connect, outer faces wall
		conn := NewBrick(2, 2, 2, 0, false, false, false)
		require.Equal(t, 4, conn.NumTrees)
		// tree 0 sits at (0,0): +x connects to tree 1, +y to tree 2
		assert.True(t, conn.IsBoundary(0, 0))
		assert.True(t, conn.IsBoundary(0, 2))
		assert.Equal(t, 1, conn.ToTree[0][1])
		assert.Equal(t, 0, conn.ToFace[0][1])
		assert.Equal(t, 2, conn.ToTree[0][3])
		assert.Equal(t, 2, conn.ToFace[0][3])
	}
	{ // 2x2 brick, periodic in x: tree 1's +x wraps to tree 0
		conn := NewBrick(2, 2, 2, 0, true, false, false)
		assert.Equal(t, 0, conn.ToTree[1][1])
		assert.False(t, conn.IsBoundary(1, 1))
		// y stays walled, but only on the bottom and top rows: tree 1's
		// +y face connects interiorly to tree 3, whose +y face is the wall
		assert.Equal(t, 3, conn.ToTree[1][3])
		assert.False(t, conn.IsBoundary(1, 3))
		assert.True(t, conn.IsBoundary(1, 2))
		assert.True(t, conn.IsBoundary(3, 3))
	}
}

func TestUniformBuild(t *testing.T) {
	w := New(NewUnitSquare(), 1)
	require.Equal(t, 4, w.TotalCells())
	half := types.RootLen / 2
	// z-order: (0,0), (h,0), (0,h), (h,h)
	assert.Equal(t, Cell{0, 0, 0, 0, 1}, w.Cells[0])
	assert.Equal(t, Cell{0, half, 0, 0, 1}, w.Cells[1])
	assert.Equal(t, Cell{0, 0, half, 0, 1}, w.Cells[2])
	assert.Equal(t, Cell{0, half, half, 0, 1}, w.Cells[3])

	w3 := New(NewUnitCube(), 1)
	assert.Equal(t, 8, w3.TotalCells())
	assert.Equal(t, Cell{0, 0, 0, half, 1}, w3.Cells[4])

	wb := New(NewBrick(2, 2, 2, 0, false, false, false), 1)
	assert.Equal(t, 16, wb.TotalCells())
	assert.Equal(t, 1, wb.Cells[4].Tree)
}

func TestRefineExactlyOnce(t *testing.T) {
	w := New(NewUnitSquare(), 1)
	split := w.Refine(RefineTreeOrigin)
	require.Equal(t, 1, split)
	require.Equal(t, 7, w.TotalCells())
	// The origin cell became 4 level-2 children, in place in the sequence
	quarter := types.RootLen / 4
	assert.Equal(t, Cell{0, 0, 0, 0, 2}, w.Cells[0])
	assert.Equal(t, Cell{0, quarter, 0, 0, 2}, w.Cells[1])
	assert.Equal(t, Cell{0, 0, quarter, 0, 2}, w.Cells[2])
	assert.Equal(t, Cell{0, quarter, quarter, 0, 2}, w.Cells[3])
	for _, c := range w.Cells[4:] {
		assert.Equal(t, 1, c.Level)
	}
	// Balance has nothing to do: levels differ by one
	assert.Equal(t, 0, w.Balance())
}

func TestFindLeaf(t *testing.T) {
	w := New(NewUnitSquare(), 1)
	w.Refine(RefineTreeOrigin)
	quarter := types.RootLen / 4
	g, ok := w.FindLeaf(0, 0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, Cell{0, 0, 0, 0, 2}, w.Cells[g])
	// A point interior to a coarse cell finds that cell
	g, ok = w.FindLeaf(0, 3*quarter, quarter, 0)
	require.True(t, ok)
	assert.Equal(t, 1, w.Cells[g].Level)
	assert.Equal(t, types.RootLen/2, w.Cells[g].X)
	_, ok = w.FindLeaf(0, types.RootLen, 0, 0)
	assert.False(t, ok)
}

func TestFaceNeighbors(t *testing.T) {
	w := New(NewUnitSquare(), 1)
	w.Refine(RefineTreeOrigin)
	var (
		half    = types.RootLen / 2
		quarter = types.RootLen / 4
	)
	{ // Child (quarter,0) faces the unrefined half-cell across +x: coarser
		rel, globals, err := w.FaceNeighbors(Cell{0, quarter, 0, 0, 2}, 1)
		require.NoError(t, err)
		assert.Equal(t, Coarser, rel)
		require.Len(t, globals, 1)
		assert.Equal(t, Cell{0, half, 0, 0, 1}, w.Cells[globals[0]])
	}
	{ // Both +x-side children share that same coarse neighbor
		_, g1, err := w.FaceNeighbors(Cell{0, quarter, 0, 0, 2}, 1)
		require.NoError(t, err)
		_, g2, err := w.FaceNeighbors(Cell{0, quarter, quarter, 0, 2}, 1)
		require.NoError(t, err)
		assert.Equal(t, g1, g2)
	}
	{ // The coarse cell sees two half-size neighbors across -x, in z-order
		rel, globals, err := w.FaceNeighbors(Cell{0, half, 0, 0, 1}, 0)
		require.NoError(t, err)
		assert.Equal(t, Finer, rel)
		require.Len(t, globals, 2)
		assert.Equal(t, Cell{0, quarter, 0, 0, 2}, w.Cells[globals[0]])
		assert.Equal(t, Cell{0, quarter, quarter, 0, 2}, w.Cells[globals[1]])
	}
	{ // Same-size between the two unrefined cells
		rel, globals, err := w.FaceNeighbors(Cell{0, half, 0, 0, 1}, 3)
		require.NoError(t, err)
		assert.Equal(t, SameSize, rel)
		assert.Equal(t, Cell{0, half, half, 0, 1}, w.Cells[globals[0]])
	}
	{ // Domain edges are boundaries
		rel, _, err := w.FaceNeighbors(Cell{0, half, 0, 0, 1}, 1)
		require.NoError(t, err)
		assert.Equal(t, NoNeighbor, rel)
	}
}

func TestFaceNeighborsPeriodic(t *testing.T) {
	w := New(NewPeriodic(2), 1)
	half := types.RootLen / 2
	// The cell at (0,0) wraps across -x to the cell at the opposite edge
	rel, globals, err := w.FaceNeighbors(Cell{0, 0, 0, 0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, SameSize, rel)
	assert.Equal(t, Cell{0, half, 0, 0, 1}, w.Cells[globals[0]])
	// And across -y likewise
	rel, globals, err = w.FaceNeighbors(Cell{0, 0, 0, 0, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, SameSize, rel)
	assert.Equal(t, Cell{0, 0, half, 0, 1}, w.Cells[globals[0]])
}

func TestFaceNeighborsBrick(t *testing.T) {
	w := New(NewBrick(2, 2, 1, 0, false, false, false), 1)
	half := types.RootLen / 2
	// Tree 0's +x edge cell connects into tree 1's -x edge cell
	rel, globals, err := w.FaceNeighbors(Cell{0, half, 0, 0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, SameSize, rel)
	assert.Equal(t, Cell{1, 0, 0, 0, 1}, w.Cells[globals[0]])
}

func TestBalance(t *testing.T) {
	// Push one region to level 3 right against a level-1 cell, so balance
	// has to split the coarse side
	var (
		w       = New(NewUnitSquare(), 1)
		quarter = types.RootLen / 4
	)
	w.Refine(RefineTreeOrigin)
	w.Refine(func(c Cell) bool {
		return c.Level == 2 && c.X == quarter && c.Y == 0
	})
	require.Equal(t, 10, w.TotalCells())
	split := w.Balance()
	assert.Equal(t, 1, split)
	assert.Equal(t, 13, w.TotalCells())
	for _, c := range w.Cells {
		for f := 0; f < 4; f++ {
			if lvl, ok := w.finestAcrossFace(c, f); ok {
				assert.True(t, lvl <= c.Level+1,
					"cell %+v face %d sees level %d", c, f, lvl)
			}
		}
	}
}

func TestPartition(t *testing.T) {
	w := New(NewUnitSquare(), 1)
	w.Refine(RefineTreeOrigin)
	w.Partition(2)
	assert.Equal(t, []int{0, 4, 7}, w.Prefix)
	assert.Equal(t, 4, w.LocalCount(0))
	assert.Equal(t, 3, w.LocalCount(1))
	for g := 0; g < 7; g++ {
		if g < 4 {
			assert.Equal(t, 0, w.Owner(g))
		} else {
			assert.Equal(t, 1, w.Owner(g))
		}
	}
	// Single tree: tree offsets are zero, tree-local index equals run index
	assert.Equal(t, 0, w.TreeOffset(0, 0))
	assert.Equal(t, 0, w.TreeOffset(1, 0))
	assert.Equal(t, 2, w.TreeLocalIndex(6))
	// Owner is defined only on a partitioned forest and in range
	assert.Panics(t, func() { w.Owner(7) })
	assert.Panics(t, func() { New(NewUnitSquare(), 1).Owner(0) })
}

func TestPartitionBrickTreeOffsets(t *testing.T) {
	w := New(NewBrick(2, 2, 1, 0, false, false, false), 1)
	require.Equal(t, 8, w.TotalCells())
	w.Partition(2)
	// Rank 0 owns cells 0..3 (tree 0), rank 1 owns 4..7 (tree 1)
	assert.Equal(t, 0, w.TreeOffset(0, 0))
	assert.Equal(t, 4, w.TreeOffset(0, 1))
	assert.Equal(t, 0, w.TreeOffset(1, 0))
	assert.Equal(t, 0, w.TreeOffset(1, 1))
	assert.Equal(t, 3, w.TreeLocalIndex(7))
	// Partition across a tree: rank 0 takes part of tree 1
	w.Partition(3)
	assert.Equal(t, []int{0, 3, 6, 8}, w.Prefix)
	assert.Equal(t, 3, w.TreeOffset(0, 1)) // three tree-0 cells precede
	assert.Equal(t, 0, w.TreeLocalIndex(3))
	assert.Equal(t, 1, w.TreeLocalIndex(5))
}

func TestRefinePolicyPurity(t *testing.T) {
	// The canonical policy refines at most one cell per pass regardless of
	// forest shape
	for _, conn := range []*Connectivity{NewUnitSquare(), NewPeriodic(2),
		NewBrick(2, 2, 2, 0, false, false, false)} {
		w := New(conn, 1)
		hits := 0
		for _, c := range w.Cells {
			if RefineTreeOrigin(c) {
				hits++
			}
		}
		assert.Equal(t, 1, hits, conn.Name)
	}
}
