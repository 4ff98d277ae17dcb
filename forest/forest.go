package forest

import (
	"fmt"

	"github.com/notargets/goforest/types"
	"github.com/notargets/goforest/utils"
)

// Cell is a leaf of the forest: an axis aligned square (2D) or cube (3D)
// identified by its owning tree, the lattice coordinate of its lower corner
// in the tree-local frame, and its refinement level.
type Cell struct {
	Tree    int
	X, Y, Z int
	Level   int
}

func (c Cell) Len() int {
	return types.CellLen(c.Level)
}

func (c Cell) Key() types.CellKey {
	return types.NewCellKey(c.Tree, c.X, c.Y, c.Z, c.Level)
}

/*
World is the global forest snapshot: every leaf cell of every tree, ordered
tree major and in z-order within each tree. After Partition it also carries
the ownership metadata every simulated rank shares: the global prefix array
and the per rank, per tree cell count offsets.

The cell sequence and the derived metadata are immutable between
modification passes. Refine and Balance rebuild the sequence and drop any
existing partition, Partition rebuilds the ownership metadata.
*/
type World struct {
	Dim   int
	Conn  *Connectivity
	Cells []Cell

	// Set by Partition
	NumRanks    int
	Prefix      []int   // cumulative cell counts, length NumRanks+1
	TreeOffsets [][]int // [rank][tree]: rank's cell count in trees preceding tree

	pm     *utils.PartitionMap
	lookup map[types.CellKey]int
	finest int
}

// New builds a forest with every tree uniformly subdivided to minLevel, in
// z-order within each tree.
func New(conn *Connectivity, minLevel int) (w *World) {
	if minLevel < 0 || minLevel > types.MaxLevel {
		panic(fmt.Errorf("minLevel %d outside [0,%d]", minLevel, types.MaxLevel))
	}
	w = &World{
		Dim:  conn.Dim,
		Conn: conn,
	}
	var (
		perTree = 1 << (conn.Dim * minLevel)
		length  = types.CellLen(minLevel)
	)
	w.Cells = make([]Cell, 0, conn.NumTrees*perTree)
	for t := 0; t < conn.NumTrees; t++ {
		for m := 0; m < perTree; m++ {
			x, y, z := mortonDecode(m, conn.Dim, minLevel)
			w.Cells = append(w.Cells, Cell{
				Tree:  t,
				X:     x * length,
				Y:     y * length,
				Z:     z * length,
				Level: minLevel,
			})
		}
	}
	w.rebuildLookup()
	return
}

// mortonDecode deinterleaves a z-order index at the given level into grid
// coordinates, x bit least significant.
func mortonDecode(m, dim, level int) (x, y, z int) {
	for b := 0; b < level; b++ {
		x |= (m >> (dim * b) & 1) << b
		y |= (m >> (dim*b + 1) & 1) << b
		if dim == 3 {
			z |= (m >> (dim*b + 2) & 1) << b
		}
	}
	return
}

func (w *World) rebuildLookup() {
	w.lookup = make(map[types.CellKey]int, len(w.Cells))
	w.finest = 0
	for i, c := range w.Cells {
		w.lookup[c.Key()] = i
		if c.Level > w.finest {
			w.finest = c.Level
		}
	}
	// Any prior partition describes a different cell sequence
	w.NumRanks = 0
	w.Prefix = nil
	w.TreeOffsets = nil
	w.pm = nil
}

// FindLeaf returns the global index of the unique leaf of tree containing
// the lattice point (x,y,z). ok is false when the point is outside the root
// domain.
func (w *World) FindLeaf(tree, x, y, z int) (g int, ok bool) {
	if x < 0 || x >= types.RootLen || y < 0 || y >= types.RootLen ||
		z < 0 || z >= types.RootLen {
		return -1, false
	}
	for lvl := w.finest; lvl >= 0; lvl-- {
		mask := types.CellLen(lvl) - 1
		key := types.NewCellKey(tree, x&^mask, y&^mask, z&^mask, lvl)
		if g, ok = w.lookup[key]; ok {
			return
		}
	}
	return -1, false
}

// LeafAt returns the leaf with exactly the given position and level, if one
// exists.
func (w *World) LeafAt(tree, x, y, z, level int) (g int, ok bool) {
	g, ok = w.lookup[types.NewCellKey(tree, x, y, z, level)]
	return
}

// TotalCells returns the global leaf count.
func (w *World) TotalCells() int {
	return len(w.Cells)
}
