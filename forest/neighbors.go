package forest

import (
	"fmt"

	"github.com/notargets/goforest/types"
)

// Relation classifies the refinement-level relationship between a cell and
// its neighbor(s) across one face.
type Relation int

const (
	NoNeighbor Relation = iota // physical domain boundary
	SameSize
	Coarser // neighbor is one level coarser, shared by sibling faces
	Finer   // 2 (2D) or 4 (3D) neighbors one level finer
)

func (r Relation) String() string {
	switch r {
	case NoNeighbor:
		return "NoNeighbor"
	case SameSize:
		return "SameSize"
	case Coarser:
		return "Coarser"
	case Finer:
		return "Finer"
	}
	return "Invalid"
}

// faceRegion locates the same-size neighbor region across face f: the tree
// holding it and the lattice origin of the region in that tree's frame,
// following the connectivity across tree faces (periodic wrap included).
// ok is false at a physical boundary.
func (w *World) faceRegion(c Cell, f int) (tree, x, y, z int, ok bool) {
	var (
		axis   = FaceAxis(f)
		length = c.Len()
		pos    = [3]int{c.X, c.Y, c.Z}
	)
	pos[axis] += FaceSign(f) * length
	tree = c.Tree
	if pos[axis] < 0 || pos[axis] >= types.RootLen {
		if w.Conn.IsBoundary(c.Tree, f) {
			return 0, 0, 0, 0, false
		}
		// Identity orientation across the tree face: the coordinate wraps
		// by one root length along the face axis
		tree = w.Conn.ToTree[c.Tree][f]
		pos[axis] = (pos[axis] + types.RootLen) % types.RootLen
	}
	return tree, pos[0], pos[1], pos[2], true
}

/*
FaceNeighbors finds the leaf (or leaves) adjacent to cell c across face f.
For a SameSize or Coarser relation the single neighbor's global index is
returned; for Finer, the 1<<(Dim-1) half-size neighbors in z-order. The
forest must be 2:1 face balanced, a level gap beyond one is reported as an
error.
*/
func (w *World) FaceNeighbors(c Cell, f int) (rel Relation, globals []int, err error) {
	tree, x, y, z, ok := w.faceRegion(c, f)
	if !ok {
		return NoNeighbor, nil, nil
	}
	if g, found := w.LeafAt(tree, x, y, z, c.Level); found {
		return SameSize, []int{g}, nil
	}
	// Probe a point just inside the region against the shared face
	var (
		axis  = FaceAxis(f)
		probe = [3]int{x, y, z}
	)
	if FaceSign(f) < 0 {
		probe[axis] += c.Len() - 1
	}
	g, found := w.FindLeaf(tree, probe[0], probe[1], probe[2])
	if !found {
		return 0, nil, fmt.Errorf("no leaf covers tree %d point (%d,%d,%d), forest incomplete",
			tree, probe[0], probe[1], probe[2])
	}
	leaf := w.Cells[g]
	switch {
	case leaf.Level == c.Level-1:
		return Coarser, []int{g}, nil
	case leaf.Level == c.Level+1:
		globals, err = w.halfLeaves(tree, x, y, z, c.Level, f)
		return Finer, globals, err
	default:
		return 0, nil, fmt.Errorf("cell level %d faces leaf level %d across face %d, forest not 2:1 balanced",
			c.Level, leaf.Level, f)
	}
}

// halfLeaves collects the half-size leaves inside the region that touch the
// face shared with the querying cell, in z-order.
func (w *World) halfLeaves(tree, x, y, z, level, f int) (globals []int, err error) {
	var (
		axis = FaceAxis(f)
		half = types.CellLen(level + 1)
		// Children touching the shared face sit against the region side
		// facing back toward the querying cell
		want = 0
	)
	if FaceSign(f) < 0 {
		want = 1
	}
	for m := 0; m < 1<<w.Dim; m++ {
		bits := [3]int{m & 1, m >> 1 & 1, m >> 2 & 1}
		if bits[axis] != want {
			continue
		}
		g, found := w.LeafAt(tree, x+bits[0]*half, y+bits[1]*half, z+bits[2]*half, level+1)
		if !found {
			return nil, fmt.Errorf("half-size neighbor missing at tree %d (%d,%d,%d) level %d",
				tree, x+bits[0]*half, y+bits[1]*half, z+bits[2]*half, level+1)
		}
		globals = append(globals, g)
	}
	return
}

// finestAcrossFace returns the deepest leaf level present across face f,
// scanning recursively so it remains correct on an unbalanced forest. ok is
// false at a physical boundary.
func (w *World) finestAcrossFace(c Cell, f int) (lvl int, ok bool) {
	tree, x, y, z, found := w.faceRegion(c, f)
	if !found {
		return 0, false
	}
	return w.finestTouching(tree, x, y, z, c.Level, f), true
}

func (w *World) finestTouching(tree, x, y, z, level, f int) (lvl int) {
	// A leaf at this level or coarser covers the whole region
	for l := level; l >= 0; l-- {
		mask := types.CellLen(l) - 1
		if _, found := w.LeafAt(tree, x&^mask, y&^mask, z&^mask, l); found {
			return l
		}
	}
	if level >= w.finest {
		return level
	}
	// The region is subdivided, scan the children touching the face
	var (
		axis = FaceAxis(f)
		half = types.CellLen(level + 1)
		want = 0
	)
	if FaceSign(f) < 0 {
		want = 1
	}
	for m := 0; m < 1<<w.Dim; m++ {
		bits := [3]int{m & 1, m >> 1 & 1, m >> 2 & 1}
		if bits[axis] != want {
			continue
		}
		sub := w.finestTouching(tree, x+bits[0]*half, y+bits[1]*half, z+bits[2]*half, level+1, f)
		if sub > lvl {
			lvl = sub
		}
	}
	return
}
