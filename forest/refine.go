package forest

import (
	"fmt"

	"github.com/notargets/goforest/types"
)

// RefinePolicy decides whether a cell should be split into its children.
// Policies must be pure: the decision depends only on the cell value, never
// on mutable state, so the refined forest shape is deterministic.
type RefinePolicy func(c Cell) bool

// RefineTreeOrigin splits exactly the cell sitting at the origin of tree 0,
// producing a controlled non-uniform pattern that exercises same-size,
// half-size and double-size neighbor relations at once.
func RefineTreeOrigin(c Cell) bool {
	return c.Tree == 0 && c.X == 0 && c.Y == 0 && c.Z == 0
}

// Refine runs one refinement pass: every cell the policy selects is
// replaced, in place in the z-order sequence, by its 4 (2D) or 8 (3D)
// children. Returns the number of cells split.
func (w *World) Refine(policy RefinePolicy) (split int) {
	marked := make(map[int]bool)
	for i, c := range w.Cells {
		if policy(c) {
			if c.Level >= types.MaxLevel {
				panic(fmt.Errorf("refinement beyond MaxLevel %d", types.MaxLevel))
			}
			marked[i] = true
		}
	}
	return w.splitCells(marked)
}

// Balance enforces the 2:1 face-balance condition: no leaf may share a face
// with a leaf more than one level finer. Coarse offenders are split
// repeatedly until the condition holds everywhere. Returns the total number
// of cells split; zero means the forest was already balanced.
func (w *World) Balance() (split int) {
	for {
		marked := make(map[int]bool)
		for i, c := range w.Cells {
			for f := 0; f < w.Conn.NumFaces(); f++ {
				if lvl, ok := w.finestAcrossFace(c, f); ok && lvl > c.Level+1 {
					marked[i] = true
					break
				}
			}
		}
		if len(marked) == 0 {
			return
		}
		split += w.splitCells(marked)
	}
}

// splitCells replaces every marked cell with its children in z-order and
// rebuilds the lookup. The z-order of the global sequence is preserved
// because a parent's slot is exactly its children's z-order run.
func (w *World) splitCells(marked map[int]bool) (split int) {
	if len(marked) == 0 {
		return
	}
	next := make([]Cell, 0, len(w.Cells)+len(marked)*(1<<w.Dim))
	for i, c := range w.Cells {
		if !marked[i] {
			next = append(next, c)
			continue
		}
		half := c.Len() / 2
		for m := 0; m < 1<<w.Dim; m++ {
			next = append(next, Cell{
				Tree:  c.Tree,
				X:     c.X + (m&1)*half,
				Y:     c.Y + (m>>1&1)*half,
				Z:     c.Z + (m>>2&1)*half,
				Level: c.Level + 1,
			})
		}
		split++
	}
	w.Cells = next
	w.rebuildLookup()
	return
}
