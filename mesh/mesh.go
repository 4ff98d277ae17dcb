// Package mesh builds the per-rank face-adjacency table: for every (local
// cell, face) pair, an encoding describing the neighbor relationship and a
// neighbor slot that is either a local cell index or, past the local cell
// count, an index into the rank's ghost layer.
package mesh

import (
	"fmt"

	"github.com/notargets/goforest/forest"
	"github.com/notargets/goforest/ghost"
)

/*
Mesh is the face-adjacency table for one rank. Slots and Encodings are flat
arrays of length LocalCount*NumFaces indexed cell*NumFaces+face. The slot
invariant: slot < LocalCount means a local cell index, otherwise
slot-LocalCount indexes the ghost layer. At a physical boundary the slot
self-references the cell and the encoding is EncNone.

For a half-size face (finer neighbors) the slot holds the first finer
neighbor in z-order; Halves lists all of them.

A Mesh is built from one (forest, ghost layer) snapshot and never mutated;
rebuilding the forest invalidates it.
*/
type Mesh struct {
	Dim        int
	NumFaces   int
	LocalCount int
	Slots      []int
	Encodings  []int
	Halves     map[int][]int
}

func (m *Mesh) NeighborSlot(cell, face int) int {
	return m.Slots[cell*m.NumFaces+face]
}

func (m *Mesh) Encoding(cell, face int) int {
	return m.Encodings[cell*m.NumFaces+face]
}

// HalfNeighborSlots returns every finer neighbor slot across a half-size
// face, nil for other face kinds.
func (m *Mesh) HalfNeighborSlots(cell, face int) []int {
	return m.Halves[cell*m.NumFaces+face]
}

// Build computes the face-adjacency table for rank from a partitioned,
// balanced world and the rank's ghost layer.
func Build(w *forest.World, rank int, gl *ghost.Layer) (m *Mesh, err error) {
	if w.Prefix == nil {
		return nil, fmt.Errorf("world is not partitioned")
	}
	var (
		nf    = w.Conn.NumFaces()
		local = w.LocalCount(rank)
	)
	m = &Mesh{
		Dim:        w.Dim,
		NumFaces:   nf,
		LocalCount: local,
		Slots:      make([]int, local*nf),
		Encodings:  make([]int, local*nf),
		Halves:     make(map[int][]int),
	}
	toSlot := func(n int) (slot int, err error) {
		owner := w.Owner(n)
		if owner == rank {
			return n - w.Prefix[rank], nil
		}
		gslot, ok := gl.SlotOf(n)
		if !ok {
			return 0, fmt.Errorf("cell %d owned by rank %d missing from rank %d's ghost layer",
				n, owner, rank)
		}
		return local + gslot, nil
	}
	for c := 0; c < local; c++ {
		cell := w.Cells[w.Prefix[rank]+c]
		for f := 0; f < nf; f++ {
			var (
				idx = c*nf + f
				rel forest.Relation
				nbr []int
			)
			if rel, nbr, err = w.FaceNeighbors(cell, f); err != nil {
				return nil, fmt.Errorf("mesh build for rank %d: %w", rank, err)
			}
			switch rel {
			case forest.NoNeighbor:
				m.Slots[idx] = c
				m.Encodings[idx] = EncNone
			case forest.SameSize:
				if m.Slots[idx], err = toSlot(nbr[0]); err != nil {
					return nil, err
				}
				m.Encodings[idx] = EncodeSame(w.Dim, f^1, 0)
			case forest.Coarser:
				if m.Slots[idx], err = toSlot(nbr[0]); err != nil {
					return nil, err
				}
				m.Encodings[idx] = EncodeDouble(w.Dim, f^1, 0, faceHalf(cell, f, w.Dim))
			case forest.Finer:
				slots := make([]int, len(nbr))
				for i, n := range nbr {
					if slots[i], err = toSlot(n); err != nil {
						return nil, err
					}
				}
				m.Slots[idx] = slots[0]
				m.Encodings[idx] = EncodeHalf(w.Dim, f^1, 0)
				m.Halves[idx] = slots
			}
		}
	}
	return
}

// faceHalf computes which half (2D) or quarter (3D) of the coarser
// neighbor's face the cell occupies: one bit per tangential axis, taken
// from the cell's position within the coarse cell's doubled span.
func faceHalf(c forest.Cell, face, dim int) (h int) {
	var (
		axis   = forest.FaceAxis(face)
		length = c.Len()
		pos    = [3]int{c.X, c.Y, c.Z}
		bit    = 0
	)
	for t := 0; t < dim; t++ {
		if t == axis {
			continue
		}
		h |= (pos[t] / length & 1) << bit
		bit++
	}
	return
}
