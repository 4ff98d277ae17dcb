package neighbor

import (
	"fmt"
	"io"
)

// Record is one line of the consistency report: the resolved identity of
// one (cell, face) pair along with the raw encoding for debugging.
type Record struct {
	Rank       int
	CellGlobal int
	Face       int
	Encoding   int
	Neighbor   ResolvedNeighbor
	// NeighborGlobal is the neighbor's global index, -1 at a boundary
	NeighborGlobal int
}

// Checker drives a resolver over every local (cell, face) pair in
// increasing cell order, faces in canonical 0..F-1 order, and collects one
// record per pair. The pass is read-only and deterministic for a given
// forest state; any resolution error is a fatal contract violation of the
// mesh or ghost layer and aborts the pass.
type Checker struct {
	Resolver *Resolver
}

func NewChecker(rv *Resolver) *Checker {
	return &Checker{Resolver: rv}
}

func (ck *Checker) Check() (records []Record, err error) {
	var (
		rv    = ck.Resolver
		first = rv.Prefix[rv.Rank]
	)
	records = make([]Record, 0, rv.LocalCount*rv.Mesh.NumFaces)
	for c := 0; c < rv.LocalCount; c++ {
		for f := 0; f < rv.Mesh.NumFaces; f++ {
			rn, rerr := rv.Resolve(c, f)
			if rerr != nil {
				return nil, fmt.Errorf("rank %d cell %d face %d: %w",
					rv.Rank, c, f, rerr)
			}
			records = append(records, Record{
				Rank:           rv.Rank,
				CellGlobal:     first + c,
				Face:           f,
				Encoding:       rv.Mesh.Encoding(c, f),
				Neighbor:       rn,
				NeighborGlobal: rv.GlobalOf(rn),
			})
		}
	}
	return
}

// Write prints records one line per (cell, face) in the layout of the
// original diagnostic: rank, global cell index, face, neighbor index,
// encoding, with a (g) marker on remote neighbors. Each line carries its
// rank tag so interleaved multi-rank output stays attributable.
func Write(w io.Writer, records []Record) {
	lastCell := -1
	for _, r := range records {
		if r.CellGlobal != lastCell {
			fmt.Fprintf(w, "[goforest %d] Cell %d\n", r.Rank, r.CellGlobal)
			lastCell = r.CellGlobal
		}
		switch r.Neighbor.Kind {
		case Boundary:
			fmt.Fprintf(w, "[goforest %d] Face neighbor %d: boundary\n",
				r.Rank, r.Face)
		case Local:
			fmt.Fprintf(w, "[goforest %d] Face neighbor %d: index %d, encoding %d\n",
				r.Rank, r.Face, r.NeighborGlobal, r.Encoding)
		case Remote:
			fmt.Fprintf(w, "[goforest %d] Face neighbor %d: index %d, encoding %d (g)\n",
				r.Rank, r.Face, r.NeighborGlobal, r.Encoding)
		}
	}
}
