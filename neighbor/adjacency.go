package neighbor

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goforest/mesh"
)

// BuildDualGraph assembles the global cell-adjacency matrix from every
// rank's resolved neighbor table: entry (i,j) is set when cell i names cell
// j across one of its faces. Half-size faces contribute every finer
// neighbor, not just the primary slot, so on a consistent world the graph
// comes out symmetric even across coarse/fine interfaces.
func BuildDualGraph(views []*Resolver) (adj *sparse.DOK, err error) {
	if len(views) == 0 {
		return nil, fmt.Errorf("no rank views")
	}
	total := views[0].TotalCells()
	adj = sparse.NewDOK(total, total)
	for _, rv := range views {
		for c := 0; c < rv.LocalCount; c++ {
			gi := rv.Prefix[rv.Rank] + c
			for f := 0; f < rv.Mesh.NumFaces; f++ {
				var (
					enc   = rv.Mesh.Encoding(c, f)
					slots = []int{rv.Mesh.NeighborSlot(c, f)}
				)
				if enc == mesh.EncNone {
					continue
				}
				if mesh.Classify(enc, rv.Mesh.Dim) == mesh.HalfSize {
					slots = rv.Mesh.HalfNeighborSlots(c, f)
				}
				for _, s := range slots {
					rn, rerr := rv.ResolveSlot(s, enc)
					if rerr != nil {
						return nil, fmt.Errorf("rank %d cell %d face %d: %w",
							rv.Rank, c, f, rerr)
					}
					adj.Set(gi, rv.GlobalOf(rn), 1)
				}
			}
		}
	}
	return
}

// VerifySymmetry checks that the dual graph of the given rank views equals
// its transpose: whenever cell i names cell j across a face, j names i
// back. A one-way edge means the meshes or ghost layers of two ranks
// disagree about an interface.
func VerifySymmetry(views []*Resolver) (err error) {
	adj, err := BuildDualGraph(views)
	if err != nil {
		return
	}
	var bad [][2]int
	adj.DoNonZero(func(i, j int, v float64) {
		if adj.At(j, i) == 0 {
			bad = append(bad, [2]int{i, j})
		}
	})
	if len(bad) > 0 {
		return fmt.Errorf("adjacency is not symmetric: %d one-way edges, first %d -> %d",
			len(bad), bad[0][0], bad[0][1])
	}
	return nil
}

// Degree counts the neighbors cell g names in an adjacency matrix. Works on
// any mat.Matrix, in particular the DOK/CSR forms of the dual graph.
func Degree(adj mat.Matrix, g int) (degree int) {
	_, cols := adj.Dims()
	for j := 0; j < cols; j++ {
		if adj.At(g, j) != 0 {
			degree++
		}
	}
	return
}
