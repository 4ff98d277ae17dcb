package forest

import (
	"bufio"
	"fmt"
	"os"

	"github.com/notargets/goforest/types"
)

// WriteVTK dumps the forest geometry as a legacy ASCII VTK unstructured
// grid, one pixel/voxel cell per leaf, with level, tree and owning rank (if
// partitioned) attached as cell data. Trees are tiled by their brick
// origins, each scaled to a unit square/cube.
func (w *World) WriteVTK(filename string) (err error) {
	fh, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("unable to create VTK file: %w", err)
	}
	defer fh.Close()

	var (
		buf      = bufio.NewWriter(fh)
		corners  = 1 << w.Dim
		cellType = 8 // VTK_PIXEL, corner order matches z-order
		scale    = 1.0 / float64(types.RootLen)
	)
	if w.Dim == 3 {
		cellType = 11 // VTK_VOXEL
	}
	fmt.Fprintf(buf, "# vtk DataFile Version 2.0\n")
	fmt.Fprintf(buf, "forest, %d cells\n", len(w.Cells))
	fmt.Fprintf(buf, "ASCII\nDATASET UNSTRUCTURED_GRID\n")

	fmt.Fprintf(buf, "POINTS %d double\n", corners*len(w.Cells))
	for _, c := range w.Cells {
		var (
			org    = w.Conn.Origins[c.Tree]
			length = float64(c.Len()) * scale
			x      = float64(org[0]) + float64(c.X)*scale
			y      = float64(org[1]) + float64(c.Y)*scale
			z      = float64(org[2]) + float64(c.Z)*scale
		)
		for m := 0; m < corners; m++ {
			fmt.Fprintf(buf, "%g %g %g\n",
				x+float64(m&1)*length,
				y+float64(m>>1&1)*length,
				z+float64(m>>2&1)*length)
		}
	}

	fmt.Fprintf(buf, "CELLS %d %d\n", len(w.Cells), (corners+1)*len(w.Cells))
	for i := range w.Cells {
		fmt.Fprintf(buf, "%d", corners)
		for m := 0; m < corners; m++ {
			fmt.Fprintf(buf, " %d", corners*i+m)
		}
		fmt.Fprintf(buf, "\n")
	}
	fmt.Fprintf(buf, "CELL_TYPES %d\n", len(w.Cells))
	for range w.Cells {
		fmt.Fprintf(buf, "%d\n", cellType)
	}

	fmt.Fprintf(buf, "CELL_DATA %d\n", len(w.Cells))
	fmt.Fprintf(buf, "SCALARS level int 1\nLOOKUP_TABLE default\n")
	for _, c := range w.Cells {
		fmt.Fprintf(buf, "%d\n", c.Level)
	}
	fmt.Fprintf(buf, "SCALARS tree int 1\nLOOKUP_TABLE default\n")
	for _, c := range w.Cells {
		fmt.Fprintf(buf, "%d\n", c.Tree)
	}
	if w.Prefix != nil {
		fmt.Fprintf(buf, "SCALARS rank int 1\nLOOKUP_TABLE default\n")
		for g := range w.Cells {
			fmt.Fprintf(buf, "%d\n", w.Owner(g))
		}
	}
	return buf.Flush()
}
