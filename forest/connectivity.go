package forest

import "fmt"

/*
Connectivity describes how the trees of a forest attach to each other along
their faces. Faces are numbered by axis and direction: 0 = -x, 1 = +x,
2 = -y, 3 = +y, and in 3D 4 = -z, 5 = +z, so f^1 is always the opposite
face. A face connected back to the same tree on the same face marks a
physical domain boundary. All topologies built here are axis aligned, the
connecting face on the neighbor is the opposite face with identity
orientation.
*/
type Connectivity struct {
	Dim      int
	NumTrees int
	ToTree   [][]int  // [tree][face] neighbor tree id
	ToFace   [][]int  // [tree][face] connecting face on the neighbor
	Origins  [][3]int // tree tile position, used for export and brick wrap
	Name     string
}

func (c *Connectivity) NumFaces() int {
	return 2 * c.Dim
}

// IsBoundary reports whether a tree face sits on the physical domain
// boundary.
func (c *Connectivity) IsBoundary(tree, face int) bool {
	return c.ToTree[tree][face] == tree && c.ToFace[tree][face] == face
}

// FaceAxis returns the axis a face is normal to (0=x, 1=y, 2=z).
func FaceAxis(face int) int {
	return face / 2
}

// FaceSign returns -1 for a negative-direction face, +1 otherwise.
func FaceSign(face int) int {
	if face%2 == 0 {
		return -1
	}
	return 1
}

// NewUnitSquare builds the single-tree 2D topology with wall boundaries on
// all four faces.
func NewUnitSquare() (c *Connectivity) {
	return newSingleTree(2, false, "unitsquare")
}

// NewUnitCube builds the single-tree 3D topology with wall boundaries.
func NewUnitCube() (c *Connectivity) {
	return newSingleTree(3, false, "unitcube")
}

// NewPeriodic builds a single tree whose opposite faces connect to each
// other, so the domain wraps in every direction.
func NewPeriodic(dim int) (c *Connectivity) {
	if dim != 2 && dim != 3 {
		panic(fmt.Errorf("dimension %d not supported", dim))
	}
	return newSingleTree(dim, true, "periodic")
}

func newSingleTree(dim int, periodic bool, name string) (c *Connectivity) {
	nf := 2 * dim
	c = &Connectivity{
		Dim:      dim,
		NumTrees: 1,
		ToTree:   [][]int{make([]int, nf)},
		ToFace:   [][]int{make([]int, nf)},
		Origins:  [][3]int{{0, 0, 0}},
		Name:     name,
	}
	for f := 0; f < nf; f++ {
		if periodic {
			c.ToFace[0][f] = f ^ 1
		} else {
			c.ToFace[0][f] = f
		}
	}
	return
}

// NewBrick builds an nx x ny (x nz) grid of trees, row major with x varying
// fastest, optionally periodic per direction. nz is ignored in 2D.
func NewBrick(dim, nx, ny, nz int, px, py, pz bool) (c *Connectivity) {
	if dim != 2 && dim != 3 {
		panic(fmt.Errorf("dimension %d not supported", dim))
	}
	if dim == 2 {
		nz, pz = 1, false
	}
	if nx < 1 || ny < 1 || nz < 1 {
		panic(fmt.Errorf("brick dimensions must be positive, have %d,%d,%d", nx, ny, nz))
	}
	var (
		nf   = 2 * dim
		nt   = nx * ny * nz
		dims = [3]int{nx, ny, nz}
		per  = [3]bool{px, py, pz}
	)
	c = &Connectivity{
		Dim:      dim,
		NumTrees: nt,
		ToTree:   make([][]int, nt),
		ToFace:   make([][]int, nt),
		Origins:  make([][3]int, nt),
		Name:     "brick",
	}
	treeID := func(i, j, k int) int {
		return i + nx*(j+ny*k)
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				t := treeID(i, j, k)
				c.ToTree[t] = make([]int, nf)
				c.ToFace[t] = make([]int, nf)
				c.Origins[t] = [3]int{i, j, k}
				pos := [3]int{i, j, k}
				for f := 0; f < nf; f++ {
					axis := FaceAxis(f)
					np := pos
					np[axis] += FaceSign(f)
					switch {
					case np[axis] >= 0 && np[axis] < dims[axis]:
						c.ToTree[t][f] = treeID(np[0], np[1], np[2])
						c.ToFace[t][f] = f ^ 1
					case per[axis]:
						np[axis] = (np[axis] + dims[axis]) % dims[axis]
						c.ToTree[t][f] = treeID(np[0], np[1], np[2])
						c.ToFace[t][f] = f ^ 1
					default:
						// wall: self-connection marks the boundary
						c.ToTree[t][f] = t
						c.ToFace[t][f] = f
					}
				}
			}
		}
	}
	return
}
