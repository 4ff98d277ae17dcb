package mesh

import (
	"fmt"
	"math"
)

/*
Face encodings compress the size and orientation relationship between a cell
and its neighbor across one face into a single int. With F = 2*Dim faces and
H = 1<<(Dim-1) orientations per face the ranges are, for base = H*F (8 in
2D, 24 in 3D):

	same-size    [0, base)            r*F + nf
	double-size  [base, base*(1+H))   base*(1+h) + r*F + nf
	half-size    [-base, 0)           -base + r*F + nf
	boundary     EncNone

nf is the neighbor's connecting face, r the rotation of the neighbor's face
against ours (always 0 for the axis aligned topologies built here), and h
which half (2D) or quarter (3D) of the coarser neighbor's face the cell
touches.
*/
const EncNone = math.MinInt32

// SizeClass is the refinement-size relationship an encoding describes.
type SizeClass int

const (
	None SizeClass = iota
	SameSize
	HalfSize   // the neighbor is finer
	DoubleSize // the neighbor is coarser
)

func (s SizeClass) String() string {
	switch s {
	case None:
		return "None"
	case SameSize:
		return "SameSize"
	case HalfSize:
		return "HalfSize"
	case DoubleSize:
		return "DoubleSize"
	}
	return "Invalid"
}

func encBase(dim int) int {
	return (1 << (dim - 1)) * 2 * dim
}

func EncodeSame(dim, nf, r int) int {
	return r*2*dim + nf
}

func EncodeDouble(dim, nf, r, h int) int {
	return encBase(dim)*(1+h) + r*2*dim + nf
}

func EncodeHalf(dim, nf, r int) int {
	return -encBase(dim) + r*2*dim + nf
}

// Classify maps an encoding to its size class.
func Classify(enc, dim int) SizeClass {
	base := encBase(dim)
	switch {
	case enc == EncNone:
		return None
	case enc >= 0 && enc < base:
		return SameSize
	case enc >= base && enc < base*(1+(1<<(dim-1))):
		return DoubleSize
	case enc >= -base && enc < 0:
		return HalfSize
	}
	panic(fmt.Errorf("encoding %d invalid in %dD", enc, dim))
}

// Decode splits an encoding into the neighbor's face, the rotation, and for
// double-size the face half/quarter index (h is -1 otherwise).
func Decode(enc, dim int) (nf, r, h int) {
	var (
		base = encBase(dim)
		f    = 2 * dim
	)
	h = -1
	switch Classify(enc, dim) {
	case None:
		return -1, -1, -1
	case HalfSize:
		enc += base
	case DoubleSize:
		h = enc/base - 1
		enc %= base
	}
	nf, r = enc%f, enc/f
	return
}
