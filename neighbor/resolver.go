// Package neighbor resolves the opaque neighbor slots of a rank's
// face-adjacency table into globally meaningful identities, and drives that
// resolution over every (cell, face) pair as an executable consistency
// check of the mesh and ghost layer.
package neighbor

import (
	"errors"
	"fmt"

	"github.com/notargets/goforest/forest"
	"github.com/notargets/goforest/ghost"
	"github.com/notargets/goforest/mesh"
)

// ErrContractViolation marks a fatal upstream fault: an out-of-range query
// or a mesh/ghost entry that cannot map to a valid global cell. These are
// broken invariants of the mesh or ghost builder, never recoverable
// conditions, so they surface immediately and abort the check pass.
var ErrContractViolation = errors.New("contract violation")

// Kind tags a resolved neighbor identity.
type Kind uint8

const (
	Boundary Kind = iota
	Local
	Remote
)

func (k Kind) String() string {
	switch k {
	case Boundary:
		return "Boundary"
	case Local:
		return "Local"
	case Remote:
		return "Remote"
	}
	return "Invalid"
}

// ResolvedNeighbor is the resolver's answer for one (cell, face): the cell
// across the face is a local cell, a remote cell on another rank at a
// definite global index, or the physical domain boundary.
type ResolvedNeighbor struct {
	Kind   Kind
	Local  int // local cell index, Local only
	Rank   int // owning rank, Remote only
	Global int // global cell index, Remote only
}

/*
Resolver turns (cell, face) queries against one rank's mesh into resolved
neighbor identities. It is an immutable context value: rank identity, the
shared global prefix array and per-rank tree offsets are plain data passed
in at construction, so a resolver over fabricated multi-rank metadata works
exactly like one taken from a partitioned world. Resolution is O(1) array
lookups and never synchronizes with other ranks; everything a remote
identity needs was captured in the ghost layer when it was built.
*/
type Resolver struct {
	Rank        int
	LocalCount  int
	Prefix      []int   // cumulative cell counts; length = rank count + 1
	TreeOffsets [][]int // [rank][tree] cells preceding tree in rank's run
	Mesh        *mesh.Mesh
	Ghost       *ghost.Layer
}

// NewResolver builds a resolver for rank over a partitioned world's
// metadata with the rank's mesh and ghost layer.
func NewResolver(w *forest.World, rank int, m *mesh.Mesh, gl *ghost.Layer) *Resolver {
	return &Resolver{
		Rank:        rank,
		LocalCount:  m.LocalCount,
		Prefix:      w.Prefix,
		TreeOffsets: w.TreeOffsets,
		Mesh:        m,
		Ghost:       gl,
	}
}

// TotalCells returns the global cell count described by the prefix array.
func (rv *Resolver) TotalCells() int {
	return rv.Prefix[len(rv.Prefix)-1]
}

// Resolve identifies the neighbor of a local cell across one face.
func (rv *Resolver) Resolve(cell, face int) (rn ResolvedNeighbor, err error) {
	if cell < 0 || cell >= rv.LocalCount {
		return rn, fmt.Errorf("cell index %d outside [0,%d): %w",
			cell, rv.LocalCount, ErrContractViolation)
	}
	if face < 0 || face >= rv.Mesh.NumFaces {
		return rn, fmt.Errorf("face %d outside [0,%d): %w",
			face, rv.Mesh.NumFaces, ErrContractViolation)
	}
	return rv.ResolveSlot(rv.Mesh.NeighborSlot(cell, face), rv.Mesh.Encoding(cell, face))
}

// ResolveSlot converts a raw (slot, encoding) pair. The slot comparison
// against the local cell count lives here and nowhere else; on an empty
// partition every slot is a ghost slot.
func (rv *Resolver) ResolveSlot(slot, enc int) (rn ResolvedNeighbor, err error) {
	if enc == mesh.EncNone {
		return ResolvedNeighbor{Kind: Boundary}, nil
	}
	if slot < 0 {
		return rn, fmt.Errorf("negative neighbor slot %d: %w",
			slot, ErrContractViolation)
	}
	if slot < rv.LocalCount {
		return ResolvedNeighbor{Kind: Local, Local: slot}, nil
	}
	gslot := slot - rv.LocalCount
	if gslot >= rv.Ghost.NumGhosts() {
		return rn, fmt.Errorf("ghost slot %d outside layer of %d records: %w",
			gslot, rv.Ghost.NumGhosts(), ErrContractViolation)
	}
	g := rv.Ghost.Records[gslot]
	if g.Rank < 0 || g.Rank >= len(rv.Prefix)-1 {
		return rn, fmt.Errorf("ghost record owner rank %d outside %d ranks: %w",
			g.Rank, len(rv.Prefix)-1, ErrContractViolation)
	}
	global := rv.TreeOffsets[g.Rank][g.Tree] + g.LocalIndex + rv.Prefix[g.Rank]
	if global < rv.Prefix[g.Rank] || global >= rv.Prefix[g.Rank+1] {
		return rn, fmt.Errorf("resolved global %d outside rank %d's range [%d,%d): %w",
			global, g.Rank, rv.Prefix[g.Rank], rv.Prefix[g.Rank+1], ErrContractViolation)
	}
	return ResolvedNeighbor{Kind: Remote, Rank: g.Rank, Global: global}, nil
}

// GlobalOf converts a resolved neighbor to a global cell index, -1 for a
// boundary.
func (rv *Resolver) GlobalOf(rn ResolvedNeighbor) int {
	switch rn.Kind {
	case Local:
		return rv.Prefix[rv.Rank] + rn.Local
	case Remote:
		return rn.Global
	}
	return -1
}
