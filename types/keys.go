package types

import (
	"fmt"
)

// MaxLevel is the deepest refinement level a cell can take. Tree-local
// coordinates are integer multiples of the cell length 1<<(MaxLevel-level),
// measured inside a root domain of side RootLen, so every cell corner across
// all levels lands on the same integer lattice.
const (
	MaxLevel = 16
	RootLen  = 1 << MaxLevel
)

// CellLen returns the side length of a cell at the given level on the
// integer lattice.
func CellLen(level int) int {
	return 1 << (MaxLevel - level)
}

/*
CellKey packs a cell's identity (owning tree, lattice coordinate, level) into
a single uint64 so it can be used as a map key for leaf lookup and ghost
deduplication. Coordinates take 16 bits each, the level 5 bits, the tree id
8 bits.
*/
type CellKey uint64

const (
	coordBits = MaxLevel
	coordMask = RootLen - 1
	levelBits = 5
	treeLimit = 1 << 8
)

func NewCellKey(tree, x, y, z, level int) (packed CellKey) {
	if tree < 0 || tree >= treeLimit {
		panic(fmt.Errorf("tree id %d does not fit in a cell key", tree))
	}
	if level < 0 || level > MaxLevel {
		panic(fmt.Errorf("level %d outside [0,%d]", level, MaxLevel))
	}
	for _, c := range [3]int{x, y, z} {
		if c < 0 || c >= RootLen {
			panic(fmt.Errorf("coordinate %d outside the root domain [0,%d)", c, RootLen))
		}
	}
	packed = CellKey(x) |
		CellKey(y)<<coordBits |
		CellKey(z)<<(2*coordBits) |
		CellKey(level)<<(3*coordBits) |
		CellKey(tree)<<(3*coordBits+levelBits)
	return
}

func (ck CellKey) GetCell() (tree, x, y, z, level int) {
	x = int(ck & coordMask)
	y = int((ck >> coordBits) & coordMask)
	z = int((ck >> (2 * coordBits)) & coordMask)
	level = int((ck >> (3 * coordBits)) & ((1 << levelBits) - 1))
	tree = int(ck >> (3*coordBits + levelBits))
	return
}
