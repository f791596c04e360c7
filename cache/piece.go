package cache

// piece tracks one torrent piece index: how much of it has been written,
// which buffer slot (if any) holds its bytes, and its completion state.
// Mirrors memory_piece from the original implementation, with slot and
// piece linked purely by integer index (invariant 1 in spec.md §3).
type piece struct {
	index  int
	length int64 // nominal size; last piece may be shorter
	size   int64 // bytes written so far, monotonic until eviction resets it

	slot int // assigned buffer slot index, or unassignedSlot

	completed bool
	read      bool
}

const unassignedSlot = -1

func newPiece(index int, length int64) piece {
	return piece{index: index, length: length, slot: unassignedSlot}
}

func (p *piece) isBuffered() bool {
	return p.slot != unassignedSlot
}

// reset returns the piece to its empty state, invoked on eviction. Matches
// memory_piece::reset in the original implementation.
func (p *piece) reset() {
	p.slot = unassignedSlot
	p.completed = false
	p.read = false
	p.size = 0
}
