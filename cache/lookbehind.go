package cache

// SetLookbehindPieces atomically replaces the lookbehind protection set:
// pieces behind the reader's position kept resident for rewind/backtrack.
// Lookbehind and reserved protection are independent sets; isProtected
// checks both, so their union is what's actually non-evictable (spec.md
// §4.7).
func (c *PieceCache) SetLookbehindPieces(pieces []int) {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	c.lookbehindPiece.replace(pieces, c.numPieces)
}

// ClearLookbehind empties the lookbehind protection set. Call when
// stopping playback or switching files.
func (c *PieceCache) ClearLookbehind() {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	c.lookbehindPiece.clear()
}

// IsLookbehindProtected reports whether a piece is in the lookbehind set,
// regardless of residency.
func (c *PieceCache) IsLookbehindProtected(index int) bool {
	return c.isLookbehindProtected(index)
}

// IsLookbehindAvailable reports whether a piece is both in the lookbehind
// set AND currently resident (has a buffer assigned).
func (c *PieceCache) IsLookbehindAvailable(index int) bool {
	if !c.isLookbehindProtected(index) {
		return false
	}
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	if index < 0 || index >= len(c.pieces) {
		return false
	}
	return c.pieces[index].isBuffered()
}

// LookbehindProtectedCount returns the total number of pieces marked for
// lookbehind protection, resident or not.
func (c *PieceCache) LookbehindProtectedCount() int {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	return c.lookbehindPiece.count()
}

// LookbehindAvailableCount returns the number of lookbehind-protected
// pieces that are actually resident in memory.
func (c *PieceCache) LookbehindAvailableCount() int {
	c.rangeMu.Lock()
	lookbehind := c.lookbehindPiece.clone()
	c.rangeMu.Unlock()

	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	count := 0
	lookbehind.Iterate(func(x uint32) bool {
		i := int(x)
		if i >= 0 && i < len(c.pieces) && c.pieces[i].isBuffered() {
			count++
		}
		return true
	})
	return count
}

// LookbehindMemoryUsed returns the bytes of lookbehind data currently
// resident in memory: LookbehindAvailableCount * piece length.
func (c *PieceCache) LookbehindMemoryUsed() int64 {
	return int64(c.LookbehindAvailableCount()) * c.pieceLength
}
