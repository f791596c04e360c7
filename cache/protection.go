package cache

// UpdateReaderPieces atomically replaces the reader window: the set of
// pieces the reader is about to consume. Once called with a non-empty
// list, the cache starts refusing writes for pieces outside the window
// (spec.md §4.2).
func (c *PieceCache) UpdateReaderPieces(pieces []int) {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	c.readerPieces.replace(pieces, c.numPieces)
	if !c.readerPieces.isEmpty() {
		c.isReading = true
	}
}

// UpdateReservedPieces atomically replaces the reserved set (e.g. torrent
// metadata pieces) and updates the reserved-buffer bookkeeping count.
// Reserved pieces are not automatically resident: they are only shielded
// from eviction once buffered.
func (c *PieceCache) UpdateReservedPieces(pieces []int) {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	c.reservedPieces.replace(pieces, c.numPieces)
	c.bufferReserved = c.reservedPieces.count()
}

// BufferReserved returns the bookkeeping count maintained by
// UpdateReservedPieces.
func (c *PieceCache) BufferReserved() int {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	return c.bufferReserved
}

func (c *PieceCache) isReserved(index int) bool {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	return c.reservedPieces.contains(index)
}

func (c *PieceCache) isLookbehindProtected(index int) bool {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	return c.lookbehindPiece.contains(index)
}

// isProtected reports whether a piece is in reserved ∪ lookbehind, the
// non-evictable set (spec.md §4.7). Takes rangeMu; callers that already
// hold poolMu (getBuffer, findVictimLocked) call it directly, following the
// poolMu-before-rangeMu order.
func (c *PieceCache) isProtected(index int) bool {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	return c.reservedPieces.contains(index) || c.lookbehindPiece.contains(index)
}

// isReadered reports whether the external picker currently wants a piece,
// i.e. whether it's inside the reader's demand set. If no picker is bound
// yet, the original implementation's is_readered falls back to true (treat
// every piece as wanted) so a cache constructed before BindPicker never
// spuriously refuses writes — preserved here deliberately
// (SPEC_FULL.md supplement 5).
func (c *PieceCache) isReadered(index int) bool {
	picker := c.boundPicker()
	if picker == nil {
		return true
	}
	return picker.CurrentPriority(index) != PriorityDontDownload
}

func (c *PieceCache) inReaderWindow(index int) bool {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	return c.readerPieces.contains(index)
}

func (c *PieceCache) readerPiecesNonEmpty() bool {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	return !c.readerPieces.isEmpty()
}

func (c *PieceCache) servingReaderTraffic() bool {
	c.rangeMu.Lock()
	defer c.rangeMu.Unlock()
	return c.isReading
}
