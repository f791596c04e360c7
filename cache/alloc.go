package cache

import "github.com/anacrolix/log"

// getBuffer implements spec.md §4.2 ("Allocation"). write distinguishes a
// write acquisition (may allocate a fresh slot) from a read acquisition
// (never allocates). Returns whether the piece is now buffered. A write
// refused because the piece is outside the reader window has already had
// the Restorer invoked on index; a write refused because no slot is free
// returns false without restoring.
func (c *PieceCache) getBuffer(index int, write bool) bool {
	// Fast path: if the piece already has a slot, succeed without taking
	// poolMu at all. This mirrors the original implementation's
	// unsynchronized is_buffered() check — a transient stale read here can
	// only make this goroutine fall through to the locked path below and
	// double-check, never corrupt state.
	if c.pieces[index].isBuffered() {
		return true
	}

	if !write {
		// Reads never allocate; re-check under the lock as the original
		// does ("make sure we are not affected by write/read at the same
		// time") and report a miss either way.
		c.poolMu.Lock()
		defer c.poolMu.Unlock()
		return c.pieces[index].isBuffered()
	}

	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	// Double-checked: another writer may have raced us to allocation.
	if c.pieces[index].isBuffered() {
		return true
	}

	if c.servingReaderTraffic() && !c.inReaderWindow(index) {
		c.restorePiece(index)
		return false
	}

	for i := range c.buffers {
		if c.buffers[i].inUse {
			continue
		}

		now := c.clock.Now()
		c.buffers[i].inUse = true
		c.buffers[i].piece = index
		c.buffers[i].lastAccess = now
		c.pieces[index].slot = c.buffers[i].slotIndex

		c.logger.Levelf(log.Debug, "piece cache: assigned buffer %d to piece %d", i, index)

		if c.isProtected(index) {
			// Permanently burdened by protection: doesn't count toward
			// the eviction quota, but still occupies a slot, so the
			// quota itself shrinks (invariant 3 in spec.md §3).
			c.bufferLimit--
		} else {
			c.bufferUsed++
		}
		break
	}

	return c.pieces[index].isBuffered()
}
