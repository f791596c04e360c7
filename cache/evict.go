package cache

import "github.com/anacrolix/log"

// trim implements spec.md §4.5: restores buffer_used ≤ buffer_limit under
// a two-tier eviction preference, never touching protectedCaller (the
// piece whose write just triggered this call). Runs until the quota is
// restored or no candidate exists — the cache may stay over-quota if
// every resident piece is protected, by design (spec.md §4.5, §9).
func (c *PieceCache) trim(protectedCaller int) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	for c.bufferUsed >= c.bufferLimit {
		c.logger.Levelf(log.Debug, "piece cache: trimming %d to %d", c.bufferUsed, c.bufferLimit)

		if c.readerPiecesNonEmpty() {
			if slot, ok := c.findVictimLocked(protectedCaller, true); ok {
				c.logger.Levelf(log.Debug, "piece cache: evicting non-read piece %d (buffer %d)", c.buffers[slot].piece, slot)
				c.removePieceLocked(slot)
				continue
			}
		}

		if slot, ok := c.findVictimLocked(protectedCaller, false); ok {
			c.logger.Levelf(log.Debug, "piece cache: evicting LRU piece %d (buffer %d)", c.buffers[slot].piece, slot)
			c.removePieceLocked(slot)
			continue
		}

		// No eligible victim: every resident piece is protected. Break to
		// avoid looping forever (spec.md §9's termination open question —
		// removePieceLocked always strictly decreases bufferUsed, so this
		// is the only path that can fail to make progress).
		break
	}
}

// findVictimLocked searches for an eviction victim. checkReader selects
// Tier 1 (reader-window aware, spec.md §4.5); false selects Tier 2 (plain
// LRU, ignoring reader demand). Caller must hold poolMu.
//
// A candidate only qualifies if its last access is strictly before the
// moment trim started (bestAccess, seeded from the clock once): ties at
// the current tick never qualify, same as the original's accessed <
// minTime. Pieces written in the same instant a quota-triggering write
// just landed are left alone rather than immediately re-evicted.
func (c *PieceCache) findVictimLocked(protectedCaller int, checkReader bool) (int, bool) {
	best := -1
	bestAccess := c.clock.Now()

	for i := range c.buffers {
		b := &c.buffers[i]
		if !b.inUse || !b.isAssigned() {
			continue
		}
		if b.piece == protectedCaller {
			continue
		}
		if c.isProtected(b.piece) {
			continue
		}
		if checkReader && c.isReadered(b.piece) {
			continue
		}
		if b.lastAccess.Before(bestAccess) {
			best = i
			bestAccess = b.lastAccess
		}
	}

	if best == -1 {
		return 0, false
	}
	return best, true
}

// removePieceLocked evicts whatever piece buffer bi holds: resets the
// slot, resets the piece's counters, decrements bufferUsed, and invokes
// the Restorer. Caller must hold poolMu. Strictly decreases bufferUsed,
// which is what guarantees trim's loop terminates.
func (c *PieceCache) removePieceLocked(bi int) {
	pieceIndex := c.buffers[bi].piece

	c.buffers[bi].reset(c.clock.Now())
	c.bufferUsed--

	if pieceIndex != unassignedPiece && pieceIndex < len(c.pieces) {
		c.pieces[pieceIndex].reset()
		c.restorePiece(pieceIndex)
	}
}
