package cache

// WriteV implements spec.md §4.3: copies bytes contiguously from spans
// into the piece's buffer starting at offset, clamped to the piece's
// length. Returns the number of bytes actually copied; a return of zero
// is a quota refusal, not an error — the caller (engine) is expected to
// retry once the piece is re-requested.
func (c *PieceCache) WriteV(spans [][]byte, index int, offset int64) int64 {
	if !c.getBuffer(index, true) {
		return 0
	}

	p := &c.pieces[index]
	slot := &c.buffers[p.slot]

	fileOffset := offset
	var n int64
	for _, span := range spans {
		remaining := p.length - fileOffset
		if remaining <= 0 {
			break
		}
		toCopy := int64(len(span))
		if toCopy > remaining {
			toCopy = remaining
		}
		copy(slot.bytes[fileOffset:fileOffset+toCopy], span[:toCopy])
		fileOffset += toCopy
		n += toCopy
	}

	p.size += n
	if p.size >= p.length {
		p.size = p.length
		p.completed = true
	}
	slot.lastAccess = c.clock.Now()

	c.poolMu.Lock()
	overQuota := c.capacity > 0 && c.bufferUsed >= c.bufferLimit
	c.poolMu.Unlock()
	if overQuota {
		c.trim(index)
	}

	return n
}

// ReadV implements spec.md §4.4's span-based read path: requires a read
// (non-allocating) buffer acquisition, copies up to the piece's current
// size into dest, and marks the piece read if a completed piece's last
// byte was reached. Unlike Read, ReadV does not restore a partial piece —
// the asymmetry the spec leaves as an open question (§4.4, §9) is
// preserved deliberately; see SPEC_FULL.md.
func (c *PieceCache) ReadV(dest [][]byte, index int, offset int64) int64 {
	if !c.getBuffer(index, false) {
		return 0
	}

	p := &c.pieces[index]
	slot := &c.buffers[p.slot]

	fileOffset := offset
	var n int64
	for _, span := range dest {
		remaining := p.size - fileOffset
		if remaining <= 0 {
			break
		}
		toCopy := int64(len(span))
		if toCopy > remaining {
			toCopy = remaining
		}
		copy(span[:toCopy], slot.bytes[fileOffset:fileOffset+toCopy])
		fileOffset += toCopy
		n += toCopy
	}

	if p.completed && offset+n >= p.size {
		p.read = true
	}
	slot.lastAccess = c.clock.Now()

	return n
}

// Read is the simplified single-destination read used by the streaming
// reader (spec.md §4.4's "Additional policy"). Unlike ReadV, it restores
// and refuses a piece that is buffered but not yet fully written, so the
// engine re-prioritizes and re-downloads pieces that only arrived
// partially.
func (c *PieceCache) Read(dest []byte, index int, offset int64) (int, error) {
	if !c.getBuffer(index, false) {
		c.restorePiece(index)
		return 0, ErrReadMiss
	}

	p := &c.pieces[index]

	if p.size < p.length {
		c.restorePiece(index)
		return 0, ErrPartialPiece
	}

	slot := &c.buffers[p.slot]
	available := p.length - offset
	if available <= 0 {
		return 0, nil
	}
	if available > int64(len(dest)) {
		available = int64(len(dest))
	}

	copy(dest[:available], slot.bytes[offset:offset+available])

	if p.completed && offset+available >= p.size {
		p.read = true
	}
	slot.lastAccess = c.clock.Now()

	return int(available), nil
}
