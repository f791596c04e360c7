// Package cache implements the in-memory piece-buffer pool described in
// the project's piece-cache design: a bounded pool of fixed-size buffers
// that substitutes for on-disk piece storage in a peer-to-peer streaming
// engine, together with the reservation layers (reader window, explicit
// reservations, lookbehind) that constrain which pieces may be evicted,
// and the feedback loop that un-downloads pieces the cache refuses to
// keep.
//
// The cache has no knowledge of the peer protocol, piece picker, or
// hashing engine: it depends on those only through the small FileLayout,
// Picker and Clock interfaces in host.go.
package cache

import (
	"sync"
	"time"

	g "github.com/anacrolix/generics"
	"github.com/anacrolix/log"
)

// Config configures a PieceCache at construction. Capacity is explicit
// (spec.md §9's design note: the original's process-wide memory_size
// global is rearchitected as a constructor parameter the daemon threads
// through).
type Config struct {
	// CapacityBytes is the target pool capacity in bytes. Zero or negative
	// means unbounded (buffer_limit == NumPieces).
	CapacityBytes int64
}

// PieceCache is the core piece-buffer pool and eviction policy for a
// single torrent. Safe for concurrent use from many goroutines (the host
// library's disk-worker pool) and from the application threads that
// update reader/reserved/lookbehind sets.
type PieceCache struct {
	layout      FileLayout
	pieceLength int64
	numPieces   int

	logger log.Logger
	clock  Clock

	// poolMu protects bufferUsed, bufferLimit, per-slot fields, per-piece
	// slot/size, and all eviction. Acquired before rangeMu when both are
	// needed (spec.md §5).
	poolMu      sync.Mutex
	pieces      []piece
	buffers     []bufferSlot
	bufferUsed  int
	bufferLimit int
	capacity    int64

	// rangeMu protects the three protection bit-sets and bufferReserved.
	rangeMu         sync.Mutex
	readerPieces    pieceSet
	reservedPieces  pieceSet
	lookbehindPiece pieceSet
	bufferReserved  int
	// isReading tracks whether the cache is currently serving reader
	// traffic at all (spec.md §4.2: "the cache is currently serving
	// reader traffic"), set the first time UpdateReaderPieces is called
	// with a non-empty list.
	isReading bool

	// picker is a weak, late-bound reference; nil until BindPicker is
	// called. The Restorer is a no-op with no picker bound.
	pickerMu sync.RWMutex
	picker   Picker
}

// NewPieceCache constructs a cache for a torrent described by layout, with
// the given capacity and options applied in order.
func NewPieceCache(layout FileLayout, cfg Config, opts ...Option) *PieceCache {
	numPieces := layout.NumPieces()
	pieceLength := layout.PieceLength()

	c := &PieceCache{
		layout:      layout,
		pieceLength: pieceLength,
		numPieces:   numPieces,
		logger:      log.Default.FilterLevel(log.Warning),
		clock:       systemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}

	now := c.clock.Now()

	c.pieces = make([]piece, numPieces)
	for i := 0; i < numPieces; i++ {
		c.pieces[i] = newPiece(i, layout.PieceSize(i))
	}

	c.capacity = cfg.CapacityBytes
	limit := bufferLimit(c.capacity, pieceLength, numPieces)
	c.bufferLimit = limit
	c.buffers = make([]bufferSlot, limit)
	for i := 0; i < limit; i++ {
		c.buffers[i] = newBufferSlot(i, pieceLength, now)
	}

	// Protection sets grow lazily via roaring bitmaps, so no fixed padding
	// is needed the way the original's boost::dynamic_bitset required
	// (piece_count + 10); replace() already clamps to [0, numPieces).
	c.readerPieces = newPieceSet()
	c.reservedPieces = newPieceSet()
	c.lookbehindPiece = newPieceSet()

	c.logger.Levelf(log.Debug, "piece cache: pieces=%d piece_length=%d capacity=%d buffer_limit=%d",
		numPieces, pieceLength, c.capacity, limit)

	return c
}

// BindPicker binds the external piece picker used by the Restorer. The
// cache does not own the picker's lifetime; call with nil to unbind.
func (c *PieceCache) BindPicker(p Picker) {
	c.pickerMu.Lock()
	defer c.pickerMu.Unlock()
	c.picker = p
}

func (c *PieceCache) boundPicker() Picker {
	c.pickerMu.RLock()
	defer c.pickerMu.RUnlock()
	return c.picker
}

// GetMemorySize returns the current capacity in bytes.
func (c *PieceCache) GetMemorySize() int64 {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	return c.capacity
}

// SetMemorySize raises the capacity. Monotonic: a capacity smaller than
// the current one is a no-op, and growth only appends new, unassigned
// slots (spec.md §4.1, §5).
func (c *PieceCache) SetMemorySize(bytes int64) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	if bytes <= c.capacity {
		return
	}

	c.capacity = bytes
	prevLimit := len(c.buffers)
	newLimit := bufferLimit(c.capacity, c.pieceLength, c.numPieces)
	c.bufferLimit = newLimit

	if newLimit <= prevLimit {
		c.logger.Levelf(log.Debug, "piece cache: not increasing buffers, still %d", prevLimit)
		return
	}

	now := c.clock.Now()
	for i := prevLimit; i < newLimit; i++ {
		c.buffers = append(c.buffers, newBufferSlot(i, c.pieceLength, now))
	}
	c.logger.Levelf(log.Debug, "piece cache: increased buffers to %d", newLimit)
}

// BufferInfo is a diagnostic snapshot of one buffer slot's assignment,
// exposed for the telemetry dump spec.md §6 calls for but leaves
// unspecified. Piece follows the host library's own convention for an
// absent value (storage.PieceWithHash's g.Option[[]byte]) rather than a
// sentinel index.
type BufferInfo struct {
	SlotIndex  int
	Piece      g.Option[int]
	InUse      bool
	LastAccess time.Time
}

// BufferInfo returns a snapshot of every buffer slot's current assignment.
func (c *PieceCache) BufferInfo() []BufferInfo {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	out := make([]BufferInfo, len(c.buffers))
	for i, b := range c.buffers {
		info := BufferInfo{SlotIndex: b.slotIndex, InUse: b.inUse, LastAccess: b.lastAccess}
		if b.isAssigned() {
			info.Piece = g.Some(b.piece)
		}
		out[i] = info
	}
	return out
}

// NumPieces returns the number of pieces this cache was constructed for.
func (c *PieceCache) NumPieces() int { return c.numPieces }

// PieceCompletion reports a piece's completed and read flags (spec.md
// §3's Piece lifecycle), for adapters that need to answer a Completion
// query without duplicating the cache's own bookkeeping.
func (c *PieceCache) PieceCompletion(index int) (completed, read bool) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	if index < 0 || index >= len(c.pieces) {
		return false, false
	}
	p := &c.pieces[index]
	return p.completed, p.read
}
