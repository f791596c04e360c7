package cache

import "time"

// FileLayout describes the static shape of the torrent a PieceCache backs:
// how many pieces it has and how large each one is. Implemented by the host
// library; the cache never parses metainfo itself.
type FileLayout interface {
	NumPieces() int
	PieceLength() int64
	// PieceSize returns the number of bytes in piece i, accounting for the
	// last piece being shorter than PieceLength.
	PieceSize(i int) int64
}

// PriorityLevel mirrors the host library's piece-priority scale closely
// enough for the Restorer to drive it. The zero value must mean "don't
// want this piece", matching the host's own "don't download" level.
type PriorityLevel byte

const (
	PriorityDontDownload PriorityLevel = iota
	PriorityNormal
	PriorityHigh
	PriorityReadahead
	PriorityNow
)

// Picker is the external piece picker the Restorer calls back into. A
// PieceCache holds a weak, late-bound reference to one: it does not own the
// picker's lifetime, and is safe to use with no picker bound at all (the
// Restorer becomes a no-op).
type Picker interface {
	ResetDeadline(piece int)
	SetPriority(piece int, level PriorityLevel)
	MarkNotHave(piece int)
	// CurrentPriority reports the priority the picker currently assigns a
	// piece; used to decide whether a piece is inside the reader's demand
	// set (is_readered in the original implementation).
	CurrentPriority(piece int) PriorityLevel
}

// Clock is a monotonic timestamp source, exposed as an interface purely so
// tests can control eviction ordering deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
