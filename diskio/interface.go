// Package diskio wires a *cache.PieceCache into the two storage-interface
// shapes a host torrent library actually exposes (design note §9 of
// SPEC_FULL.md): a synchronous per-torrent adapter and a session-wide
// async-callback adapter. Both wrap the same cache; neither reimplements
// any eviction or protection logic.
package diskio

import (
	"io"

	"github.com/pablopda/torrent-memcache/cache"
)

// ClientImplCloser is the per-process entry point: it opens storage for a
// torrent and can be closed once no torrent needs it anymore. Adapted from
// the teacher's storage.ClientImplCloser, specialized to a single
// always-in-memory backend.
type ClientImplCloser interface {
	ClientImpl
	Close() error
}

// ClientImpl opens memory-backed storage for a torrent described by
// layout. Unlike the teacher's file-based ClientImpl, there's no path on
// disk to open — OpenTorrent simply constructs a *cache.PieceCache.
type ClientImpl interface {
	OpenTorrent(layout cache.FileLayout) (TorrentImpl, error)
}

// TorrentImpl is data storage bound to one torrent, shaped like the
// teacher's storage.TorrentImpl (a struct of functions rather than a fat
// interface, so callers only need the pieces they use).
type TorrentImpl struct {
	Piece func(index int, length int64) PieceImpl
	Close func() error
}

// PieceImpl interacts with one piece's data. Mirrors the teacher's
// storage.PieceImpl (io.ReaderAt/io.WriterAt plus completion), but every
// method here is just a thin span-of-one wrapper over *cache.PieceCache.
type PieceImpl interface {
	io.ReaderAt
	io.WriterAt
	MarkComplete() error
	MarkNotComplete() error
	Completion() Completion
}

// Completion mirrors the teacher's storage.Completion: whether the state
// is known, and if so, whether the piece is correct.
type Completion struct {
	Err      error
	Ok       bool
	Complete bool
}
