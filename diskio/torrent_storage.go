package diskio

import (
	"io"

	"github.com/anacrolix/log"

	"github.com/pablopda/torrent-memcache/cache"
)

// NewTorrentStorage returns a ClientImplCloser that backs every torrent it
// opens with its own in-memory *cache.PieceCache, sized to cfg. Grounded
// on the teacher's storage.NewFile/storage.fileClientImpl shape, with the
// filesystem swapped out for the cache core.
func NewTorrentStorage(cfg cache.Config, opts ...cache.Option) ClientImplCloser {
	return &torrentStorageImpl{cfg: cfg, opts: opts}
}

type torrentStorageImpl struct {
	cfg  cache.Config
	opts []cache.Option
}

func (s *torrentStorageImpl) Close() error { return nil }

func (s *torrentStorageImpl) OpenTorrent(layout cache.FileLayout) (TorrentImpl, error) {
	c := cache.NewPieceCache(layout, s.cfg, s.opts...)
	t := &syncTorrent{cache: c}
	return TorrentImpl{
		Piece: t.Piece,
		Close: t.Close,
	}, nil
}

type syncTorrent struct {
	cache *cache.PieceCache
}

func (t *syncTorrent) Close() error { return nil }

func (t *syncTorrent) Piece(index int, length int64) PieceImpl {
	return &syncPiece{cache: t.cache, index: index, length: length}
}

// syncPiece is a io.ReaderAt/io.WriterAt view of one piece, backed by the
// torrent-wide cache. Grounded on storage/file-piece.go's filePieceImpl,
// which plays the same role for on-disk files.
type syncPiece struct {
	cache  *cache.PieceCache
	index  int
	length int64
}

var _ PieceImpl = (*syncPiece)(nil)

func (p *syncPiece) ReadAt(b []byte, off int64) (int, error) {
	n, err := p.cache.Read(b, p.index, off)
	if err != nil {
		return n, err
	}
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (p *syncPiece) WriteAt(b []byte, off int64) (int, error) {
	n := p.cache.WriteV([][]byte{b}, p.index, off)
	if int(n) < len(b) {
		log.Levelf(log.Debug, "piece cache: short write to piece %d (%d/%d bytes)", p.index, n, len(b))
	}
	return int(n), nil
}

func (p *syncPiece) MarkComplete() error {
	return nil
}

func (p *syncPiece) MarkNotComplete() error {
	return cache.ErrUnsupported
}

func (p *syncPiece) Completion() Completion {
	completed, _ := p.cache.PieceCompletion(p.index)
	return Completion{Ok: true, Complete: completed}
}
