package diskio

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablopda/torrent-memcache/cache"
)

func TestAsyncDiskWriteThenReadRoundTrip(t *testing.T) {
	d := NewAsyncDisk(cache.Config{CapacityBytes: 0}, 1<<20)
	layout := fakeLayout{numPieces: 2, pieceLen: 8}
	d.OpenTorrent(1, layout)

	ctx := context.Background()

	var wg sync.WaitGroup
	var written int64
	wg.Add(1)
	err := d.WriteV(ctx, 1, [][]byte{[]byte("torrent!")}, 0, 0, func(n int64) {
		written = n
		wg.Done()
	})
	require.NoError(t, err)
	wg.Wait()
	assert.EqualValues(t, 8, written)

	require.NoError(t, d.Flush())

	wg.Add(1)
	dest := make([]byte, 8)
	var readN int64
	err = d.ReadV(ctx, 1, [][]byte{dest}, 0, 0, func(n int64) {
		readN = n
		wg.Done()
	})
	require.NoError(t, err)
	wg.Wait()
	assert.EqualValues(t, 8, readN)
	assert.Equal(t, "torrent!", string(dest))
}

func TestAsyncDiskUnopenedTorrentErrors(t *testing.T) {
	d := NewAsyncDisk(cache.Config{CapacityBytes: 0}, 1<<20)
	err := d.WriteV(context.Background(), 99, [][]byte{{1}}, 0, 0, nil)
	assert.Error(t, err)
}

func TestAsyncDiskCloseTorrentThenReopen(t *testing.T) {
	d := NewAsyncDisk(cache.Config{CapacityBytes: 0}, 1<<20)
	layout := fakeLayout{numPieces: 1, pieceLen: 4}
	c1 := d.OpenTorrent(2, layout)
	d.CloseTorrent(2)
	c2 := d.OpenTorrent(2, layout)
	assert.NotSame(t, c1, c2, "reopening after close must construct a fresh cache")
}

func TestAsyncDiskFlushWaitsForConcurrentOps(t *testing.T) {
	d := NewAsyncDisk(cache.Config{CapacityBytes: 0}, 1<<20)
	layout := fakeLayout{numPieces: 16, pieceLen: 4}
	d.OpenTorrent(3, layout)

	ctx := context.Background()
	for i := 0; i < 16; i++ {
		err := d.WriteV(ctx, 3, [][]byte{piece4('a')}, i, 0, nil)
		require.NoError(t, err)
	}
	require.NoError(t, d.Flush())

	c, err := d.cacheFor(3)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		completed, _ := c.PieceCompletion(i)
		assert.True(t, completed, "piece %d should be complete after flush", i)
	}
}

func piece4(b byte) []byte { return []byte{b, b, b, b} }
