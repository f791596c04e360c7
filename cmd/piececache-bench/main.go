// Command piececache-bench drives a PieceCache with synthetic reader and
// writer traffic and reports buffer occupancy, useful for sanity-checking
// capacity and eviction behavior without a real torrent session.
package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"

	"github.com/pablopda/torrent-memcache/cache"
)

type args struct {
	NumPieces   int    `arg:"--pieces" default:"200" help:"total pieces in the simulated torrent"`
	PieceLength int64  `arg:"--piece-length" default:"262144" help:"bytes per piece"`
	Capacity    string `arg:"--capacity" default:"16MiB" help:"pool capacity, e.g. 16MiB; 0 means unbounded"`
	Steps       int    `arg:"--steps" default:"5000" help:"number of simulated write/read steps"`
	WindowSize  int    `arg:"--window" default:"8" help:"reader window width in pieces"`
}

type layout struct {
	numPieces int
	length    int64
}

func (l layout) NumPieces() int        { return l.numPieces }
func (l layout) PieceLength() int64    { return l.length }
func (l layout) PieceSize(i int) int64 { return l.length }

type logPicker struct {
	restored int
}

func (p *logPicker) ResetDeadline(int)                    {}
func (p *logPicker) SetPriority(int, cache.PriorityLevel) { p.restored++ }
func (p *logPicker) MarkNotHave(int)                      {}
func (p *logPicker) CurrentPriority(int) cache.PriorityLevel {
	return cache.PriorityNormal
}

func main() {
	var a args
	arg.MustParse(&a)

	capacityBytes, err := humanize.ParseBytes(a.Capacity)
	if err != nil {
		log.Fatalf("parsing capacity: %v", err)
	}

	lay := layout{numPieces: a.NumPieces, length: a.PieceLength}
	c := cache.NewPieceCache(lay, cache.Config{CapacityBytes: int64(capacityBytes)})
	picker := &logPicker{}
	c.BindPicker(picker)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	readerStart := 0

	for step := 0; step < a.Steps; step++ {
		readerStart = (readerStart + rng.Intn(3)) % a.NumPieces
		window := make([]int, 0, a.WindowSize)
		for i := 0; i < a.WindowSize; i++ {
			window = append(window, (readerStart+i)%a.NumPieces)
		}
		c.UpdateReaderPieces(window)

		piece := window[rng.Intn(len(window))]
		data := make([]byte, a.PieceLength)
		rng.Read(data)
		c.WriteV([][]byte{data}, piece, 0)

		if step%500 == 0 {
			report(c, step, picker)
		}
	}

	report(c, a.Steps, picker)
}

func report(c *cache.PieceCache, step int, picker *logPicker) {
	info := c.BufferInfo()
	inUse := 0
	for _, b := range info {
		if b.InUse {
			inUse++
		}
	}
	log.Printf("step=%d buffers_in_use=%d/%d capacity=%s restored=%d",
		step, inUse, len(info), humanize.Bytes(uint64(c.GetMemorySize())), picker.restored)
}
