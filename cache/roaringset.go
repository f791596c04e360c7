package cache

import "github.com/RoaringBitmap/roaring"

// pieceSet is a roaring bitmap over piece indices, used for the three
// protection sets (reader window, reserved, lookbehind). Adapted from the
// teacher's generic typed-roaring wrapper, specialized to piece indices
// since nothing else in this package needs the type parameter.
type pieceSet struct {
	roaring.Bitmap
}

func newPieceSet() pieceSet {
	return pieceSet{}
}

func (s *pieceSet) contains(piece int) bool {
	return s.Bitmap.Contains(uint32(piece))
}

func (s *pieceSet) add(piece int) {
	s.Bitmap.Add(uint32(piece))
}

func (s *pieceSet) remove(piece int) {
	s.Bitmap.Remove(uint32(piece))
}

func (s *pieceSet) clear() {
	s.Bitmap.Clear()
}

func (s *pieceSet) count() int {
	return int(s.Bitmap.GetCardinality())
}

func (s *pieceSet) isEmpty() bool {
	return s.Bitmap.IsEmpty()
}

// replace atomically (from the caller's point of view; caller holds
// rangeMu) swaps the set's contents for exactly the valid indices in
// pieces, silently dropping anything outside [0, numPieces).
func (s *pieceSet) replace(pieces []int, numPieces int) {
	s.Bitmap.Clear()
	for _, p := range pieces {
		if p >= 0 && p < numPieces {
			s.Bitmap.Add(uint32(p))
		}
	}
}

func (s *pieceSet) clone() pieceSet {
	return pieceSet{*s.Bitmap.Clone()}
}
