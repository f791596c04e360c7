package cache

import "errors"

// ErrQuotaRefused names the quota-refusal condition. Writes report a
// refusal as zero bytes written (spec.md §7) rather than returning this
// error, and no function in this module returns it.
var ErrQuotaRefused = errors.New("piece cache: buffer quota refused allocation")

// ErrReadMiss indicates the requested piece has no resident buffer.
var ErrReadMiss = errors.New("piece cache: read miss, piece not resident")

// ErrPartialPiece indicates a read was requested for a piece that is
// buffered but not yet fully written.
var ErrPartialPiece = errors.New("piece cache: piece is only partially written")

// ErrUnsupported is returned by operations memory storage does not
// implement, such as move/rename/delete of on-disk files.
var ErrUnsupported = errors.New("piece cache: operation not supported by memory storage")
