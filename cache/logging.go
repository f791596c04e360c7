package cache

import "github.com/anacrolix/log"

// Option configures a PieceCache at construction time.
type Option func(*PieceCache)

// WithLogger replaces the cache's logger. The default is log.Default with
// its level filtered up to Warning, so eviction/refusal chatter (logged at
// log.Debug, matching the original implementation's is_logging branches)
// is silent unless the caller opts in with a more permissive logger.
func WithLogger(logger log.Logger) Option {
	return func(c *PieceCache) {
		c.logger = logger
	}
}

// WithClock overrides the monotonic clock used for last-access timestamps.
// Exposed for deterministic eviction-order tests.
func WithClock(clock Clock) Option {
	return func(c *PieceCache) {
		c.clock = clock
	}
}
