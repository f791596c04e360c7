package cache

import "github.com/anacrolix/log"

// restorePiece implements the Restorer (spec.md §4.6): tells the external
// picker to un-account a piece the cache could not or would not keep, so
// the engine may re-request it once priority is raised again. A no-op if
// no picker has been bound yet.
func (c *PieceCache) restorePiece(index int) {
	picker := c.boundPicker()
	if picker == nil {
		return
	}

	c.logger.Levelf(log.Debug, "piece cache: restoring piece %d", index)

	picker.ResetDeadline(index)
	picker.SetPriority(index, PriorityDontDownload)
	picker.MarkNotHave(index)
}
