package ssdp

import (
	"context"
	"time"
)

// BroadcastSearcher runs the non-standard fallback search over
// 255.255.255.255:1900. It shares the Searcher's exact protocol — the only
// difference is the destination address and SO_BROADCAST on the send
// socket — so it's implemented as a thin wrapper that forces
// SearcherOptions.Broadcast rather than duplicating the send/collect loop.
type BroadcastSearcher struct {
	searcher *Searcher
}

// NewBroadcastSearcher creates a BroadcastSearcher.
func NewBroadcastSearcher() *BroadcastSearcher {
	return &BroadcastSearcher{searcher: NewSearcher()}
}

// Search runs one broadcast search pass with the same timing/dedup/TTL
// contract as Searcher.Search.
func (b *BroadcastSearcher) Search(ctx context.Context, target SearchTarget, responseWaitTime time.Duration, ttl, mSearchCount int) ([]DiscoveryRecord, error) {
	return b.searcher.Search(ctx, SearcherOptions{
		Target:           target,
		ResponseWaitTime: responseWaitTime,
		TTL:              ttl,
		MSearchCount:     mSearchCount,
		Broadcast:        true,
	})
}
