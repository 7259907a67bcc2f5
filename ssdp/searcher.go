package ssdp

import (
	"context"
	"math/rand"
	"time"

	"github.com/castbridge/upnpgo/internal/log"
)

// SearcherOptions configures a single search pass, multicast or broadcast.
type SearcherOptions struct {
	Target           SearchTarget
	ResponseWaitTime time.Duration // clamped to [MinResponseWait, MaxResponseWait]
	TTL              int
	MSearchCount     int // default DefaultMSearchCount
	Broadcast        bool
}

func (o SearcherOptions) clamp() SearcherOptions {
	if o.ResponseWaitTime < MinResponseWait {
		o.ResponseWaitTime = MinResponseWait
	}
	if o.ResponseWaitTime > MaxResponseWait {
		o.ResponseWaitTime = MaxResponseWait
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.MSearchCount <= 0 {
		o.MSearchCount = DefaultMSearchCount
	}
	return o
}

// Searcher implements both the multicast and broadcast search contract:
// search(target, response_wait_time, ttl, m_search_count) -> sequence of
// DiscoveryRecord, deduplicated by USN within the pass, completing at the
// latest ResponseWaitTime+ε wall clock after Search is called.
type Searcher struct {
	logger log.Logger
}

// NewSearcher creates a Searcher. A single Searcher value may run any
// number of concurrent Search calls; each opens its own ephemeral socket.
func NewSearcher() *Searcher {
	return &Searcher{logger: log.Default()}
}

// Search runs one search pass to completion and returns every distinct
// (by USN) DiscoveryRecord observed. It never blocks past
// opts.ResponseWaitTime plus a small epsilon for socket teardown, and
// returns early if ctx is cancelled.
func (s *Searcher) Search(ctx context.Context, opts SearcherOptions) ([]DiscoveryRecord, error) {
	opts = opts.clamp()

	sock, err := NewEphemeralSocket(opts.Broadcast)
	if err != nil {
		return nil, err
	}
	defer sock.Close()

	dest := MulticastHostPort
	if opts.Broadcast {
		dest = BroadcastHostPort
	}

	deadline := time.Now().Add(opts.ResponseWaitTime)
	sock.SetReadDeadline(deadline)
	datagrams := sock.Datagrams()

	payload := EncodeMSearch(opts.Target, int(opts.ResponseWaitTime.Seconds()))
	go s.sendRepeated(ctx, sock, payload, dest, opts.MSearchCount)

	seen := make(map[string]bool)
	var out []DiscoveryRecord

	timer := time.NewTimer(opts.ResponseWaitTime)
	defer timer.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-timer.C:
			break loop
		case dg, ok := <-datagrams:
			if !ok {
				break loop
			}
			msg, err := Decode(dg.Payload)
			if err != nil {
				s.logger.Debug(ctx, "ssdp: dropped malformed search response", "peer", dg.Peer.String(), "err", err)
				continue
			}
			if msg.Kind != KindSearchResponse {
				continue
			}
			rec := msg.Record
			if seen[rec.USN] {
				continue
			}
			seen[rec.USN] = true
			out = append(out, rec)
		}
	}
	return out, nil
}

// sendRepeated transmits payload to dest count times with a short
// inter-send jitter (50-200ms) to mitigate UDP packet
// loss on the initial M-SEARCH burst.
func (s *Searcher) sendRepeated(ctx context.Context, sock *EphemeralSocket, payload []byte, dest string, count int) {
	for i := 0; i < count; i++ {
		if err := sock.Send(payload, dest); err != nil {
			s.logger.Warn(ctx, "ssdp: failed to send M-SEARCH", "dest", dest, "err", err)
		}
		if i < count-1 {
			jitter := interSendJitterMin + time.Duration(rand.Int63n(int64(interSendJitterMax-interSendJitterMin)))
			select {
			case <-ctx.Done():
				return
			case <-time.After(jitter):
			}
		}
	}
}
