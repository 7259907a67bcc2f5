package ssdp

import (
	"context"
	"sync"
	"time"

	"github.com/castbridge/upnpgo/internal/log"
)

// Notifier is the presence announcer. It emits NOTIFY ssdp:alive on
// Start and then at a fixed period <= MaxAge/2 — the UPnP-recommended
// half-period rule, not the full max-age period some implementations use.
// On Stop it emits exactly one NOTIFY
// ssdp:byebye with the same USN/NT.
type Notifier struct {
	NT      string
	USN     string
	Location string
	MaxAge  int // seconds; advertised CACHE-CONTROL max-age

	logger log.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewNotifier creates a Notifier for one device/service advertisement.
func NewNotifier(nt, usn, location string, maxAge int) *Notifier {
	return &Notifier{
		NT:       nt,
		USN:      usn,
		Location: location,
		MaxAge:   maxAge,
		logger:   log.Default(),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// period returns the re-announce interval: MaxAge/2, floored at 1 second so
// a misconfigured MaxAge never produces a busy loop.
func (n *Notifier) period() time.Duration {
	p := time.Duration(n.MaxAge/2) * time.Second
	if p < time.Second {
		p = time.Second
	}
	return p
}

// Start opens a send socket, emits the initial NOTIFY ssdp:alive, and then
// re-announces on the half-max-age period until Stop is called. Send
// failures are logged but never interrupt the schedule.
func (n *Notifier) Start(ctx context.Context) error {
	sock, err := NewEphemeralSocket(false)
	if err != nil {
		return err
	}
	n.announce(ctx, sock)

	go func() {
		defer close(n.done)
		defer sock.Close()
		ticker := time.NewTicker(n.period())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				n.byebye(sock)
				return
			case <-n.stopCh:
				n.byebye(sock)
				return
			case <-ticker.C:
				n.announce(ctx, sock)
			}
		}
	}()
	return nil
}

func (n *Notifier) announce(ctx context.Context, sock *EphemeralSocket) {
	rec := DiscoveryRecord{NT: n.NT, USN: n.USN, Location: n.Location, MaxAge: n.MaxAge}
	payload := EncodeNotifyAlive(rec)
	if err := sock.Send(payload, MulticastHostPort); err != nil {
		n.logger.Warn(ctx, "ssdp: failed to send NOTIFY ssdp:alive", "usn", n.USN, "err", err)
	}
}

func (n *Notifier) byebye(sock *EphemeralSocket) {
	payload := EncodeNotifyByeBye(n.USN, n.NT)
	// Best-effort: teardown shouldn't block on network errors.
	_ = sock.Send(payload, MulticastHostPort)
}

// Stop emits ssdp:byebye and halts the periodic re-announce. It blocks
// until the background goroutine has finished sending byebye.
func (n *Notifier) Stop() {
	n.stopOnce.Do(func() {
		close(n.stopCh)
	})
	<-n.done
}
