package ssdp

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/castbridge/upnpgo/internal/log"
)

// Listener is the passive NOTIFY observer. It owns the multicast
// listen socket exclusively and fans out
// every decoded NOTIFY to any number of subscribers via independent
// channels, each buffered to 32 messages. A notification that arrives while
// a subscriber's buffer is full is not delivered to that subscriber. It
// performs no deduplication — that's the ControlPoint facade's job.
type Listener struct {
	transport *Transport
	logger    log.Logger

	mu       sync.Mutex
	alive    []chan DiscoveryRecord
	byebye   []chan Message
	errCh    chan error
	dropped  atomic.Uint64
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewListener creates a Listener over a fresh Transport with the given
// multicast TTL (only relevant if this Listener is later reused to send,
// which it is not — TTL is accepted for symmetry with Searcher/Notifier
// construction and forwarded to the underlying Transport).
func NewListener(ttl int) *Listener {
	return &Listener{
		transport: NewTransport(ttl),
		logger:    log.Default(),
		errCh:     make(chan error, 1),
		stopCh:    make(chan struct{}),
	}
}

// SubscribeAlive registers a new subscriber for ssdp:alive notifications.
// The returned channel receives every alive NOTIFY decoded after this call.
func (l *Listener) SubscribeAlive() <-chan DiscoveryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan DiscoveryRecord, 32)
	l.alive = append(l.alive, ch)
	return ch
}

// SubscribeByeBye registers a new subscriber for ssdp:byebye notifications.
func (l *Listener) SubscribeByeBye() <-chan Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan Message, 32)
	l.byebye = append(l.byebye, ch)
	return ch
}

// Errors returns the terminal error channel; at most one error is ever
// delivered, when the listen socket fails for a reason other than a
// transient interrupt.
func (l *Listener) Errors() <-chan error { return l.errCh }

// Dropped returns the count of malformed datagrams discarded so far.
func (l *Listener) Dropped() uint64 { return l.dropped.Load() }

// Start joins the multicast group and begins processing datagrams in a
// background goroutine. It returns once the socket is bound; processing
// continues until Stop is called or the socket errors.
func (l *Listener) Start(ctx context.Context) error {
	if err := l.transport.ListenMulticast(); err != nil {
		return err
	}
	go l.run(ctx)
	return nil
}

func (l *Listener) run(ctx context.Context) {
	datagrams := l.transport.Datagrams()
	for {
		select {
		case <-l.stopCh:
			return
		case <-ctx.Done():
			return
		case dg, ok := <-datagrams:
			if !ok {
				select {
				case l.errCh <- context.Canceled:
				default:
				}
				return
			}
			l.handle(ctx, dg)
		}
	}
}

func (l *Listener) handle(ctx context.Context, dg Datagram) {
	msg, err := Decode(dg.Payload)
	if err != nil {
		l.dropped.Add(1)
		l.logger.Debug(ctx, "ssdp: dropped malformed datagram", "peer", dg.Peer.String(), "err", err)
		return
	}
	switch msg.Kind {
	case KindNotifyAlive:
		l.mu.Lock()
		subs := append([]chan DiscoveryRecord(nil), l.alive...)
		l.mu.Unlock()
		for _, ch := range subs {
			select {
			case ch <- msg.Record:
			default:
			}
		}
	case KindNotifyByeBye:
		l.mu.Lock()
		subs := append([]chan Message(nil), l.byebye...)
		l.mu.Unlock()
		for _, ch := range subs {
			select {
			case ch <- *msg:
			default:
			}
		}
	default:
		// M-SEARCH and search responses are not this component's concern.
	}
}

// Stop tears down the listen socket and closes all subscriber channels.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.transport.Close()
		l.mu.Lock()
		defer l.mu.Unlock()
		for _, ch := range l.alive {
			close(ch)
		}
		for _, ch := range l.byebye {
			close(ch)
		}
	})
}
