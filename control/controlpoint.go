package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/castbridge/upnpgo/description"
	"github.com/castbridge/upnpgo/internal/log"
	"github.com/castbridge/upnpgo/soap"
	"github.com/castbridge/upnpgo/ssdp"
)

// Options configures a ControlPoint, mirroring the external tunables.
type Options struct {
	TTL               int
	ResponseWaitTime  time.Duration
	MSearchCount      int
	DoBroadcastSearch bool
	RaiseOnRemoteError bool
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = ssdp.DefaultTTL
	}
	if o.ResponseWaitTime <= 0 {
		o.ResponseWaitTime = ssdp.DefaultResponseWait
	}
	if o.MSearchCount <= 0 {
		o.MSearchCount = ssdp.DefaultMSearchCount
	}
	return o
}

// ControlPoint is the facade tying discovery and description together:
// performs searches, builds a Device per
// DiscoveryRecord, and keeps a deduplicated, TTL-backed registry of known
// devices updated by subscribing to the Listener's alive/byebye channels.
type ControlPoint struct {
	opts      Options
	listener  *ssdp.Listener
	searcher  *ssdp.Searcher
	broadcast *ssdp.BroadcastSearcher
	builder   *description.Builder
	dispatcher *soap.Dispatcher
	registry  *Registry
	logger    log.Logger

	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates a ControlPoint. Start must be called before Search results
// will be reflected by the Listener-driven registry (Search itself works
// independently of Start).
func New(opts Options) *ControlPoint {
	opts = opts.withDefaults()
	cp := &ControlPoint{
		opts:       opts,
		listener:   ssdp.NewListener(opts.TTL),
		searcher:   ssdp.NewSearcher(),
		broadcast:  ssdp.NewBroadcastSearcher(),
		builder:    description.NewBuilder(),
		dispatcher: soap.NewDispatcher(),
		logger:     log.Default(),
		stopCh:     make(chan struct{}),
	}
	cp.registry = NewRegistry(cp.onEvict)
	return cp
}

func (cp *ControlPoint) onEvict(udn string, entry RegistryEntry) {
	cp.logger.Debug(context.Background(), "control: registry entry expired without byebye", "udn", udn)
}

// Start runs the Listener and begins applying ssdp:alive/ssdp:byebye
// notifications to the registry for the lifetime of the ControlPoint.
func (cp *ControlPoint) Start(ctx context.Context) error {
	if err := cp.listener.Start(ctx); err != nil {
		return err
	}
	alive := cp.listener.SubscribeAlive()
	byebye := cp.listener.SubscribeByeBye()

	cp.wg.Add(1)
	go func() {
		defer cp.wg.Done()
		for {
			select {
			case <-cp.stopCh:
				return
			case <-ctx.Done():
				return
			case rec, ok := <-alive:
				if !ok {
					return
				}
				cp.handleAlive(ctx, rec)
			case msg, ok := <-byebye:
				if !ok {
					return
				}
				cp.handleByeBye(msg.USN)
			}
		}
	}()
	return nil
}

func (cp *ControlPoint) handleAlive(ctx context.Context, rec ssdp.DiscoveryRecord) {
	udn := udnFromUSN(rec.USN)
	if _, known := cp.registry.Get(udn); known {
		// Refresh TTL without rebuilding the Device tree.
		entry, _ := cp.registry.Get(udn)
		entry.Record = rec
		cp.registry.Set(udn, entry)
		return
	}
	go func() {
		device, err := cp.builder.Build(ctx, rec.Location)
		if err != nil && device == nil {
			cp.logger.Warn(ctx, "control: failed to build device from alive NOTIFY", "location", rec.Location, "err", err)
			return
		}
		cp.registry.Set(udn, RegistryEntry{Device: device, Record: rec})
	}()
}

func (cp *ControlPoint) handleByeBye(usn string) {
	cp.registry.Delete(udnFromUSN(usn))
}

// Search runs one search pass (plus a broadcast fallback pass if
// DoBroadcastSearch is set) and builds a Device for every resulting
// DiscoveryRecord, fanning the builds out concurrently since device-build
// pipelines for distinct records run independently and may complete out of
// order. Built devices are added to the registry and returned.
func (cp *ControlPoint) Search(ctx context.Context, target ssdp.SearchTarget) ([]*description.Device, error) {
	records, err := cp.searcher.Search(ctx, ssdp.SearcherOptions{
		Target:           target,
		ResponseWaitTime: cp.opts.ResponseWaitTime,
		TTL:              cp.opts.TTL,
		MSearchCount:     cp.opts.MSearchCount,
	})
	if err != nil {
		return nil, err
	}

	if cp.opts.DoBroadcastSearch {
		bcast, err := cp.broadcast.Search(ctx, target, cp.opts.ResponseWaitTime, cp.opts.TTL, cp.opts.MSearchCount)
		if err == nil {
			records = mergeByUSN(records, bcast)
		}
	}

	devices := make([]*description.Device, len(records))
	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			device, buildErr := cp.builder.Build(gctx, rec.Location)
			if buildErr != nil {
				cp.logger.Warn(gctx, "control: device build reported errors", "location", rec.Location, "err", buildErr)
				if cp.opts.RaiseOnRemoteError {
					return buildErr
				}
			}
			if device != nil {
				devices[i] = device
				cp.registry.Set(udnFromUSN(rec.USN), RegistryEntry{Device: device, Record: rec})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := devices[:0]
	for _, d := range devices {
		if d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

// Devices returns an immutable snapshot of every currently known device.
func (cp *ControlPoint) Devices() []*description.Device {
	entries := cp.registry.GetAll()
	out := make([]*description.Device, 0, len(entries))
	for _, e := range entries {
		if e.Device != nil {
			out = append(out, e.Device)
		}
	}
	return out
}

// Invoke resolves a Service by type on a known device (by UDN) and
// delegates to the SOAP dispatcher.
func (cp *ControlPoint) Invoke(ctx context.Context, udn, serviceType, actionName string, positionalInputs []string) (map[string]soap.Value, error) {
	entry, ok := cp.registry.Get(udn)
	if !ok {
		return nil, fmt.Errorf("control: unknown device %q", udn)
	}
	svc := findService(entry.Device, serviceType)
	if svc == nil {
		return nil, fmt.Errorf("control: device %q has no service %q", udn, serviceType)
	}
	return cp.dispatcher.Invoke(ctx, svc, actionName, positionalInputs)
}

func findService(d *description.Device, serviceType string) *description.Service {
	if d == nil {
		return nil
	}
	for _, svc := range d.Services {
		if svc.ServiceType == serviceType {
			return svc
		}
	}
	for _, child := range d.EmbeddedDevices {
		if svc := findService(child, serviceType); svc != nil {
			return svc
		}
	}
	return nil
}

// Stop tears down the Listener and the registry's background sweep.
func (cp *ControlPoint) Stop() {
	close(cp.stopCh)
	cp.listener.Stop()
	cp.wg.Wait()
	cp.registry.Stop()
}

func udnFromUSN(usn string) string {
	// USN is "uuid:<udn>" or "uuid:<udn>::urn:...". The UDN is always the
	// first "::"-delimited segment's uuid: value.
	for i := 0; i+1 < len(usn); i++ {
		if usn[i] == ':' && usn[i+1] == ':' {
			return usn[:i]
		}
	}
	return usn
}

func mergeByUSN(a, b []ssdp.DiscoveryRecord) []ssdp.DiscoveryRecord {
	seen := make(map[string]bool, len(a))
	out := make([]ssdp.DiscoveryRecord, 0, len(a)+len(b))
	for _, r := range a {
		if !seen[r.USN] {
			seen[r.USN] = true
			out = append(out, r)
		}
	}
	for _, r := range b {
		if !seen[r.USN] {
			seen[r.USN] = true
			out = append(out, r)
		}
	}
	return out
}
