package description

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/castbridge/upnpgo/internal/log"
)

// Builder is the Device/Service builder plus its concurrent fetch
// orchestration: it fetches a device's DDF, builds the Device tree, and
// fans the per-service SCPD fetches out concurrently, joining them into a
// single non-fatal multi-error rather than failing the whole build when one
// service's SCPD is unreachable.
type Builder struct {
	fetcher *Fetcher
	logger  log.Logger
}

// NewBuilder creates a Builder backed by a fresh Fetcher.
func NewBuilder() *Builder {
	return &Builder{fetcher: NewFetcher(), logger: log.Default()}
}

// Build fetches and parses a device's full description tree end to end for
// one DiscoveryRecord's location. The returned Device is always non-nil
// when err is nil; per-service SCPD
// failures are recorded on each Service (Status=ServiceFailed, FetchErr set)
// and aggregated into the returned multi-error, which the caller may choose
// to ignore (the default, raise_on_remote_error=false) or propagate.
func (b *Builder) Build(ctx context.Context, location string) (*Device, error) {
	ddfNode, err := b.fetcher.Get(ctx, location)
	if err != nil {
		return nil, err
	}
	device, err := BuildDeviceTree(ddfNode, location)
	if err != nil {
		return nil, err
	}

	services := AllServices(device)
	if len(services) == 0 {
		return device, nil
	}

	var mu sync.Mutex
	var merr *multierror.Error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(services))
	for _, svc := range services {
		svc := svc
		if svc.SCPDURL == "" {
			continue
		}
		g.Go(func() error {
			err := b.fetchSCPD(gctx, svc)
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
			}
			return nil // never abort sibling fetches on one failure
		})
	}
	_ = g.Wait()

	if merr != nil {
		return device, merr.ErrorOrNil()
	}
	return device, nil
}

func (b *Builder) fetchSCPD(ctx context.Context, svc *Service) error {
	node, err := b.fetcher.Get(ctx, svc.SCPDURL)
	if err != nil {
		svc.Status = ServiceFailed
		svc.FetchErr = err
		b.logger.Warn(ctx, "description: SCPD fetch failed", "url", svc.SCPDURL, "serviceType", svc.ServiceType, "err", err)
		return err
	}
	vars, actions, err := ParseSCPD(node)
	if err != nil {
		svc.Status = ServiceFailed
		svc.FetchErr = err
		return err
	}
	svc.StateVariables = vars
	svc.Actions = actions
	svc.Status = ServiceReady
	return nil
}
