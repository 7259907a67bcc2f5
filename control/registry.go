// Package control implements the ControlPoint facade: ties the SSDP
// Listener and Searcher together, builds a Device per discovered record,
// and maintains a deduplicated, TTL-aware registry of known devices keyed
// by UDN.
package control

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/castbridge/upnpgo/description"
	"github.com/castbridge/upnpgo/ssdp"
)

// RegistryEntry pairs a built Device with the DiscoveryRecord that produced
// it.
type RegistryEntry struct {
	Device *description.Device
	Record ssdp.DiscoveryRecord
}

// Registry is the device registry cache: a TTL-expiring UDN -> Device
// store backing the ControlPoint facade, built on ttlcache rather than a
// hand-rolled map+mutex+ticker.
type Registry struct {
	cache *ttlcache.Cache[string, RegistryEntry]
}

// NewRegistry creates a Registry. onEvict, if non-nil, is invoked when an
// entry's TTL lapses without a refreshing alive/response — the implicit
// byebye case for devices that vanish without announcing it.
func NewRegistry(onEvict func(udn string, entry RegistryEntry)) *Registry {
	cache := ttlcache.New[string, RegistryEntry](
		ttlcache.WithDisableTouchOnHit[string, RegistryEntry](),
	)
	if onEvict != nil {
		cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, RegistryEntry]) {
			if reason == ttlcache.EvictionReasonExpired {
				onEvict(item.Key(), item.Value())
			}
		})
	}
	go cache.Start()
	return &Registry{cache: cache}
}

// Set inserts or refreshes udn's entry with a TTL derived from the
// DiscoveryRecord's CACHE-CONTROL max-age.
func (r *Registry) Set(udn string, entry RegistryEntry) {
	ttl := time.Duration(entry.Record.MaxAge) * time.Second
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	r.cache.Set(udn, entry, ttl)
}

// Get returns the entry for udn, if present and unexpired.
func (r *Registry) Get(udn string) (RegistryEntry, bool) {
	item := r.cache.Get(udn)
	if item == nil {
		return RegistryEntry{}, false
	}
	return item.Value(), true
}

// GetAll returns an immutable snapshot of every known entry, safe for
// concurrent readers.
func (r *Registry) GetAll() []RegistryEntry {
	items := r.cache.Items()
	out := make([]RegistryEntry, 0, len(items))
	for _, item := range items {
		out = append(out, item.Value())
	}
	return out
}

// Delete removes udn immediately, used on ssdp:byebye.
func (r *Registry) Delete(udn string) {
	r.cache.Delete(udn)
}

// Stop halts the background TTL sweep goroutine.
func (r *Registry) Stop() {
	r.cache.Stop()
}
