package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castbridge/upnpgo/description"
	"github.com/castbridge/upnpgo/ssdp"
)

func TestRegistrySetAndGet(t *testing.T) {
	r := NewRegistry(nil)
	defer r.Stop()

	device := &description.Device{UDN: "uuid:abc", FriendlyName: "Living Room Speaker"}
	r.Set("uuid:abc", RegistryEntry{Device: device, Record: ssdp.DiscoveryRecord{MaxAge: 1800}})

	entry, ok := r.Get("uuid:abc")
	require.True(t, ok)
	assert.Equal(t, "Living Room Speaker", entry.Device.FriendlyName)
}

func TestRegistryDeleteRemovesEntryImmediately(t *testing.T) {
	r := NewRegistry(nil)
	defer r.Stop()

	r.Set("uuid:abc", RegistryEntry{Device: &description.Device{UDN: "uuid:abc"}, Record: ssdp.DiscoveryRecord{MaxAge: 1800}})
	r.Delete("uuid:abc")

	_, ok := r.Get("uuid:abc")
	assert.False(t, ok)
}

func TestRegistryGetAllSnapshot(t *testing.T) {
	r := NewRegistry(nil)
	defer r.Stop()

	r.Set("uuid:a", RegistryEntry{Device: &description.Device{UDN: "uuid:a"}, Record: ssdp.DiscoveryRecord{MaxAge: 1800}})
	r.Set("uuid:b", RegistryEntry{Device: &description.Device{UDN: "uuid:b"}, Record: ssdp.DiscoveryRecord{MaxAge: 1800}})

	all := r.GetAll()
	assert.Len(t, all, 2)
}

func TestRegistryEvictsAfterMaxAgeExpires(t *testing.T) {
	evicted := make(chan string, 1)
	r := NewRegistry(func(udn string, entry RegistryEntry) {
		evicted <- udn
	})
	defer r.Stop()

	r.Set("uuid:abc", RegistryEntry{Device: &description.Device{UDN: "uuid:abc"}, Record: ssdp.DiscoveryRecord{MaxAge: 0}})
	// MaxAge<=0 means no TTL, so uuid:abc never expires; uuid:def has a 1s
	// max-age and must be the entry the eviction callback reports.
	r.Set("uuid:def", RegistryEntry{Device: &description.Device{UDN: "uuid:def"}, Record: ssdp.DiscoveryRecord{MaxAge: 1}})

	select {
	case udn := <-evicted:
		assert.Equal(t, "uuid:def", udn)
	case <-time.After(3 * time.Second):
		t.Fatal("expected eviction callback within 3s of a 1s max-age entry")
	}
}
