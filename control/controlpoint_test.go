package control

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/castbridge/upnpgo/description"
	"github.com/castbridge/upnpgo/ssdp"
)

func TestUDNFromUSN(t *testing.T) {
	assert.Equal(t, "uuid:abc", udnFromUSN("uuid:abc"))
	assert.Equal(t, "uuid:abc", udnFromUSN("uuid:abc::urn:schemas-upnp-org:device:MediaRenderer:1"))
	assert.Equal(t, "uuid:abc", udnFromUSN("uuid:abc::upnp:rootdevice"))
}

func TestMergeByUSNDedupes(t *testing.T) {
	a := []ssdp.DiscoveryRecord{{USN: "uuid:1"}, {USN: "uuid:2"}}
	b := []ssdp.DiscoveryRecord{{USN: "uuid:2"}, {USN: "uuid:3"}}

	merged := mergeByUSN(a, b)
	assert.Len(t, merged, 3)
}

func TestFindServiceSearchesEmbeddedDevices(t *testing.T) {
	target := &description.Service{ServiceType: "urn:schemas-upnp-org:service:RenderingControl:1"}
	device := &description.Device{
		UDN: "uuid:root",
		EmbeddedDevices: []*description.Device{
			{
				UDN:      "uuid:child",
				Services: []*description.Service{target},
			},
		},
	}

	found := findService(device, "urn:schemas-upnp-org:service:RenderingControl:1")
	assert.Same(t, target, found)
}

func TestFindServiceReturnsNilWhenAbsent(t *testing.T) {
	device := &description.Device{UDN: "uuid:root"}
	assert.Nil(t, findService(device, "urn:schemas-upnp-org:service:RenderingControl:1"))
}
