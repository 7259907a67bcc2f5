package description

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddfFixture = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:schemas-upnp-org:device:MediaRenderer:1</deviceType>
    <friendlyName>Test Renderer</friendlyName>
    <manufacturer>Acme</manufacturer>
    <modelName>Renderer 1</modelName>
    <UDN>uuid:test-udn</UDN>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:AVTransport:1</serviceType>
        <serviceId>urn:upnp-org:serviceId:AVTransport</serviceId>
        <SCPDURL>/AVTransport.xml</SCPDURL>
        <controlURL>/AVTransport/Control</controlURL>
        <eventSubURL>/AVTransport/Event</eventSubURL>
      </service>
      <service>
        <serviceType>urn:schemas-upnp-org:service:RenderingControl:1</serviceType>
        <serviceId>urn:upnp-org:serviceId:RenderingControl</serviceId>
        <SCPDURL>/RenderingControl.xml</SCPDURL>
        <controlURL>/RenderingControl/Control</controlURL>
        <eventSubURL>/RenderingControl/Event</eventSubURL>
      </service>
      <service>
        <serviceType>urn:schemas-upnp-org:service:ConnectionManager:1</serviceType>
        <serviceId>urn:upnp-org:serviceId:ConnectionManager</serviceId>
        <SCPDURL>/ConnectionManager.xml</SCPDURL>
        <controlURL>/ConnectionManager/Control</controlURL>
        <eventSubURL>/ConnectionManager/Event</eventSubURL>
      </service>
    </serviceList>
  </device>
</root>`

const renderingControlSCPD = `<?xml version="1.0"?>
<scpd xmlns="urn:schemas-upnp-org:service-1-0">
  <serviceStateTable>
    <stateVariable sendEvents="no">
      <name>Volume</name>
      <dataType>ui2</dataType>
    </stateVariable>
  </serviceStateTable>
  <actionList>
    <action>
      <name>GetVolume</name>
      <argumentList>
        <argument><name>InstanceID</name><direction>in</direction><relatedStateVariable>A_ARG_TYPE_InstanceID</relatedStateVariable></argument>
        <argument><name>CurrentVolume</name><direction>out</direction><relatedStateVariable>Volume</relatedStateVariable></argument>
      </argumentList>
    </action>
  </actionList>
</scpd>`

func TestBuilderAggregatesPerServiceFailureWithoutPoisoningSiblings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/desc.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ddfFixture))
	})
	mux.HandleFunc("/RenderingControl.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(renderingControlSCPD))
	})
	mux.HandleFunc("/AVTransport.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(renderingControlSCPD))
	})
	mux.HandleFunc("/ConnectionManager.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := NewBuilder()
	device, err := b.Build(context.Background(), srv.URL+"/desc.xml")
	require.NotNil(t, device)
	require.Error(t, err) // aggregate multi-error from the one failed service

	assert.Equal(t, "Test Renderer", device.FriendlyName)
	require.Len(t, device.Services, 3)

	ready, failed := 0, 0
	var failedType string
	for _, svc := range device.Services {
		switch svc.Status {
		case ServiceReady:
			ready++
		case ServiceFailed:
			failed++
			failedType = svc.ServiceType
		}
	}
	assert.Equal(t, 2, ready)
	assert.Equal(t, 1, failed)
	assert.Equal(t, "urn:schemas-upnp-org:service:ConnectionManager:1", failedType)
}

func TestBuilderResolvesControlURLsAgainstURLBase(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/desc.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ddfFixture))
	})
	mux.HandleFunc("/AVTransport.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(renderingControlSCPD))
	})
	mux.HandleFunc("/RenderingControl.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(renderingControlSCPD))
	})
	mux.HandleFunc("/ConnectionManager.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(renderingControlSCPD))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := NewBuilder()
	device, err := b.Build(context.Background(), srv.URL+"/desc.xml")
	require.NoError(t, err)
	require.Len(t, device.Services, 3)
	assert.Equal(t, srv.URL+"/AVTransport/Control", device.Services[0].ControlURL)
}
