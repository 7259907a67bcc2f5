package soap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castbridge/upnpgo/description"
)

func volumeService(controlURL string) *description.Service {
	return &description.Service{
		ServiceType: "urn:schemas-upnp-org:service:RenderingControl:1",
		ControlURL:  controlURL,
		StateVariables: []*description.StateVariable{
			{Name: "Volume", DataType: "ui2"},
		},
		Actions: []*description.Action{
			{
				Name: "GetVolume",
				Arguments: []description.Argument{
					{Name: "InstanceID", Direction: description.DirectionIn, RelatedStateVariable: "A_ARG_TYPE_InstanceID"},
					{Name: "CurrentVolume", Direction: description.DirectionOut, RelatedStateVariable: "Volume"},
				},
			},
		},
	}
}

func TestDispatcherInvokeCoercesIntegerOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"urn:schemas-upnp-org:service:RenderingControl:1#GetVolume"`, r.Header.Get("SOAPACTION"))
		w.Write([]byte(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <u:GetVolumeResponse xmlns:u="urn:schemas-upnp-org:service:RenderingControl:1">
      <CurrentVolume>42</CurrentVolume>
    </u:GetVolumeResponse>
  </s:Body>
</s:Envelope>`))
	}))
	defer srv.Close()

	svc := volumeService(srv.URL + "/control")
	d := NewDispatcher()
	out, err := d.Invoke(context.Background(), svc, "GetVolume", []string{"0"})
	require.NoError(t, err)
	require.Contains(t, out, "CurrentVolume")
	assert.Equal(t, ClassInteger, out["CurrentVolume"].Class)
	assert.Equal(t, int64(42), out["CurrentVolume"].Int)
}

func TestDispatcherInvokeSurfacesFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault>
      <faultcode>s:Client</faultcode>
      <faultstring>UPnPError</faultstring>
      <detail>
        <UPnPError xmlns="urn:schemas-upnp-org:control-1-0">
          <errorCode>402</errorCode>
          <errorDescription>Invalid Args</errorDescription>
        </UPnPError>
      </detail>
    </s:Fault>
  </s:Body>
</s:Envelope>`))
	}))
	defer srv.Close()

	svc := volumeService(srv.URL + "/control")
	d := NewDispatcher()
	_, err := d.Invoke(context.Background(), svc, "GetVolume", []string{"0"})
	require.Error(t, err)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, ActionFault, actionErr.Kind)
	assert.Equal(t, "402", actionErr.FaultCode)
	assert.Equal(t, "Invalid Args", actionErr.FaultDesc)
}

func TestDispatcherInvokeWrongArgCount(t *testing.T) {
	svc := volumeService("http://example.invalid/control")
	d := NewDispatcher()
	_, err := d.Invoke(context.Background(), svc, "GetVolume", nil)
	assert.Error(t, err)
}
