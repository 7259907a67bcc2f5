package ssdp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAliveNotify(t *testing.T) {
	raw := "NOTIFY * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"CACHE-CONTROL: max-age=1800\r\n" +
		"LOCATION: http://192.0.2.5:80/desc.xml\r\n" +
		"NT: upnp:rootdevice\r\n" +
		"NTS: ssdp:alive\r\n" +
		"SERVER: OS/1.0 UPnP/1.0 product/1.0\r\n" +
		"USN: uuid:abc::upnp:rootdevice\r\n" +
		"\r\n"

	msg, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, KindNotifyAlive, msg.Kind)
	assert.Equal(t, "http://192.0.2.5:80/desc.xml", msg.Record.Location)
	assert.Equal(t, 1800, msg.Record.MaxAge)
	assert.Equal(t, "uuid:abc::upnp:rootdevice", msg.Record.USN)
	assert.Equal(t, "upnp:rootdevice", msg.Record.NT)
}

func TestDecodeByeByeNotify(t *testing.T) {
	raw := "NOTIFY * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"NT: upnp:rootdevice\r\n" +
		"NTS: ssdp:byebye\r\n" +
		"USN: uuid:abc::upnp:rootdevice\r\n" +
		"\r\n"

	msg, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, KindNotifyByeBye, msg.Kind)
	assert.Equal(t, "uuid:abc::upnp:rootdevice", msg.USN)
}

func TestDecodeSearchResponse(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n" +
		"CACHE-CONTROL: max-age=1800\r\n" +
		"DATE: Thu, 01 Jan 1970 00:00:00 GMT\r\n" +
		"EXT:\r\n" +
		"LOCATION: http://192.0.2.5:80/desc.xml\r\n" +
		"SERVER: OS/1.0 UPnP/1.0 product/1.0\r\n" +
		"ST: upnp:rootdevice\r\n" +
		"USN: uuid:abc::upnp:rootdevice\r\n" +
		"\r\n"

	msg, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, KindSearchResponse, msg.Kind)
	assert.Equal(t, "upnp:rootdevice", msg.Record.ST)
}

func TestDecodeDropsMissingMandatoryHeaders(t *testing.T) {
	raw := "NOTIFY * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"NTS: ssdp:alive\r\n" +
		"\r\n"

	_, err := Decode([]byte(raw))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeUnrecognisedStartLineIsMalformed(t *testing.T) {
	_, err := Decode([]byte("GARBAGE\r\n\r\n"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeDecodeMSearchRoundTrip(t *testing.T) {
	target := ForDeviceType("schemas-upnp-org", "MediaServer", 1)
	payload := EncodeMSearch(target, 3)

	msg, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, KindMSearch, msg.Kind)
	assert.Equal(t, target.String(), msg.Target)
	assert.Equal(t, 3, msg.MX)
	assert.True(t, strings.HasSuffix(string(payload), "\r\n\r\n"))
}

func TestEncodeDecodeNotifyAliveRoundTrip(t *testing.T) {
	rec := DiscoveryRecord{
		NT:       "upnp:rootdevice",
		USN:      "uuid:xyz::upnp:rootdevice",
		Location: "http://10.0.0.1:80/desc.xml",
		MaxAge:   1800,
		Server:   "test/1.0 UPnP/1.0",
	}
	payload := EncodeNotifyAlive(rec)
	msg, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, KindNotifyAlive, msg.Kind)
	assert.Equal(t, rec.NT, msg.Record.NT)
	assert.Equal(t, rec.USN, msg.Record.USN)
	assert.Equal(t, rec.Location, msg.Record.Location)
	assert.Equal(t, rec.MaxAge, msg.Record.MaxAge)
}

func TestSearchTargetRendering(t *testing.T) {
	target := ForDeviceType("schemas-upnp-org", "MediaServer", 1)
	assert.Equal(t, "urn:schemas-upnp-org:device:MediaServer:1", target.String())

	assert.Equal(t, "ssdp:all", All().String())
	assert.Equal(t, "upnp:rootdevice", RootDevice().String())
	assert.Equal(t, "uuid:abc-123", ForUUID("abc-123").String())
}

func TestParseTargetRoundTrip(t *testing.T) {
	for _, s := range []string{
		"ssdp:all",
		"upnp:rootdevice",
		"urn:schemas-upnp-org:device:MediaServer:1",
		"urn:schemas-upnp-org:service:AVTransport:1",
	} {
		got := ParseTarget(s)
		assert.Equal(t, s, got.String())
	}
}
