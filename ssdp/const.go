package ssdp

import "time"

// Well-known SSDP network endpoints. Multicast is the standard UPnP address;
// broadcast is a non-standard fallback some consumer devices still rely on.
const (
	MulticastAddr = "239.255.255.250"
	BroadcastAddr = "255.255.255.255"
	Port          = 1900

	MulticastHostPort = "239.255.255.250:1900"
	BroadcastHostPort = "255.255.255.255:1900"
)

// Defaults for the tunables exposed in the external interface.
const (
	DefaultTTL          = 4
	DefaultResponseWait = 5 * time.Second
	DefaultMSearchCount = 2

	MinResponseWait = 1 * time.Second
	MaxResponseWait = 5 * time.Second

	interSendJitterMin = 50 * time.Millisecond
	interSendJitterMax = 200 * time.Millisecond
)

// NTS values carried on the NOTIFY subtype header.
const (
	NTSAlive  = "ssdp:alive"
	NTSByeBye = "ssdp:byebye"
)
