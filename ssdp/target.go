package ssdp

import "fmt"

// TargetKind discriminates the variants of SearchTarget.
type TargetKind int

const (
	TargetAll TargetKind = iota
	TargetRootDevice
	TargetUUID
	TargetDeviceType
	TargetServiceType
)

// SearchTarget renders to the canonical UPnP ST/NT token: either a bare
// keyword (ssdp:all, upnp:rootdevice, uuid:...) or a urn:domain:class:name:version
// string for device and service types.
type SearchTarget struct {
	Kind    TargetKind
	UUID    string
	Domain  string
	Name    string
	Version int
}

// All matches every advertisement on the network.
func All() SearchTarget { return SearchTarget{Kind: TargetAll} }

// RootDevice matches only root devices (upnp:rootdevice).
func RootDevice() SearchTarget { return SearchTarget{Kind: TargetRootDevice} }

// ForUUID matches a single device by its UDN.
func ForUUID(uuid string) SearchTarget { return SearchTarget{Kind: TargetUUID, UUID: uuid} }

// ForDeviceType matches the urn:domain:device:name:version device class.
func ForDeviceType(domain, name string, version int) SearchTarget {
	return SearchTarget{Kind: TargetDeviceType, Domain: domain, Name: name, Version: version}
}

// ForServiceType matches the urn:domain:service:name:version service class.
func ForServiceType(domain, name string, version int) SearchTarget {
	return SearchTarget{Kind: TargetServiceType, Domain: domain, Name: name, Version: version}
}

// String renders the target to its wire form, used as both ST (in M-SEARCH)
// and matched against NT (in NOTIFY).
func (t SearchTarget) String() string {
	switch t.Kind {
	case TargetAll:
		return "ssdp:all"
	case TargetRootDevice:
		return "upnp:rootdevice"
	case TargetUUID:
		return "uuid:" + t.UUID
	case TargetDeviceType:
		return fmt.Sprintf("urn:%s:device:%s:%d", t.Domain, t.Name, t.Version)
	case TargetServiceType:
		return fmt.Sprintf("urn:%s:service:%s:%d", t.Domain, t.Name, t.Version)
	default:
		return ""
	}
}

// ParseTarget recovers a SearchTarget from a wire-form ST/NT string. Tokens
// that don't match a known shape are not rejected: they become a TargetUUID
// whose UUID is the whole token, so String() renders them as "uuid:"
// followed by the original token.
func ParseTarget(s string) SearchTarget {
	switch {
	case s == "ssdp:all":
		return All()
	case s == "upnp:rootdevice":
		return RootDevice()
	default:
	}
	var domain, class, name string
	var version int
	parts := splitURN(s)
	if len(parts) == 5 && parts[0] == "urn" {
		domain, class, name = parts[1], parts[2], parts[3]
		fmt.Sscanf(parts[4], "%d", &version)
		switch class {
		case "device":
			return ForDeviceType(domain, name, version)
		case "service":
			return ForServiceType(domain, name, version)
		}
	}
	if len(s) > len("uuid:") && s[:5] == "uuid:" {
		return ForUUID(s[5:])
	}
	return SearchTarget{Kind: TargetUUID, UUID: s}
}

func splitURN(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
