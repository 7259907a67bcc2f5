package description

import "strings"

// BuildDeviceTree implements the device-tree construction: given the parsed DDF tree and
// the DiscoveryRecord's location, compute url_base and walk root/device
// (recursively through deviceList/device) to build the Device tree with
// Service stubs whose control/event/scpd URLs are already resolved against
// url_base. SCPD fetching (step 5) is the caller's job — see Builder.
func BuildDeviceTree(ddf *Node, location string) (*Device, error) {
	declaredBase := ddf.TextOf("URLBase")
	base, err := URLBase(declaredBase, location)
	if err != nil {
		return nil, err
	}
	root := ddf.Child("device")
	if root == nil {
		root = ddf // some DDFs are served without an explicit <root> wrapper
	}
	return buildDevice(root, base)
}

func buildDevice(n *Node, urlBase string) (*Device, error) {
	d := &Device{
		FriendlyName:     strings.TrimSpace(n.TextOf("friendlyName")),
		DeviceType:       strings.TrimSpace(n.TextOf("deviceType")),
		UDN:              strings.TrimSpace(n.TextOf("UDN")),
		Manufacturer:     strings.TrimSpace(n.TextOf("manufacturer")),
		ModelName:        strings.TrimSpace(n.TextOf("modelName")),
		ModelNumber:      strings.TrimSpace(n.TextOf("modelNumber")),
		ModelDescription: strings.TrimSpace(n.TextOf("modelDescription")),
		URLBase:          urlBase,
	}

	if serviceList := n.Child("serviceList"); serviceList != nil {
		for _, svcNode := range serviceList.All("service") {
			svc, err := buildServiceStub(svcNode, urlBase)
			if err != nil {
				return nil, err
			}
			d.Services = append(d.Services, svc)
		}
	}

	if deviceList := n.Child("deviceList"); deviceList != nil {
		for _, childNode := range deviceList.All("device") {
			child, err := buildDevice(childNode, urlBase)
			if err != nil {
				return nil, err
			}
			d.EmbeddedDevices = append(d.EmbeddedDevices, child)
		}
	}

	return d, nil
}

func buildServiceStub(n *Node, urlBase string) (*Service, error) {
	scpdURL, err := ResolveURL(urlBase, strings.TrimSpace(n.TextOf("SCPDURL")))
	if err != nil {
		return nil, err
	}
	controlURL, err := ResolveURL(urlBase, strings.TrimSpace(n.TextOf("controlURL")))
	if err != nil {
		return nil, err
	}
	eventSubURL, err := ResolveURL(urlBase, strings.TrimSpace(n.TextOf("eventSubURL")))
	if err != nil {
		return nil, err
	}
	return &Service{
		ServiceType: strings.TrimSpace(n.TextOf("serviceType")),
		ServiceID:   strings.TrimSpace(n.TextOf("serviceId")),
		SCPDURL:     scpdURL,
		ControlURL:  controlURL,
		EventSubURL: eventSubURL,
		Status:      ServicePending,
	}, nil
}

// AllServices flattens a device tree into a single slice, used by the
// Builder to fan out SCPD fetches across a whole device tree, not just the
// root device's own services.
func AllServices(d *Device) []*Service {
	var out []*Service
	out = append(out, d.Services...)
	for _, child := range d.EmbeddedDevices {
		out = append(out, AllServices(child)...)
	}
	return out
}
