package description

import (
	"net/url"
	"strings"
)

// URLBase computes the effective url_base: the DDF's declared <URLBase>
// element if present, otherwise the DDF location with its path stripped,
// always ending in a trailing slash.
func URLBase(declaredURLBase, location string) (string, error) {
	base := declaredURLBase
	if base == "" {
		u, err := url.Parse(location)
		if err != nil {
			return "", err
		}
		u.Path = ""
		u.RawQuery = ""
		u.Fragment = ""
		base = u.String()
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base, nil
}

// ResolveURL implements the resolution rule for control/event/scpd
// URLs by RFC 3986 resolution against base: a rel starting with "/"
// replaces base's whole path ("http://h/dev/" + "/svc/ctl" gives
// "http://h/svc/ctl"), and any other relative rel is resolved against
// base's directory ("svc/ctl" gives "http://h/dev/svc/ctl"). Uses
// net/url's ResolveReference, which already implements RFC 3986 — no
// third-party URL-resolution library exists in this codebase's dependency
// set, so this one piece stays on the standard library.
func ResolveURL(base, rel string) (string, error) {
	if rel == "" {
		return "", nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	relURL, err := url.Parse(rel)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(relURL).String(), nil
}
