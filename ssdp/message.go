package ssdp

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MessageKind discriminates the three SSDP start-lines this codec recognises.
type MessageKind int

const (
	KindMSearch MessageKind = iota
	KindNotifyAlive
	KindNotifyByeBye
	KindSearchResponse
)

// Message is a decoded SSDP datagram. Only the fields relevant to Kind are
// populated; the others are zero.
type Message struct {
	Kind MessageKind

	// M-SEARCH fields.
	Target string
	MX     int

	// NotifyAlive / SearchResponse carry a full DiscoveryRecord.
	Record DiscoveryRecord

	// NotifyByeBye fields (USN/NT also mirrored into Record for convenience).
	USN string
	NT  string
}

// ErrMalformed is returned by Decode for any datagram that isn't a
// recognised SSDP start-line or is missing mandatory headers for its kind.
// Per the error handling design, callers must log and drop on this error,
// never surface it further.
var ErrMalformed = errors.New("ssdp: malformed datagram")

const crlf = "\r\n"

// EncodeMSearch renders an M-SEARCH request for the given target. mx is
// clamped to the 1..5 range mandated for ResponseWaitTime.
func EncodeMSearch(target SearchTarget, mx int) []byte {
	if mx < 1 {
		mx = 1
	}
	if mx > 5 {
		mx = 5
	}
	var b strings.Builder
	b.WriteString("M-SEARCH * HTTP/1.1" + crlf)
	b.WriteString("HOST: " + MulticastHostPort + crlf)
	b.WriteString(`MAN: "ssdp:discover"` + crlf)
	b.WriteString("MX: " + strconv.Itoa(mx) + crlf)
	b.WriteString("ST: " + target.String() + crlf)
	b.WriteString("USER-AGENT: upnpgo/1.0 UPnP/1.0" + crlf)
	b.WriteString(crlf)
	return []byte(b.String())
}

// EncodeNotifyAlive renders a NOTIFY ssdp:alive for rec. rec.NT, rec.USN,
// rec.Location and rec.MaxAge must be set.
func EncodeNotifyAlive(rec DiscoveryRecord) []byte {
	var b strings.Builder
	b.WriteString("NOTIFY * HTTP/1.1" + crlf)
	b.WriteString("HOST: " + MulticastHostPort + crlf)
	b.WriteString("CACHE-CONTROL: max-age=" + strconv.Itoa(rec.MaxAge) + crlf)
	b.WriteString("LOCATION: " + rec.Location + crlf)
	b.WriteString("NT: " + rec.NT + crlf)
	b.WriteString("NTS: " + NTSAlive + crlf)
	server := rec.Server
	if server == "" {
		server = "upnpgo/1.0 UPnP/1.0"
	}
	b.WriteString("SERVER: " + server + crlf)
	b.WriteString("USN: " + rec.USN + crlf)
	b.WriteString(crlf)
	return []byte(b.String())
}

// EncodeNotifyByeBye renders a NOTIFY ssdp:byebye for the given USN/NT.
func EncodeNotifyByeBye(usn, nt string) []byte {
	var b strings.Builder
	b.WriteString("NOTIFY * HTTP/1.1" + crlf)
	b.WriteString("HOST: " + MulticastHostPort + crlf)
	b.WriteString("NT: " + nt + crlf)
	b.WriteString("NTS: " + NTSByeBye + crlf)
	b.WriteString("USN: " + usn + crlf)
	b.WriteString(crlf)
	return []byte(b.String())
}

// EncodeSearchResponse renders the unicast HTTP/1.1 200 OK reply to an
// M-SEARCH.
func EncodeSearchResponse(rec DiscoveryRecord) []byte {
	var b strings.Builder
	b.WriteString("HTTP/1.1 200 OK" + crlf)
	b.WriteString("CACHE-CONTROL: max-age=" + strconv.Itoa(rec.MaxAge) + crlf)
	b.WriteString("DATE: " + rec.Date + crlf)
	b.WriteString("EXT: " + crlf)
	b.WriteString("LOCATION: " + rec.Location + crlf)
	server := rec.Server
	if server == "" {
		server = "upnpgo/1.0 UPnP/1.0"
	}
	b.WriteString("SERVER: " + server + crlf)
	b.WriteString("ST: " + rec.ST + crlf)
	b.WriteString("USN: " + rec.USN + crlf)
	b.WriteString(crlf)
	return []byte(b.String())
}

// Decode parses a raw SSDP datagram into a Message. It returns ErrMalformed
// for anything that isn't one of the three recognised start-lines, or that
// is missing a mandatory header for its kind — both cases the caller must
// treat as "count and discard", never as a propagated error.
func Decode(raw []byte) (*Message, error) {
	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	if !scanner.Scan() {
		return nil, ErrMalformed
	}
	startLine := strings.TrimSpace(scanner.Text())

	headers := make(map[string]string)
	for scanner.Scan() {
		line := scanner.Text()
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		val := strings.TrimSpace(line[idx+1:])
		headers[key] = val
	}

	switch {
	case strings.HasPrefix(startLine, "M-SEARCH"):
		return decodeMSearch(headers)
	case strings.HasPrefix(startLine, "NOTIFY"):
		return decodeNotify(headers)
	case strings.HasPrefix(startLine, "HTTP/1.1 200"):
		return decodeSearchResponse(headers)
	default:
		return nil, ErrMalformed
	}
}

func requireHeaders(h map[string]string, names ...string) error {
	for _, n := range names {
		if _, ok := h[n]; !ok {
			return fmt.Errorf("%w: missing %s", ErrMalformed, n)
		}
	}
	return nil
}

func decodeMSearch(h map[string]string) (*Message, error) {
	if err := requireHeaders(h, "HOST", "MAN", "MX", "ST"); err != nil {
		return nil, err
	}
	mx, err := strconv.Atoi(h["MX"])
	if err != nil {
		return nil, fmt.Errorf("%w: bad MX", ErrMalformed)
	}
	return &Message{Kind: KindMSearch, Target: h["ST"], MX: mx}, nil
}

func decodeNotify(h map[string]string) (*Message, error) {
	nts := h["NTS"]
	switch nts {
	case NTSAlive:
		if err := requireHeaders(h, "HOST", "CACHE-CONTROL", "LOCATION", "NT", "NTS", "SERVER", "USN"); err != nil {
			return nil, err
		}
		maxAge, err := parseMaxAge(h["CACHE-CONTROL"])
		if err != nil {
			return nil, err
		}
		rec := DiscoveryRecord{
			Location: h["LOCATION"],
			USN:      h["USN"],
			NT:       h["NT"],
			Server:   h["SERVER"],
			MaxAge:   maxAge,
			Headers:  h,
		}
		if rec.Location == "" || rec.USN == "" {
			return nil, fmt.Errorf("%w: missing LOCATION/USN", ErrMalformed)
		}
		return &Message{Kind: KindNotifyAlive, Record: rec, USN: rec.USN, NT: rec.NT}, nil
	case NTSByeBye:
		if err := requireHeaders(h, "HOST", "NT", "NTS", "USN"); err != nil {
			return nil, err
		}
		return &Message{Kind: KindNotifyByeBye, USN: h["USN"], NT: h["NT"],
			Record: DiscoveryRecord{USN: h["USN"], NT: h["NT"], Headers: h}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown NTS %q", ErrMalformed, nts)
	}
}

func decodeSearchResponse(h map[string]string) (*Message, error) {
	if err := requireHeaders(h, "CACHE-CONTROL", "DATE", "EXT", "LOCATION", "SERVER", "ST", "USN"); err != nil {
		return nil, err
	}
	maxAge, err := parseMaxAge(h["CACHE-CONTROL"])
	if err != nil {
		return nil, err
	}
	rec := DiscoveryRecord{
		Location: h["LOCATION"],
		USN:      h["USN"],
		ST:       h["ST"],
		Server:   h["SERVER"],
		MaxAge:   maxAge,
		Ext:      h["EXT"],
		Date:     h["DATE"],
		Headers:  h,
	}
	if rec.Location == "" || rec.USN == "" {
		return nil, fmt.Errorf("%w: missing LOCATION/USN", ErrMalformed)
	}
	return &Message{Kind: KindSearchResponse, Record: rec}, nil
}

// parseMaxAge extracts the integer from "max-age=1800", case-insensitively
// and tolerant of surrounding whitespace.
func parseMaxAge(cacheControl string) (int, error) {
	parts := strings.Split(cacheControl, "=")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: bad CACHE-CONTROL %q", ErrMalformed, cacheControl)
	}
	if !strings.EqualFold(strings.TrimSpace(parts[0]), "max-age") {
		return 0, fmt.Errorf("%w: bad CACHE-CONTROL %q", ErrMalformed, cacheControl)
	}
	age, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: bad max-age value", ErrMalformed)
	}
	return age, nil
}
