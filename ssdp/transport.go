package ssdp

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/castbridge/upnpgo/internal/log"
)

// Datagram is one inbound UDP packet paired with its sender.
type Datagram struct {
	Payload []byte
	Peer    *net.UDPAddr
}

// Transport is the UDP transport: a multicast listen socket joined on
// every eligible IPv4 interface, plus helpers for opening the ephemeral send
// sockets used by the Searcher and Notifier. A single Transport may back a
// Listener and any number of concurrent Searchers without port conflict,
// since the listen socket and the ephemeral send sockets are distinct file
// descriptors.
type Transport struct {
	TTL int

	conn *net.UDPConn
	pc   *ipv4.PacketConn
}

// NewTransport creates a Transport with the given multicast TTL. ttl <= 0
// falls back to DefaultTTL.
func NewTransport(ttl int) *Transport {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Transport{TTL: ttl}
}

// ListenMulticast binds 0.0.0.0:1900 and joins the SSDP multicast group on
// every eligible IPv4 interface, mirroring how production SSDP stacks in
// this codebase avoid missing NOTIFYs on multi-homed hosts.
func (t *Transport) ListenMulticast() error {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: Port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("ssdp: listen multicast: %w", err)
	}
	pc := ipv4.NewPacketConn(conn)
	group := net.ParseIP(MulticastAddr)

	ifaces, err := net.Interfaces()
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssdp: list interfaces: %w", err)
	}
	joined := 0
	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		if err := pc.JoinGroup(iface, &net.UDPAddr{IP: group}); err == nil {
			joined++
		}
	}
	if joined == 0 {
		conn.Close()
		return fmt.Errorf("ssdp: no multicast-capable interface joined group %s", MulticastAddr)
	}
	if err := pc.SetMulticastTTL(t.TTL); err != nil {
		log.Default().Warn(context.Background(), "ssdp: failed to set multicast TTL", "ttl", t.TTL, "err", err)
	}

	t.conn = conn
	t.pc = pc
	return nil
}

// Datagrams returns a channel that yields every inbound datagram until the
// Transport is closed. The channel is closed when the underlying socket is
// closed or hits a non-EINTR read error.
func (t *Transport) Datagrams() <-chan Datagram {
	out := make(chan Datagram, 32)
	go func() {
		defer close(out)
		buf := make([]byte, 4096)
		for {
			n, peer, err := t.conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			payload := make([]byte, n)
			copy(payload, buf[:n])
			out <- Datagram{Payload: payload, Peer: peer}
		}
	}()
	return out
}

// Close releases the multicast listen socket.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}

// EphemeralSocket is an unbound-port UDP socket used to send M-SEARCH and
// NOTIFY datagrams and to receive unicast search responses, independent of
// the multicast listen socket.
type EphemeralSocket struct {
	conn      *net.UDPConn
	broadcast bool
}

// NewEphemeralSocket opens an ephemeral UDP socket bound to 0.0.0.0:0. When
// broadcast is true SO_BROADCAST is enabled so datagrams may target
// 255.255.255.255, per the Broadcast Searcher's non-standard fallback mode.
func NewEphemeralSocket(broadcast bool) (*EphemeralSocket, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("ssdp: open ephemeral socket: %w", err)
	}
	if broadcast {
		if err := enableBroadcast(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ssdp: enable SO_BROADCAST: %w", err)
		}
	}
	return &EphemeralSocket{conn: conn, broadcast: broadcast}, nil
}

// Send transmits payload to dest.
func (s *EphemeralSocket) Send(payload []byte, dest string) error {
	addr, err := net.ResolveUDPAddr("udp4", dest)
	if err != nil {
		return fmt.Errorf("ssdp: resolve %s: %w", dest, err)
	}
	_, err = s.conn.WriteToUDP(payload, addr)
	return err
}

// Datagrams returns a channel of inbound datagrams on this socket, closed
// when the socket is closed.
func (s *EphemeralSocket) Datagrams() <-chan Datagram {
	out := make(chan Datagram, 32)
	go func() {
		defer close(out)
		buf := make([]byte, 4096)
		for {
			n, peer, err := s.conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			payload := make([]byte, n)
			copy(payload, buf[:n])
			out <- Datagram{Payload: payload, Peer: peer}
		}
	}()
	return out
}

// SetReadDeadline forwards to the underlying connection, used by the
// Searcher to bound the response-collection window without a goroutine leak.
func (s *EphemeralSocket) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// Close releases the socket.
func (s *EphemeralSocket) Close() error {
	return s.conn.Close()
}
