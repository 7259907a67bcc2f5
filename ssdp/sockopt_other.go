//go:build !linux

package ssdp

import "net"

// enableBroadcast is a no-op on platforms where the default UDP socket
// already permits sending to the broadcast address (e.g. several BSDs);
// Linux needs the explicit SO_BROADCAST set in sockopt_linux.go.
func enableBroadcast(conn *net.UDPConn) error {
	return nil
}
