//go:build linux

package ssdp

import (
	"net"
	"syscall"
)

// enableBroadcast sets SO_BROADCAST on conn so it may send to the limited
// broadcast address (255.255.255.255), required by the Broadcast Searcher's
// non-standard fallback mode. No third-party library in this codebase's
// dependency set wraps raw socket options, so this one low-level piece is
// built directly on syscall rather than net — everything else in the
// transport layer goes through golang.org/x/net/ipv4 or net directly.
func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
