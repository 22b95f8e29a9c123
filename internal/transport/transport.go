// Package transport configures the TCP connections a Channel Access host
// binds a VirtualCircuit to. Nothing here is sans-I/O: it is the thin,
// syscall-level layer the engine in internal/ca/circuit deliberately
// stays above, keeping raw fd tuning separate from the protocol logic
// layered on top of it.
package transport

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// Tune disables Nagle's algorithm and enables TCP keepalives on conn,
// the two socket options real Channel Access implementations set on
// every circuit connection: CA's own request/response traffic is latency
// sensitive and bursty, which Nagle's algorithm fights, and a circuit can
// sit idle for long stretches between monitor updates, which keepalives
// need to detect a vanished peer. It reaches the raw fd via
// net.TCPConn.SyscallConn and golang.org/x/sys/unix, the socket-option
// counterpart to an ioctl-based fd configuration pass.
func Tune(conn *net.TCPConn, keepalive time.Duration) error {
	if err := conn.SetNoDelay(true); err != nil {
		return fmt.Errorf("transport: setting TCP_NODELAY: %w", err)
	}
	if err := conn.SetKeepAlive(true); err != nil {
		return fmt.Errorf("transport: enabling SO_KEEPALIVE: %w", err)
	}
	if keepalive <= 0 {
		return nil
	}
	if err := conn.SetKeepAlivePeriod(keepalive); err != nil {
		return fmt.Errorf("transport: setting keepalive period: %w", err)
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("transport: obtaining raw conn: %w", err)
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		secs := int(keepalive.Seconds())
		if secs < 1 {
			secs = 1
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, secs)
	}); err != nil {
		return fmt.Errorf("transport: controlling raw conn: %w", err)
	}
	if sockErr != nil {
		return fmt.Errorf("transport: setting TCP_KEEPIDLE: %w", sockErr)
	}
	return nil
}

// Dial opens a CLIENT-role TCP connection to addr and tunes it per Tune.
func Dial(addr string, keepalive time.Duration) (*net.TCPConn, error) {
	raddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolving %q: %w", addr, err)
	}
	conn, err := net.DialTCP("tcp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("transport: dialing %q: %w", addr, err)
	}
	if err := Tune(conn, keepalive); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
