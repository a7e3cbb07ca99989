//go:build linux

package tc

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

type netlinkConn struct {
	fd int
}

// DialTimeout opens a NETLINK_ROUTE socket connected to the kernel, applying timeout
// to every Recv. A timeout of zero lets receives block until the kernel answers.
func DialTimeout(timeout time.Duration) (Conn, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return nil, errnoError(OpSocket, err)
	}

	if timeout > 0 {
		tv := unix.NsecToTimeval(timeout.Nanoseconds())
		if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			_ = unix.Close(fd)

			return nil, errnoError(OpSocket, err)
		}
	}

	if err := unix.Connect(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: 0, Groups: 0}); err != nil {
		_ = unix.Close(fd)

		return nil, errnoError(OpConnect, err)
	}

	return &netlinkConn{fd: fd}, nil
}

func (c *netlinkConn) Send(b []byte) error {
	if err := unix.Sendto(c.fd, b, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return errnoError(OpSend, err)
	}

	return nil
}

func (c *netlinkConn) Recv(b []byte) (int, error) {
	for {
		n, _, err := unix.Recvfrom(c.fd, b, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		if err != nil {
			return 0, errnoError(OpRecv, err)
		}

		return n, nil
	}
}

func (c *netlinkConn) Close() error {
	if c.fd < 0 {
		return nil
	}

	err := unix.Close(c.fd)
	c.fd = -1

	if err != nil {
		return errnoError(OpSocket, err)
	}

	return nil
}

func errnoError(op Op, err error) *Error {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return &Error{Op: op, Code: int(errno), Msg: errno.Error()}
	}

	return &Error{Op: op, Msg: err.Error(), cause: err}
}
