//go:build linux

package ethtool

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

const errnoNotSupported = int(unix.EOPNOTSUPP)

type socketTransport struct {
	fd int
}

func newSocketTransport() (Transport, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, errnoError(KindSocket, err)
	}

	return &socketTransport{fd: fd}, nil
}

func (t *socketTransport) Ioctl(ifName string, payload []byte) error {
	if len(payload) == 0 {
		return &Error{Kind: KindIoctl, Interface: ifName, Msg: errEmptyPayload.Error(), cause: errEmptyPayload}
	}

	req, err := encodeIfreq(ifName, uintptr(unsafe.Pointer(&payload[0])))
	if err != nil {
		return &Error{Kind: KindIoctl, Interface: ifName, Msg: err.Error(), cause: err}
	}

	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(t.fd),
		uintptr(unix.SIOCETHTOOL),
		uintptr(unsafe.Pointer(&req[0])),
	)

	// req holds the payload address as an integer; keep the buffer reachable until the
	// kernel is done with it.
	runtime.KeepAlive(payload)
	runtime.KeepAlive(&req)

	if errno != 0 {
		return errnoError(KindIoctl, errno)
	}

	return nil
}

func (t *socketTransport) Close() error {
	if t.fd < 0 {
		return nil
	}

	err := unix.Close(t.fd)
	t.fd = -1

	if err != nil {
		return errnoError(KindSocket, err)
	}

	return nil
}

func errnoError(kind Kind, err error) *Error {
	if errno, ok := err.(unix.Errno); ok {
		return &Error{Kind: kind, Code: int(errno), Msg: errno.Error()}
	}

	return &Error{Kind: kind, Msg: err.Error(), cause: err}
}
