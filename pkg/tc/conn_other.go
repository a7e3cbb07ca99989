//go:build !linux

package tc

import "time"

// DialTimeout always fails outside linux.
func DialTimeout(time.Duration) (Conn, error) {
	return nil, &Error{Op: OpSocket, Msg: ErrUnsupportedPlatform.Error(), cause: ErrUnsupportedPlatform}
}
