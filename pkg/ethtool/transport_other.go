//go:build !linux

package ethtool

const errnoNotSupported = -1

func newSocketTransport() (Transport, error) {
	return nil, &Error{Kind: KindSocket, Msg: ErrUnsupportedPlatform.Error(), cause: ErrUnsupportedPlatform}
}
