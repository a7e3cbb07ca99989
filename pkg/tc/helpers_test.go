package tc

import (
	"testing"

	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func frame(t *testing.T, typ netlink.HeaderType, payload []byte) []byte {
	t.Helper()

	msg := netlink.Message{
		Header: netlink.Header{
			Length: uint32(nlmsgAlign(nlmsgHeaderLen + len(payload))),
			Type:   typ,
			Flags:  netlink.Multi,
		},
		Data: payload,
	}

	b, err := msg.MarshalBinary()
	require.NoError(t, err)

	return b
}

func tcmsg(index, handle, parent uint32, attrs []byte) []byte {
	b := make([]byte, tcmsgLen+len(attrs))
	nlenc.PutUint32(b[4:8], index)
	nlenc.PutUint32(b[8:12], handle)
	nlenc.PutUint32(b[12:16], parent)
	copy(b[tcmsgLen:], attrs)

	return b
}

func qdiscFrame(t *testing.T, index, parent uint32, kind string) []byte {
	t.Helper()

	ae := netlink.NewAttributeEncoder()
	ae.String(tcaKind, kind)

	attrs, err := ae.Encode()
	require.NoError(t, err)

	return frame(t, rtmNewQdisc, tcmsg(index, 0, parent, attrs))
}

func errorFrame(t *testing.T, code int32) []byte {
	t.Helper()

	payload := make([]byte, 4+nlmsgHeaderLen)
	nlenc.PutInt32(payload[0:4], code)

	return frame(t, netlink.Error, payload)
}

func doneFrame(t *testing.T) []byte {
	t.Helper()

	return frame(t, netlink.Done, make([]byte, 4))
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// expectDump scripts a connection that accepts one request and then returns each
// datagram in order.
func expectDump(conn *MockConn, datagrams ...[]byte) {
	calls := []any{conn.EXPECT().Send(gomock.Any()).Return(nil)}

	for _, d := range datagrams {
		calls = append(calls, conn.EXPECT().Recv(gomock.Any()).DoAndReturn(func(b []byte) (int, error) {
			return copy(b, d), nil
		}))
	}

	gomock.InOrder(calls...)
}

func legacyStats(bytes uint64, packets, drops, overlimits, bps, pps, qlen, backlog uint32) []byte {
	b := make([]byte, 40)
	nlenc.PutUint64(b[0:8], bytes)

	for i, v := range []uint32{packets, drops, overlimits, bps, pps, qlen, backlog} {
		nlenc.PutUint32(b[8+i*4:12+i*4], v)
	}

	return b
}

func u32s(vals ...uint32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		nlenc.PutUint32(b[i*4:i*4+4], v)
	}

	return b
}
