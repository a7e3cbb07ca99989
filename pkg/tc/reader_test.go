package tc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mdlayher/netlink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/nicstat/pkg/logger"
)

func TestReaderReadStats(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	conn := NewMockConn(ctrl)

	fq := fqCodelMessage(t)
	broken := encodeAttrs(t, func(ae *netlink.AttributeEncoder) {
		ae.String(tcaKind, "codel")
		ae.Bytes(tcaStats, []byte{1})
	})

	expectDump(conn,
		frame(t, rtmNewQdisc, tcmsg(fq.Header.Index, fq.Header.Handle, fq.Header.Parent, fq.Attributes)),
		concat(frame(t, rtmNewQdisc, tcmsg(3, 0, TcHRoot, broken)), doneFrame(t)),
	)
	conn.EXPECT().Close().Return(nil)

	reader := NewReader(logger.NewTestLogger(),
		WithDialer(func() (Conn, error) { return conn, nil }),
		WithRecvBufferSize(MinRecvBufferSize))

	stats, err := reader.ReadStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []uint32{2, 3}, stats.Indexes())
	assert.Equal(t, "fq_codel", stats[2].Kind)
	assert.Equal(t, "codel", stats[3].Kind)
}

func TestReaderDumpFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	conn := NewMockConn(ctrl)

	expectDump(conn, errorFrame(t, -13))
	conn.EXPECT().Close().Return(nil)

	reader := NewReader(nil, WithDialer(func() (Conn, error) { return conn, nil }))

	stats, err := reader.ReadStats(context.Background())
	require.ErrorIs(t, err, ErrNetlink)
	assert.Nil(t, stats)
}

func TestReaderDialFailure(t *testing.T) {
	t.Parallel()

	dialErr := &Error{Op: OpSocket, Code: 1, Msg: "operation not permitted"}
	reader := NewReader(nil, WithDialer(func() (Conn, error) { return nil, dialErr }))

	_, err := reader.ReadStats(context.Background())
	require.ErrorIs(t, err, ErrNetlink)
}

func TestReaderCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewReader(nil, WithDialer(func() (Conn, error) {
		return nil, errors.New("dial must not be called")
	}))

	_, err := reader.ReadStats(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReaderRecvTimeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultRecvTimeout, NewReader(nil).recvTimeout)
	assert.Equal(t, 2*time.Second, NewReader(nil, WithRecvTimeout(2*time.Second)).recvTimeout)
	assert.Zero(t, NewReader(nil, WithRecvTimeout(0)).recvTimeout)
	assert.Equal(t, DefaultRecvTimeout, NewReader(nil, WithRecvTimeout(-time.Second)).recvTimeout)
	assert.NotNil(t, NewReader(nil, WithRecvTimeout(time.Second)).dial)
}
