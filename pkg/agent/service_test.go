package agent

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/nicstat/pkg/ethtool"
	"github.com/carverauto/nicstat/pkg/tc"
)

type fakeEthtool struct {
	calls atomic.Uint64
}

func (f *fakeEthtool) ReadStats(context.Context) (*ethtool.Stats, error) {
	n := f.calls.Add(1)
	rx := n * 1000

	return &ethtool.Stats{NIC: map[string]*ethtool.NicStats{
		"eth0": {Queues: []ethtool.QueueStats{{ID: 0, RxBytes: &rx}}},
	}}, nil
}

type fakeTc struct{}

func (fakeTc) ReadStats(context.Context) (tc.TcStats, error) {
	qlen := uint32(3)

	return tc.TcStats{2: {Index: 2, Handle: 0x10000, Parent: tc.TcHRoot, Kind: "fq_codel", Stats: tc.Stats{Qlen: &qlen}}}, nil
}

func fakeLinks(context.Context) (map[uint32]string, error) {
	return map[uint32]string{2: "eth0"}, nil
}

func newTestService(t *testing.T, cfg *Config) *Service {
	t.Helper()

	svc, err := NewService(nil, cfg,
		WithEthtoolSource(&fakeEthtool{}),
		WithTcSource(fakeTc{}),
		WithLinkSource(fakeLinks),
	)
	require.NoError(t, err)

	return svc
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	return rec.Code, string(body)
}

func TestNewServiceRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := NewService(nil, nil)
	require.ErrorIs(t, err, errNilConfig)

	_, err = NewService(nil, &Config{})
	require.ErrorIs(t, err, errNoInterfaces)
}

func TestServiceMetrics(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &Config{Interfaces: []string{"eth0"}})

	code, body := get(t, svc.Handler(), metricsPath)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "nicstat_")

	svc.Sampler().CollectOnce(t.Context())
	time.Sleep(time.Millisecond)
	svc.Sampler().CollectOnce(t.Context())

	code, body = get(t, svc.Handler(), metricsPath)
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, body, `nicstat_ethtool_interface_diff{interface="eth0",result="matched"} 1`)
	assert.Contains(t, body, `nicstat_ethtool_queue_rx_bytes_per_second{interface="eth0",queue="0"}`)
	assert.Contains(t, body, `nicstat_tc_qlen{handle="1:0",ifindex="2",interface="eth0",kind="fq_codel"} 3`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServiceHealth(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &Config{Interfaces: []string{"eth0"}})

	code, _ := get(t, svc.Handler(), healthPath)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestServiceRun(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &Config{
		Interfaces: []string{"eth0"},
		ListenAddr: "127.0.0.1:0",
	})

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)

	go func() {
		errCh <- svc.Run(ctx)
	}()

	require.Eventually(t, func() bool { return svc.Addr() != nil }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + svc.Addr().String() + healthPath)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		_, ok := svc.Sampler().Latest()
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.False(t, svc.Sampler().Running())
}

func TestServiceRunListenError(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &Config{Interfaces: []string{"eth0"}, ListenAddr: "256.0.0.1:0"})

	require.Error(t, svc.Run(t.Context()))
	assert.False(t, svc.Sampler().Running())
}
