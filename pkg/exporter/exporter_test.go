package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/nicstat/pkg/model"
)

func u64p(v uint64) *uint64 { return &v }

func u32p(v uint32) *uint32 { return &v }

func testModel() *model.Model {
	return &model.Model{
		Timestamp: time.Unix(100, 0),
		Elapsed:   5 * time.Second,
		Ethtool: model.EthtoolModel{
			NIC: map[string]*model.NicModel{
				"eth0": {
					NIC: model.SingleNicModel{
						Interface:       "eth0",
						TxTimeoutPerSec: u64p(2),
						CustomRates:     map[string]uint64{"rx_errors": 3},
					},
					Queues: []model.SingleQueueModel{
						{Interface: "eth0", QueueID: 0, RxBytesPerSec: u64p(100)},
						{Interface: "eth0", QueueID: 1, RxBytesPerSec: u64p(200), CustomRates: map[string]uint64{"xdp": 4}},
					},
					QueueDiff: model.DiffMatched,
				},
			},
			Diffs: map[string]model.DiffResult{"eth0": model.DiffMatched, "eth1": model.DiffMissingInCurrent},
		},
		Tc: model.TcModel{
			Tc: map[uint32]*model.SingleTcModel{
				2: {
					Interface:   "eth0",
					Index:       2,
					Handle:      0x10000,
					Parent:      0xffffffff,
					Kind:        "fq_codel",
					BytesPerSec: u64p(1000),
					Qlen:        u32p(7),
					XStats: &model.XStatsModel{
						FqCodel: &model.FqCodelXStatsModel{Maxpacket: 1514, EcnMarkPerSec: u64p(1)},
					},
				},
			},
			Diffs: map[uint32]model.DiffResult{2: model.DiffMatched},
		},
	}
}

func TestExporterNoModel(t *testing.T) {
	e := New(func() (*model.Model, bool) { return nil, false })

	assert.Equal(t, 0, testutil.CollectAndCount(e))

	assert.Equal(t, 0, testutil.CollectAndCount(New(nil)))
}

func TestExporterEthtool(t *testing.T) {
	e := New(func() (*model.Model, bool) { return testModel(), true })

	expected := `
# HELP nicstat_ethtool_queue_rx_bytes_per_second Bytes received per second on a queue.
# TYPE nicstat_ethtool_queue_rx_bytes_per_second gauge
nicstat_ethtool_queue_rx_bytes_per_second{interface="eth0",queue="0"} 100
nicstat_ethtool_queue_rx_bytes_per_second{interface="eth0",queue="1"} 200
# HELP nicstat_ethtool_tx_timeout_per_second Transmit timeouts per second.
# TYPE nicstat_ethtool_tx_timeout_per_second gauge
nicstat_ethtool_tx_timeout_per_second{interface="eth0"} 2
# HELP nicstat_ethtool_custom_per_second Rate of a driver specific interface counter.
# TYPE nicstat_ethtool_custom_per_second gauge
nicstat_ethtool_custom_per_second{interface="eth0",stat="rx_errors"} 3
# HELP nicstat_ethtool_queue_custom_per_second Rate of a driver specific queue counter.
# TYPE nicstat_ethtool_queue_custom_per_second gauge
nicstat_ethtool_queue_custom_per_second{interface="eth0",queue="1",stat="xdp"} 4
# HELP nicstat_ethtool_interface_diff How an interface was matched between samples.
# TYPE nicstat_ethtool_interface_diff gauge
nicstat_ethtool_interface_diff{interface="eth0",result="matched"} 1
nicstat_ethtool_interface_diff{interface="eth1",result="missing_in_current"} 1
`

	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected),
		"nicstat_ethtool_queue_rx_bytes_per_second",
		"nicstat_ethtool_tx_timeout_per_second",
		"nicstat_ethtool_custom_per_second",
		"nicstat_ethtool_queue_custom_per_second",
		"nicstat_ethtool_interface_diff",
	))

	// Absent rates are not exported.
	assert.Equal(t, 0, testutil.CollectAndCount(e, "nicstat_ethtool_queue_tx_bytes_per_second"))
}

func TestExporterTc(t *testing.T) {
	e := New(func() (*model.Model, bool) { return testModel(), true })

	expected := `
# HELP nicstat_tc_bytes_per_second Bytes sent per second through the qdisc.
# TYPE nicstat_tc_bytes_per_second gauge
nicstat_tc_bytes_per_second{handle="1:0",ifindex="2",interface="eth0",kind="fq_codel"} 1000
# HELP nicstat_tc_qlen Packets currently queued.
# TYPE nicstat_tc_qlen gauge
nicstat_tc_qlen{handle="1:0",ifindex="2",interface="eth0",kind="fq_codel"} 7
# HELP nicstat_tc_fq_codel_maxpacket Largest packet seen by fq_codel.
# TYPE nicstat_tc_fq_codel_maxpacket gauge
nicstat_tc_fq_codel_maxpacket{handle="1:0",ifindex="2",interface="eth0",kind="fq_codel"} 1514
# HELP nicstat_tc_fq_codel_ecn_mark_per_second fq_codel ECN marks per second.
# TYPE nicstat_tc_fq_codel_ecn_mark_per_second gauge
nicstat_tc_fq_codel_ecn_mark_per_second{handle="1:0",ifindex="2",interface="eth0",kind="fq_codel"} 1
# HELP nicstat_model_elapsed_seconds Time between the two samples the rates were derived from.
# TYPE nicstat_model_elapsed_seconds gauge
nicstat_model_elapsed_seconds 5
`

	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected),
		"nicstat_tc_bytes_per_second",
		"nicstat_tc_qlen",
		"nicstat_tc_fq_codel_maxpacket",
		"nicstat_tc_fq_codel_ecn_mark_per_second",
		"nicstat_model_elapsed_seconds",
	))

	assert.Equal(t, 0, testutil.CollectAndCount(e, "nicstat_tc_backlog"))
	assert.Equal(t, 0, testutil.CollectAndCount(e, "nicstat_tc_fq_flows"))
	assert.Equal(t, 1, testutil.CollectAndCount(e, "nicstat_tc_fq_codel_old_flows_len"))
}

func TestExporterRegisters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	e := New(func() (*model.Model, bool) { return testModel(), true })

	require.NoError(t, reg.Register(e))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestFormatHandle(t *testing.T) {
	assert.Equal(t, "1:0", formatHandle(0x10000))
	assert.Equal(t, "ffff:ffff", formatHandle(0xffffffff))
	assert.Equal(t, "0:0", formatHandle(0))
}
