package ethtool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }

func TestTranslate(t *testing.T) {
	t.Parallel()

	nic, err := Translate([]Stat{
		{Name: "queue_1_tx_bytes", Value: 200},
		{Name: "tx_timeout", Value: 2},
		{Name: "queue_0_rx_bytes", Value: 100},
		{Name: "queue_0_rx_cnt", Value: 10},
		{Name: "queue_0_tx_cnt", Value: 11},
		{Name: "queue_0_tx_missed_tx", Value: 1},
		{Name: "queue_0_tx_unmask_interrupt", Value: 4},
		{Name: "queue_0_rx_csum_bad", Value: 5},
		{Name: "rx_packets", Value: 999},
	})
	require.NoError(t, err)

	require.Len(t, nic.Queues, 2)
	assert.Equal(t, QueueStats{
		ID:                0,
		RxBytes:           u64(100),
		RxCount:           u64(10),
		TxCount:           u64(11),
		TxMissedTx:        u64(1),
		TxUnmaskInterrupt: u64(4),
		CustomStats:       map[string]uint64{"rx_csum_bad": 5},
	}, nic.Queues[0])
	assert.Equal(t, QueueStats{ID: 1, TxBytes: u64(200)}, nic.Queues[1])
	assert.Equal(t, u64(2), nic.TxTimeout)
	assert.Equal(t, map[string]uint64{"rx_packets": 999}, nic.CustomStats)
}

func TestTranslateOrdersQueuesNumerically(t *testing.T) {
	t.Parallel()

	nic, err := Translate([]Stat{
		{Name: "queue_10_rx_bytes", Value: 1},
		{Name: "queue_2_rx_bytes", Value: 1},
		{Name: "queue_1_rx_bytes", Value: 1},
	})
	require.NoError(t, err)

	ids := make([]uint32, 0, len(nic.Queues))
	for _, q := range nic.Queues {
		ids = append(ids, q.ID)
	}

	assert.Equal(t, []uint32{1, 2, 10}, ids)
}

func TestTranslateNoQueues(t *testing.T) {
	t.Parallel()

	nic, err := Translate([]Stat{{Name: "rx_packets", Value: 1}})
	require.NoError(t, err)
	assert.Nil(t, nic.Queues)
	assert.Nil(t, nic.TxTimeout)

	nic, err = Translate(nil)
	require.NoError(t, err)
	assert.Nil(t, nic.Queues)
	assert.Nil(t, nic.CustomStats)
}

func TestTranslateBadQueueNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"queue_x_rx_bytes", "queue_0", "queue__rx_bytes", "queue_-1_rx_bytes"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Translate([]Stat{{Name: name, Value: 1}})
			require.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestStatsInterfacesSorted(t *testing.T) {
	t.Parallel()

	stats := &Stats{NIC: map[string]*NicStats{"eth1": {}, "bond0": {}, "eth0": {}}}
	assert.Equal(t, []string{"bond0", "eth0", "eth1"}, stats.Interfaces())

	var empty *Stats
	assert.Nil(t, empty.Interfaces())

	_, ok := stats.Get("eth0")
	assert.True(t, ok)

	_, ok = stats.Get("wlan0")
	assert.False(t, ok)
}
