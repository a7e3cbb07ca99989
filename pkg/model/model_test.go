package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/carverauto/nicstat/pkg/ethtool"
	"github.com/carverauto/nicstat/pkg/tc"
)

func TestNewWithoutPrevious(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	sample := &Sample{
		Timestamp: now,
		Ethtool: &ethtool.Stats{NIC: map[string]*ethtool.NicStats{
			"eth0": {TxTimeout: u64(1), Queues: []ethtool.QueueStats{{ID: 0, RxBytes: u64(1)}}},
		}},
		Tc:    tc.TcStats{2: {Index: 2, Kind: "fq_codel", Stats: tc.Stats{Bytes: u64(1)}}},
		Links: map[uint32]string{2: "eth0"},
	}

	m := New(sample, nil)

	assert.Equal(t, now, m.Timestamp)
	assert.Zero(t, m.Elapsed)
	assert.Nil(t, m.Ethtool.NIC["eth0"].NIC.TxTimeoutPerSec)
	assert.Nil(t, m.Ethtool.NIC["eth0"].Queues[0].RxBytesPerSec)
	assert.Equal(t, "eth0", m.Tc.Tc[2].Interface)
	assert.Nil(t, m.Tc.Tc[2].BytesPerSec)
}

func TestNewDerivesElapsed(t *testing.T) {
	t.Parallel()

	base := time.Unix(1700000000, 0)
	last := &Sample{
		Timestamp: base,
		Ethtool:   &ethtool.Stats{NIC: map[string]*ethtool.NicStats{"eth0": {TxTimeout: u64(500)}}},
	}
	sample := &Sample{
		Timestamp: base.Add(5 * time.Second),
		Ethtool:   &ethtool.Stats{NIC: map[string]*ethtool.NicStats{"eth0": {TxTimeout: u64(1000)}}},
	}

	m := New(sample, last)

	assert.Equal(t, 5*time.Second, m.Elapsed)
	assert.Equal(t, u64(100), m.Ethtool.NIC["eth0"].NIC.TxTimeoutPerSec)
	assert.Empty(t, m.Tc.Tc)
}

func TestNewPreviousMissingSource(t *testing.T) {
	t.Parallel()

	base := time.Unix(1700000000, 0)
	last := &Sample{Timestamp: base}
	sample := &Sample{
		Timestamp: base.Add(time.Second),
		Ethtool:   &ethtool.Stats{NIC: map[string]*ethtool.NicStats{"eth0": {}}},
		Tc:        tc.TcStats{1: {Index: 1}},
	}

	m := New(sample, last)

	assert.Empty(t, m.Ethtool.NIC)
	assert.Equal(t, DiffMissingInPrevious, m.Ethtool.Diffs["eth0"])
	assert.Empty(t, m.Tc.Tc)
	assert.Equal(t, DiffMissingInPrevious, m.Tc.Diffs[1])
}

func TestNewClockWentBackwards(t *testing.T) {
	t.Parallel()

	base := time.Unix(1700000000, 0)
	stats := &ethtool.Stats{NIC: map[string]*ethtool.NicStats{"eth0": {TxTimeout: u64(1)}}}

	m := New(&Sample{Timestamp: base, Ethtool: stats}, &Sample{Timestamp: base.Add(time.Second), Ethtool: stats})

	require.Contains(t, m.Ethtool.NIC, "eth0")
	assert.Nil(t, m.Ethtool.NIC["eth0"].NIC.TxTimeoutPerSec)
}

func TestNewNilSample(t *testing.T) {
	t.Parallel()

	m := New(nil, nil)
	require.NotNil(t, m)
	assert.Empty(t, m.Ethtool.NIC)
	assert.Empty(t, m.Tc.Tc)
}

func drawStats(t *rapid.T, label string) *ethtool.Stats {
	stats := &ethtool.Stats{NIC: map[string]*ethtool.NicStats{}}

	n := rapid.IntRange(0, 3).Draw(t, label+"_nics")
	for i := 0; i < n; i++ {
		nic := &ethtool.NicStats{}

		if rapid.Bool().Draw(t, fmt.Sprintf("%s_%d_timeout", label, i)) {
			v := rapid.Uint64().Draw(t, fmt.Sprintf("%s_%d_timeout_v", label, i))
			nic.TxTimeout = &v
		}

		queues := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("%s_%d_queues", label, i))
		for q := 0; q < queues; q++ {
			v := rapid.Uint64().Draw(t, fmt.Sprintf("%s_%d_q%d", label, i, q))
			nic.Queues = append(nic.Queues, ethtool.QueueStats{ID: uint32(q), RxBytes: &v})
		}

		stats.NIC[fmt.Sprintf("eth%d", i)] = nic
	}

	return stats
}

func TestNewIsPure(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		base := time.Unix(rapid.Int64Range(0, 1<<32).Draw(rt, "base"), 0)
		elapsed := time.Duration(rapid.Int64Range(-5, 60).Draw(rt, "elapsed")) * time.Second

		last := &Sample{Timestamp: base, Ethtool: drawStats(rt, "last")}
		sample := &Sample{Timestamp: base.Add(elapsed), Ethtool: drawStats(rt, "cur")}

		first := New(sample, last)
		second := New(sample, last)
		require.Equal(rt, first, second)

		for name, nic := range first.Ethtool.NIC {
			cur, prev := sample.Ethtool.NIC[name], last.Ethtool.NIC[name]
			require.NotNil(rt, cur)
			require.NotNil(rt, prev)

			if nic.NIC.TxTimeoutPerSec != nil {
				require.Positive(rt, int64(elapsed))
				require.GreaterOrEqual(rt, *cur.TxTimeout, *prev.TxTimeout)
			}
		}
	})
}
