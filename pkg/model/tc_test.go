package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/nicstat/pkg/tc"
)

func fqCodelRecord(bytes uint64, drops uint32, ecnMark uint32) *tc.Tc {
	return &tc.Tc{
		Index:  2,
		Handle: 0x10000,
		Parent: tc.TcHRoot,
		Kind:   "fq_codel",
		Stats: tc.Stats{
			Bytes:      u64(bytes),
			Packets:    u32(uint32(bytes / 100)),
			Drops:      u32(drops),
			Requeues:   u32(0),
			Overlimits: u32(0),
			Qlen:       u32(3),
			Backlog:    u32(1500),
			Bps:        u64(8000),
			XStats: &tc.XStats{FqCodel: &tc.FqCodelXStats{
				Maxpacket:   1514,
				EcnMark:     ecnMark,
				NewFlowsLen: 1,
			}},
		},
		QDisc: &tc.QDisc{FqCodel: &tc.FqCodelQDisc{Target: 4999, Limit: 10240}},
	}
}

func TestTcModelRates(t *testing.T) {
	t.Parallel()

	last := tc.TcStats{2: fqCodelRecord(1000, 10, 4)}
	sample := tc.TcStats{2: fqCodelRecord(6000, 20, 14)}
	links := map[uint32]string{2: "eth0"}

	m := NewTcModel(sample, last, links, 5*time.Second)

	require.Contains(t, m.Tc, uint32(2))
	got := m.Tc[2]

	assert.Equal(t, "eth0", got.Interface)
	assert.Equal(t, "fq_codel", got.Kind)
	assert.Equal(t, uint32(0x10000), got.Handle)
	assert.Equal(t, u64(1000), got.BytesPerSec)
	assert.Equal(t, u64(10), got.PacketsPerSec)
	assert.Equal(t, u64(2), got.DropsPerSec)
	assert.Equal(t, u64(0), got.RequeuesPerSec)
	assert.Equal(t, u32(3), got.Qlen)
	assert.Equal(t, u32(1500), got.Backlog)
	assert.Equal(t, u64(8000), got.Bps)
	assert.Nil(t, got.Pps)
	assert.Equal(t, uint32(4999), got.QDisc.FqCodel.Target)

	require.NotNil(t, got.XStats)
	require.NotNil(t, got.XStats.FqCodel)
	assert.Equal(t, uint32(1514), got.XStats.FqCodel.Maxpacket)
	assert.Equal(t, uint32(1), got.XStats.FqCodel.NewFlowsLen)
	assert.Equal(t, u64(2), got.XStats.FqCodel.EcnMarkPerSec)
	assert.Equal(t, u64(0), got.XStats.FqCodel.DropOverlimitPerSec)

	assert.Equal(t, DiffMatched, m.Diffs[2])
}

func TestTcModelNoBaseline(t *testing.T) {
	t.Parallel()

	m := NewTcModel(tc.TcStats{2: fqCodelRecord(1, 1, 1)}, nil, nil, 0)

	got := m.Tc[2]
	require.NotNil(t, got)
	assert.Equal(t, &SingleTcModel{Index: 2, Handle: 0x10000, Parent: tc.TcHRoot, Kind: "fq_codel"}, got)
	assert.Equal(t, DiffNoBaseline, m.Diffs[2])
}

func TestTcModelMatching(t *testing.T) {
	t.Parallel()

	last := tc.TcStats{
		1: {Index: 1, Kind: "noqueue"},
		2: fqCodelRecord(1, 1, 1),
		3: {Index: 3, Kind: "fq", Handle: 1},
	}
	sample := tc.TcStats{
		2: fqCodelRecord(2, 2, 2),
		3: {Index: 3, Kind: "fq_codel", Handle: 1, Stats: tc.Stats{Bytes: u64(10)}},
		4: {Index: 4, Kind: "mq"},
	}

	m := NewTcModel(sample, last, nil, time.Second)

	assert.Equal(t, []uint32{2, 3}, m.Indexes())
	assert.Equal(t, map[uint32]DiffResult{
		1: DiffMissingInCurrent,
		2: DiffMatched,
		3: DiffQdiscReplaced,
		4: DiffMissingInPrevious,
	}, m.Diffs)
	assert.Nil(t, m.Tc[3].BytesPerSec)
}

func TestTcModelXStatsVariantChange(t *testing.T) {
	t.Parallel()

	prev := fqCodelRecord(1, 1, 1)
	cur := fqCodelRecord(2, 2, 2)
	cur.Stats.XStats = &tc.XStats{Codel: &tc.CodelXStats{}}

	m := NewTcModel(tc.TcStats{2: cur}, tc.TcStats{2: prev}, nil, time.Second)
	assert.Nil(t, m.Tc[2].XStats)
}

func TestTcModelFqAndCodelXStats(t *testing.T) {
	t.Parallel()

	fq := func(gc uint64, flows uint32) *tc.Tc {
		return &tc.Tc{Index: 5, Kind: "fq", Stats: tc.Stats{XStats: &tc.XStats{Fq: &tc.FqXStats{GcFlows: gc, Flows: flows}}}}
	}
	codel := func(drops uint32) *tc.Tc {
		return &tc.Tc{Index: 6, Kind: "codel", Stats: tc.Stats{XStats: &tc.XStats{Codel: &tc.CodelXStats{DropOverlimit: drops, Count: 9}}}}
	}

	m := NewTcModel(
		tc.TcStats{5: fq(30, 7), 6: codel(8)},
		tc.TcStats{5: fq(10, 3), 6: codel(4)},
		nil, 2*time.Second,
	)

	require.NotNil(t, m.Tc[5].XStats.Fq)
	assert.Equal(t, u64(10), m.Tc[5].XStats.Fq.GcFlowsPerSec)
	assert.Equal(t, uint32(7), m.Tc[5].XStats.Fq.Flows)

	require.NotNil(t, m.Tc[6].XStats.Codel)
	assert.Equal(t, u64(2), m.Tc[6].XStats.Codel.DropOverlimitPerSec)
	assert.Equal(t, uint32(9), m.Tc[6].XStats.Codel.Count)
}
