/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package model

import (
	"maps"
	"slices"
	"time"

	"github.com/carverauto/nicstat/pkg/tc"
)

// TcModel holds derived qdisc rates keyed by interface index.
type TcModel struct {
	Tc    map[uint32]*SingleTcModel `json:"tc"`
	Diffs map[uint32]DiffResult     `json:"diffs"`
}

type SingleTcModel struct {
	Interface string `json:"interface"`
	Index     uint32 `json:"index"`
	Handle    uint32 `json:"handle"`
	Parent    uint32 `json:"parent"`
	Kind      string `json:"kind"`

	BytesPerSec      *uint64 `json:"bytes_per_sec,omitempty"`
	PacketsPerSec    *uint64 `json:"packets_per_sec,omitempty"`
	DropsPerSec      *uint64 `json:"drops_per_sec,omitempty"`
	RequeuesPerSec   *uint64 `json:"requeues_per_sec,omitempty"`
	OverlimitsPerSec *uint64 `json:"overlimits_per_sec,omitempty"`

	Qlen    *uint32 `json:"qlen,omitempty"`
	Backlog *uint32 `json:"backlog,omitempty"`
	Bps     *uint64 `json:"bps,omitempty"`
	Pps     *uint64 `json:"pps,omitempty"`

	QDisc  *tc.QDisc    `json:"qdisc,omitempty"`
	XStats *XStatsModel `json:"xstats,omitempty"`
}

type XStatsModel struct {
	FqCodel *FqCodelXStatsModel `json:"fq_codel,omitempty"`
	Fq      *FqXStatsModel      `json:"fq,omitempty"`
	Codel   *CodelXStatsModel   `json:"codel,omitempty"`
}

type FqCodelXStatsModel struct {
	Maxpacket   uint32 `json:"maxpacket"`
	NewFlowsLen uint32 `json:"new_flows_len"`
	OldFlowsLen uint32 `json:"old_flows_len"`
	MemoryUsage uint32 `json:"memory_usage"`

	DropOverlimitPerSec  *uint64 `json:"drop_overlimit_per_sec,omitempty"`
	EcnMarkPerSec        *uint64 `json:"ecn_mark_per_sec,omitempty"`
	NewFlowCountPerSec   *uint64 `json:"new_flow_count_per_sec,omitempty"`
	CeMarkPerSec         *uint64 `json:"ce_mark_per_sec,omitempty"`
	DropOvermemoryPerSec *uint64 `json:"drop_overmemory_per_sec,omitempty"`
}

type FqXStatsModel struct {
	Flows          uint32 `json:"flows"`
	InactiveFlows  uint32 `json:"inactive_flows"`
	ThrottledFlows uint32 `json:"throttled_flows"`

	GcFlowsPerSec          *uint64 `json:"gc_flows_per_sec,omitempty"`
	HighprioPacketsPerSec  *uint64 `json:"highprio_packets_per_sec,omitempty"`
	TcpRetransPerSec       *uint64 `json:"tcp_retrans_per_sec,omitempty"`
	ThrottledPerSec        *uint64 `json:"throttled_per_sec,omitempty"`
	FlowsPlimitPerSec      *uint64 `json:"flows_plimit_per_sec,omitempty"`
	PktsTooLongPerSec      *uint64 `json:"pkts_too_long_per_sec,omitempty"`
	AllocationErrorsPerSec *uint64 `json:"allocation_errors_per_sec,omitempty"`
	CeMarkPerSec           *uint64 `json:"ce_mark_per_sec,omitempty"`
	HorizonDropsPerSec     *uint64 `json:"horizon_drops_per_sec,omitempty"`
	HorizonCapsPerSec      *uint64 `json:"horizon_caps_per_sec,omitempty"`
}

type CodelXStatsModel struct {
	Maxpacket uint32 `json:"maxpacket"`
	Count     uint32 `json:"count"`
	Ldelay    uint32 `json:"ldelay"`
	Dropping  uint32 `json:"dropping"`

	DropOverlimitPerSec *uint64 `json:"drop_overlimit_per_sec,omitempty"`
	EcnMarkPerSec       *uint64 `json:"ecn_mark_per_sec,omitempty"`
	CeMarkPerSec        *uint64 `json:"ce_mark_per_sec,omitempty"`
}

// Indexes returns the emitted interface indexes in ascending order.
func (m *TcModel) Indexes() []uint32 {
	return slices.Sorted(maps.Keys(m.Tc))
}

// NewTcModel pairs qdisc records by interface index. links maps indexes to interface
// names and may be nil. A record whose kind or handle changed since the previous sample
// is emitted with identity fields only.
func NewTcModel(sample, last tc.TcStats, links map[uint32]string, elapsed time.Duration) TcModel {
	m := TcModel{
		Tc:    make(map[uint32]*SingleTcModel),
		Diffs: make(map[uint32]DiffResult),
	}

	if last == nil {
		for idx, cur := range sample {
			if cur == nil {
				continue
			}

			m.Tc[idx] = identityTc(cur, links)
			m.Diffs[idx] = DiffNoBaseline
		}

		return m
	}

	for idx, cur := range sample {
		if cur == nil {
			continue
		}

		prev, ok := last[idx]
		if !ok || prev == nil {
			m.Diffs[idx] = DiffMissingInPrevious

			continue
		}

		if prev.Kind != cur.Kind || prev.Handle != cur.Handle {
			m.Tc[idx] = identityTc(cur, links)
			m.Diffs[idx] = DiffQdiscReplaced

			continue
		}

		m.Tc[idx] = newSingleTcModel(cur, prev, links, elapsed)
		m.Diffs[idx] = DiffMatched
	}

	for idx := range last {
		if _, ok := m.Diffs[idx]; !ok {
			m.Diffs[idx] = DiffMissingInCurrent
		}
	}

	return m
}

func identityTc(cur *tc.Tc, links map[uint32]string) *SingleTcModel {
	return &SingleTcModel{
		Interface: links[cur.Index],
		Index:     cur.Index,
		Handle:    cur.Handle,
		Parent:    cur.Parent,
		Kind:      cur.Kind,
	}
}

func newSingleTcModel(cur, prev *tc.Tc, links map[uint32]string, elapsed time.Duration) *SingleTcModel {
	m := identityTc(cur, links)

	s, p := &cur.Stats, &prev.Stats

	m.BytesPerSec = Rate(s.Bytes, p.Bytes, elapsed)
	m.PacketsPerSec = Rate(s.Packets, p.Packets, elapsed)
	m.DropsPerSec = Rate(s.Drops, p.Drops, elapsed)
	m.RequeuesPerSec = Rate(s.Requeues, p.Requeues, elapsed)
	m.OverlimitsPerSec = Rate(s.Overlimits, p.Overlimits, elapsed)

	m.Qlen = clonePtr(s.Qlen)
	m.Backlog = clonePtr(s.Backlog)
	m.Bps = clonePtr(s.Bps)
	m.Pps = clonePtr(s.Pps)

	m.QDisc = cur.QDisc
	m.XStats = newXStatsModel(s.XStats, p.XStats, elapsed)

	return m
}

func newXStatsModel(cur, prev *tc.XStats, elapsed time.Duration) *XStatsModel {
	if cur == nil || prev == nil {
		return nil
	}

	switch {
	case cur.FqCodel != nil && prev.FqCodel != nil:
		c, p := cur.FqCodel, prev.FqCodel

		return &XStatsModel{FqCodel: &FqCodelXStatsModel{
			Maxpacket:            c.Maxpacket,
			NewFlowsLen:          c.NewFlowsLen,
			OldFlowsLen:          c.OldFlowsLen,
			MemoryUsage:          c.MemoryUsage,
			DropOverlimitPerSec:  rateOf(c.DropOverlimit, p.DropOverlimit, elapsed),
			EcnMarkPerSec:        rateOf(c.EcnMark, p.EcnMark, elapsed),
			NewFlowCountPerSec:   rateOf(c.NewFlowCount, p.NewFlowCount, elapsed),
			CeMarkPerSec:         rateOf(c.CeMark, p.CeMark, elapsed),
			DropOvermemoryPerSec: rateOf(c.DropOvermemory, p.DropOvermemory, elapsed),
		}}
	case cur.Fq != nil && prev.Fq != nil:
		c, p := cur.Fq, prev.Fq

		return &XStatsModel{Fq: &FqXStatsModel{
			Flows:                  c.Flows,
			InactiveFlows:          c.InactiveFlows,
			ThrottledFlows:         c.ThrottledFlows,
			GcFlowsPerSec:          rateOf(c.GcFlows, p.GcFlows, elapsed),
			HighprioPacketsPerSec:  rateOf(c.HighprioPackets, p.HighprioPackets, elapsed),
			TcpRetransPerSec:       rateOf(c.TcpRetrans, p.TcpRetrans, elapsed),
			ThrottledPerSec:        rateOf(c.Throttled, p.Throttled, elapsed),
			FlowsPlimitPerSec:      rateOf(c.FlowsPlimit, p.FlowsPlimit, elapsed),
			PktsTooLongPerSec:      rateOf(c.PktsTooLong, p.PktsTooLong, elapsed),
			AllocationErrorsPerSec: rateOf(c.AllocationErrors, p.AllocationErrors, elapsed),
			CeMarkPerSec:           rateOf(c.CeMark, p.CeMark, elapsed),
			HorizonDropsPerSec:     rateOf(c.HorizonDrops, p.HorizonDrops, elapsed),
			HorizonCapsPerSec:      rateOf(c.HorizonCaps, p.HorizonCaps, elapsed),
		}}
	case cur.Codel != nil && prev.Codel != nil:
		c, p := cur.Codel, prev.Codel

		return &XStatsModel{Codel: &CodelXStatsModel{
			Maxpacket:           c.Maxpacket,
			Count:               c.Count,
			Ldelay:              c.Ldelay,
			Dropping:            c.Dropping,
			DropOverlimitPerSec: rateOf(c.DropOverlimit, p.DropOverlimit, elapsed),
			EcnMarkPerSec:       rateOf(c.EcnMark, p.EcnMark, elapsed),
			CeMarkPerSec:        rateOf(c.CeMark, p.CeMark, elapsed),
		}}
	default:
		return nil
	}
}
