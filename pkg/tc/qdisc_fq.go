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

package tc

import (
	"github.com/mdlayher/netlink"
)

const (
	tcaFqPlimit           = 1
	tcaFqFlowPlimit       = 2
	tcaFqQuantum          = 3
	tcaFqInitialQuantum   = 4
	tcaFqRateEnable       = 5
	tcaFqFlowMaxRate      = 7
	tcaFqBucketsLog       = 8
	tcaFqFlowRefillDelay  = 9
	tcaFqOrphanMask       = 10
	tcaFqLowRateThreshold = 11
	tcaFqCeThreshold      = 12
	tcaFqTimerSlack       = 13
	tcaFqHorizon          = 14
	tcaFqHorizonDrop      = 15

	// tc_fq_qd_stats up to unthrottle_latency_ns; later kernels append more counters.
	fqXStatsMinLen = 8*8 + 4*4
)

type FqQDisc struct {
	Plimit           uint32 `json:"plimit"`
	FlowPlimit       uint32 `json:"flow_plimit"`
	Quantum          uint32 `json:"quantum"`
	InitialQuantum   uint32 `json:"initial_quantum"`
	RateEnable       uint32 `json:"rate_enable"`
	FlowMaxRate      uint32 `json:"flow_max_rate"`
	BucketsLog       uint32 `json:"buckets_log"`
	FlowRefillDelay  uint32 `json:"flow_refill_delay"`
	OrphanMask       uint32 `json:"orphan_mask"`
	LowRateThreshold uint32 `json:"low_rate_threshold"`
	CeThreshold      uint32 `json:"ce_threshold"`
	TimerSlack       uint32 `json:"timer_slack"`
	Horizon          uint32 `json:"horizon"`
	HorizonDrop      uint8  `json:"horizon_drop"`
}

type FqXStats struct {
	GcFlows             uint64 `json:"gc_flows"`
	HighprioPackets     uint64 `json:"highprio_packets"`
	TcpRetrans          uint64 `json:"tcp_retrans"`
	Throttled           uint64 `json:"throttled"`
	FlowsPlimit         uint64 `json:"flows_plimit"`
	PktsTooLong         uint64 `json:"pkts_too_long"`
	AllocationErrors    uint64 `json:"allocation_errors"`
	TimeNextDelayedFlow int64  `json:"time_next_delayed_flow"`
	Flows               uint32 `json:"flows"`
	InactiveFlows       uint32 `json:"inactive_flows"`
	ThrottledFlows      uint32 `json:"throttled_flows"`
	UnthrottleLatencyNs uint32 `json:"unthrottle_latency_ns"`
	CeMark              uint64 `json:"ce_mark"`
	HorizonDrops        uint64 `json:"horizon_drops"`
	HorizonCaps         uint64 `json:"horizon_caps"`
}

func decodeFqOptions(b []byte) (*QDisc, error) {
	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return nil, err
	}

	q := &FqQDisc{}

	for ad.Next() {
		switch ad.Type() {
		case tcaFqPlimit:
			q.Plimit = ad.Uint32()
		case tcaFqFlowPlimit:
			q.FlowPlimit = ad.Uint32()
		case tcaFqQuantum:
			q.Quantum = ad.Uint32()
		case tcaFqInitialQuantum:
			q.InitialQuantum = ad.Uint32()
		case tcaFqRateEnable:
			q.RateEnable = ad.Uint32()
		case tcaFqFlowMaxRate:
			q.FlowMaxRate = ad.Uint32()
		case tcaFqBucketsLog:
			q.BucketsLog = ad.Uint32()
		case tcaFqFlowRefillDelay:
			q.FlowRefillDelay = ad.Uint32()
		case tcaFqOrphanMask:
			q.OrphanMask = ad.Uint32()
		case tcaFqLowRateThreshold:
			q.LowRateThreshold = ad.Uint32()
		case tcaFqCeThreshold:
			q.CeThreshold = ad.Uint32()
		case tcaFqTimerSlack:
			q.TimerSlack = ad.Uint32()
		case tcaFqHorizon:
			q.Horizon = ad.Uint32()
		case tcaFqHorizonDrop:
			q.HorizonDrop = ad.Uint8()
		}
	}

	return &QDisc{Fq: q}, ad.Err()
}

func decodeFqXStats(b []byte) (*XStats, error) {
	if len(b) < fqXStatsMinLen {
		return nil, decodeError("fq xstats is %d bytes, want at least %d", len(b), fqXStatsMinLen)
	}

	x := &FqXStats{
		GcFlows:             u64At(b, 0),
		HighprioPackets:     u64At(b, 8),
		TcpRetrans:          u64At(b, 16),
		Throttled:           u64At(b, 24),
		FlowsPlimit:         u64At(b, 32),
		PktsTooLong:         u64At(b, 40),
		AllocationErrors:    u64At(b, 48),
		TimeNextDelayedFlow: int64(u64At(b, 56)),
		Flows:               u32At(b, 64),
		InactiveFlows:       u32At(b, 68),
		ThrottledFlows:      u32At(b, 72),
		UnthrottleLatencyNs: u32At(b, 76),
	}

	if len(b) >= 88 {
		x.CeMark = u64At(b, 80)
	}

	if len(b) >= 104 {
		x.HorizonDrops = u64At(b, 88)
		x.HorizonCaps = u64At(b, 96)
	}

	return &XStats{Fq: x}, nil
}
