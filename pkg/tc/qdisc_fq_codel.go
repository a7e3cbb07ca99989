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
	"github.com/mdlayher/netlink/nlenc"
)

const (
	tcaFqCodelTarget        = 1
	tcaFqCodelLimit         = 2
	tcaFqCodelInterval      = 3
	tcaFqCodelEcn           = 4
	tcaFqCodelFlows         = 5
	tcaFqCodelQuantum       = 6
	tcaFqCodelCeThreshold   = 7
	tcaFqCodelDropBatchSize = 8
	tcaFqCodelMemoryLimit   = 9

	fqCodelXStatsQdisc = 0
	fqCodelXStatsLen   = 4 + 9*4
)

type FqCodelQDisc struct {
	Target        uint32 `json:"target"`
	Limit         uint32 `json:"limit"`
	Interval      uint32 `json:"interval"`
	Ecn           uint32 `json:"ecn"`
	Flows         uint32 `json:"flows"`
	Quantum       uint32 `json:"quantum"`
	CeThreshold   uint32 `json:"ce_threshold"`
	DropBatchSize uint32 `json:"drop_batch_size"`
	MemoryLimit   uint32 `json:"memory_limit"`
}

type FqCodelXStats struct {
	Maxpacket      uint32 `json:"maxpacket"`
	DropOverlimit  uint32 `json:"drop_overlimit"`
	EcnMark        uint32 `json:"ecn_mark"`
	NewFlowCount   uint32 `json:"new_flow_count"`
	NewFlowsLen    uint32 `json:"new_flows_len"`
	OldFlowsLen    uint32 `json:"old_flows_len"`
	CeMark         uint32 `json:"ce_mark"`
	MemoryUsage    uint32 `json:"memory_usage"`
	DropOvermemory uint32 `json:"drop_overmemory"`
}

func decodeFqCodelOptions(b []byte) (*QDisc, error) {
	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return nil, err
	}

	q := &FqCodelQDisc{}

	for ad.Next() {
		switch ad.Type() {
		case tcaFqCodelTarget:
			q.Target = ad.Uint32()
		case tcaFqCodelLimit:
			q.Limit = ad.Uint32()
		case tcaFqCodelInterval:
			q.Interval = ad.Uint32()
		case tcaFqCodelEcn:
			q.Ecn = ad.Uint32()
		case tcaFqCodelFlows:
			q.Flows = ad.Uint32()
		case tcaFqCodelQuantum:
			q.Quantum = ad.Uint32()
		case tcaFqCodelCeThreshold:
			q.CeThreshold = ad.Uint32()
		case tcaFqCodelDropBatchSize:
			q.DropBatchSize = ad.Uint32()
		case tcaFqCodelMemoryLimit:
			q.MemoryLimit = ad.Uint32()
		}
	}

	return &QDisc{FqCodel: q}, ad.Err()
}

// decodeFqCodelXStats decodes tc_fq_codel_xstats. Class statistics are not reported
// for a qdisc and yield nil.
func decodeFqCodelXStats(b []byte) (*XStats, error) {
	if len(b) < 4 {
		return nil, decodeError("fq_codel xstats is %d bytes", len(b))
	}

	if nlenc.Uint32(b[0:4]) != fqCodelXStatsQdisc {
		return nil, nil
	}

	if len(b) < fqCodelXStatsLen {
		return nil, decodeError("fq_codel qdisc xstats is %d bytes, want %d", len(b), fqCodelXStatsLen)
	}

	return &XStats{FqCodel: &FqCodelXStats{
		Maxpacket:      u32At(b, 4),
		DropOverlimit:  u32At(b, 8),
		EcnMark:        u32At(b, 12),
		NewFlowCount:   u32At(b, 16),
		NewFlowsLen:    u32At(b, 20),
		OldFlowsLen:    u32At(b, 24),
		CeMark:         u32At(b, 28),
		MemoryUsage:    u32At(b, 32),
		DropOvermemory: u32At(b, 36),
	}}, nil
}

func u32At(b []byte, off int) uint32 {
	return nlenc.Uint32(b[off : off+4])
}

func u64At(b []byte, off int) uint64 {
	return nlenc.Uint64(b[off : off+8])
}
