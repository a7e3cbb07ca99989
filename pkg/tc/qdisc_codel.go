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
	tcaCodelTarget      = 1
	tcaCodelLimit       = 2
	tcaCodelInterval    = 3
	tcaCodelEcn         = 4
	tcaCodelCeThreshold = 5

	codelXStatsLen = 9 * 4
)

type CodelQDisc struct {
	Target      uint32 `json:"target"`
	Limit       uint32 `json:"limit"`
	Interval    uint32 `json:"interval"`
	Ecn         uint32 `json:"ecn"`
	CeThreshold uint32 `json:"ce_threshold"`
}

type CodelXStats struct {
	Maxpacket     uint32 `json:"maxpacket"`
	Count         uint32 `json:"count"`
	LastCount     uint32 `json:"lastcount"`
	Ldelay        uint32 `json:"ldelay"`
	DropNext      int32  `json:"drop_next"`
	DropOverlimit uint32 `json:"drop_overlimit"`
	EcnMark       uint32 `json:"ecn_mark"`
	Dropping      uint32 `json:"dropping"`
	CeMark        uint32 `json:"ce_mark"`
}

func decodeCodelOptions(b []byte) (*QDisc, error) {
	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return nil, err
	}

	q := &CodelQDisc{}

	for ad.Next() {
		switch ad.Type() {
		case tcaCodelTarget:
			q.Target = ad.Uint32()
		case tcaCodelLimit:
			q.Limit = ad.Uint32()
		case tcaCodelInterval:
			q.Interval = ad.Uint32()
		case tcaCodelEcn:
			q.Ecn = ad.Uint32()
		case tcaCodelCeThreshold:
			q.CeThreshold = ad.Uint32()
		}
	}

	return &QDisc{Codel: q}, ad.Err()
}

func decodeCodelXStats(b []byte) (*XStats, error) {
	if len(b) < codelXStatsLen {
		return nil, decodeError("codel xstats is %d bytes, want %d", len(b), codelXStatsLen)
	}

	return &XStats{Codel: &CodelXStats{
		Maxpacket:     u32At(b, 0),
		Count:         u32At(b, 4),
		LastCount:     u32At(b, 8),
		Ldelay:        u32At(b, 12),
		DropNext:      int32(u32At(b, 16)),
		DropOverlimit: u32At(b, 20),
		EcnMark:       u32At(b, 24),
		Dropping:      u32At(b, 28),
		CeMark:        u32At(b, 32),
	}}, nil
}
