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
	"maps"
	"slices"
)

// TcStats maps an interface index to the qdisc record reported for it.
type TcStats map[uint32]*Tc

// Indexes returns the interface indexes in ascending order.
func (s TcStats) Indexes() []uint32 {
	return slices.Sorted(maps.Keys(s))
}

// Tc is one qdisc as reported by RTM_NEWQDISC.
type Tc struct {
	Index  uint32 `json:"index"`
	Handle uint32 `json:"handle"`
	Parent uint32 `json:"parent"`
	Kind   string `json:"kind"`
	Stats  Stats  `json:"stats"`
	QDisc  *QDisc `json:"qdisc,omitempty"`
}

// IsRoot reports whether the qdisc is attached at the root of its interface.
func (t *Tc) IsRoot() bool {
	return t.Parent == TcHRoot
}

// Stats holds the generic queueing counters. Nil fields were not reported.
type Stats struct {
	Bytes      *uint64 `json:"bytes,omitempty"`
	Packets    *uint32 `json:"packets,omitempty"`
	Qlen       *uint32 `json:"qlen,omitempty"`
	Backlog    *uint32 `json:"backlog,omitempty"`
	Drops      *uint32 `json:"drops,omitempty"`
	Requeues   *uint32 `json:"requeues,omitempty"`
	Overlimits *uint32 `json:"overlimits,omitempty"`
	Bps        *uint64 `json:"bps,omitempty"`
	Pps        *uint64 `json:"pps,omitempty"`

	XStats *XStats `json:"xstats,omitempty"`
}

// QDisc carries the options of a recognised qdisc kind. Exactly one field is set.
type QDisc struct {
	FqCodel *FqCodelQDisc `json:"fq_codel,omitempty"`
	Fq      *FqQDisc      `json:"fq,omitempty"`
	Codel   *CodelQDisc   `json:"codel,omitempty"`
}

// XStats carries the kind specific statistics. Exactly one field is set.
type XStats struct {
	FqCodel *FqCodelXStats `json:"fq_codel,omitempty"`
	Fq      *FqXStats      `json:"fq,omitempty"`
	Codel   *CodelXStats   `json:"codel,omitempty"`
}

type qdiscDecoder struct {
	options func(b []byte) (*QDisc, error)
	xstats  func(b []byte) (*XStats, error)
}

var qdiscDecoders = map[string]qdiscDecoder{
	"fq_codel": {options: decodeFqCodelOptions, xstats: decodeFqCodelXStats},
	"fq":       {options: decodeFqOptions, xstats: decodeFqXStats},
	"codel":    {options: decodeCodelOptions, xstats: decodeCodelXStats},
}
