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

package ethtool

import (
	"maps"
	"slices"
)

// QueueStats holds one queue's counters. Nil fields were not reported by the driver.
type QueueStats struct {
	ID                uint32            `json:"id"`
	RxBytes           *uint64           `json:"rx_bytes,omitempty"`
	TxBytes           *uint64           `json:"tx_bytes,omitempty"`
	RxCount           *uint64           `json:"rx_count,omitempty"`
	TxCount           *uint64           `json:"tx_count,omitempty"`
	TxMissedTx        *uint64           `json:"tx_missed_tx,omitempty"`
	TxUnmaskInterrupt *uint64           `json:"tx_unmask_interrupt,omitempty"`
	CustomStats       map[string]uint64 `json:"custom_stats,omitempty"`
}

// NicStats holds one interface's counters. Queues is nil when the driver exposes no
// per-queue statistics, otherwise it is sorted by ascending queue ID.
type NicStats struct {
	Queues      []QueueStats      `json:"queues,omitempty"`
	TxTimeout   *uint64           `json:"tx_timeout,omitempty"`
	CustomStats map[string]uint64 `json:"custom_stats,omitempty"`
}

// Stats is one ethtool snapshot keyed by interface name.
type Stats struct {
	NIC map[string]*NicStats `json:"nic"`
}

// Interfaces returns the interface names in the snapshot in sorted order.
func (s *Stats) Interfaces() []string {
	if s == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(s.NIC))
}

// Get returns the statistics recorded for ifName.
func (s *Stats) Get(ifName string) (*NicStats, bool) {
	if s == nil || s.NIC == nil {
		return nil, false
	}

	nic, ok := s.NIC[ifName]

	return nic, ok && nic != nil
}

func (q *QueueStats) set(field string, value uint64) {
	switch field {
	case "rx_bytes":
		q.RxBytes = &value
	case "tx_bytes":
		q.TxBytes = &value
	case "rx_cnt":
		q.RxCount = &value
	case "tx_cnt":
		q.TxCount = &value
	case "tx_missed_tx":
		q.TxMissedTx = &value
	case "tx_unmask_interrupt":
		q.TxUnmaskInterrupt = &value
	default:
		if q.CustomStats == nil {
			q.CustomStats = make(map[string]uint64)
		}

		q.CustomStats[field] = value
	}
}
