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

	"github.com/carverauto/nicstat/pkg/ethtool"
)

// EthtoolModel holds derived rates per interface. Diffs records every interface seen in
// either sample, including those left out of NIC.
type EthtoolModel struct {
	NIC   map[string]*NicModel  `json:"nic"`
	Diffs map[string]DiffResult `json:"diffs"`
}

type NicModel struct {
	NIC       SingleNicModel     `json:"nic"`
	Queues    []SingleQueueModel `json:"queues"`
	QueueDiff DiffResult         `json:"queue_diff"`
}

type SingleNicModel struct {
	Interface       string            `json:"interface"`
	TxTimeoutPerSec *uint64           `json:"tx_timeout_per_sec,omitempty"`
	CustomRates     map[string]uint64 `json:"custom_rates,omitempty"`
}

type SingleQueueModel struct {
	Interface               string            `json:"interface"`
	QueueID                 uint32            `json:"queue_id"`
	RxBytesPerSec           *uint64           `json:"rx_bytes_per_sec,omitempty"`
	TxBytesPerSec           *uint64           `json:"tx_bytes_per_sec,omitempty"`
	RxCountPerSec           *uint64           `json:"rx_count_per_sec,omitempty"`
	TxCountPerSec           *uint64           `json:"tx_count_per_sec,omitempty"`
	TxMissedTxPerSec        *uint64           `json:"tx_missed_tx_per_sec,omitempty"`
	TxUnmaskInterruptPerSec *uint64           `json:"tx_unmask_interrupt_per_sec,omitempty"`
	CustomRates             map[string]uint64 `json:"custom_rates,omitempty"`
}

// Interfaces returns the emitted interface names in sorted order.
func (m *EthtoolModel) Interfaces() []string {
	return slices.Sorted(maps.Keys(m.NIC))
}

// NewEthtoolModel pairs interfaces by name and queues by position. Without a previous
// sample only interface names and queue ids are filled in.
func NewEthtoolModel(sample, last *ethtool.Stats, elapsed time.Duration) EthtoolModel {
	m := EthtoolModel{
		NIC:   make(map[string]*NicModel),
		Diffs: make(map[string]DiffResult),
	}

	if sample == nil {
		return m
	}

	if last == nil {
		for name, nic := range sample.NIC {
			m.NIC[name] = identityNic(name, nic)
			m.Diffs[name] = DiffNoBaseline
		}

		return m
	}

	for name, cur := range sample.NIC {
		if cur == nil {
			continue
		}

		prev, ok := last.Get(name)
		if !ok {
			m.Diffs[name] = DiffMissingInPrevious

			continue
		}

		m.NIC[name] = newNicModel(name, cur, prev, elapsed)
		m.Diffs[name] = DiffMatched
	}

	for name := range last.NIC {
		if _, ok := m.Diffs[name]; !ok {
			m.Diffs[name] = DiffMissingInCurrent
		}
	}

	return m
}

func identityNic(name string, nic *ethtool.NicStats) *NicModel {
	model := &NicModel{
		NIC:       SingleNicModel{Interface: name},
		QueueDiff: DiffNoBaseline,
	}

	if nic == nil {
		return model
	}

	for _, q := range nic.Queues {
		model.Queues = append(model.Queues, SingleQueueModel{Interface: name, QueueID: q.ID})
	}

	return model
}

func newNicModel(name string, cur, prev *ethtool.NicStats, elapsed time.Duration) *NicModel {
	queues, diff := pairQueues(name, cur.Queues, prev.Queues, elapsed)

	return &NicModel{
		NIC: SingleNicModel{
			Interface:       name,
			TxTimeoutPerSec: Rate(cur.TxTimeout, prev.TxTimeout, elapsed),
			CustomRates:     customRates(cur.CustomStats, prev.CustomStats, elapsed),
		},
		Queues:    queues,
		QueueDiff: diff,
	}
}

func pairQueues(name string, cur, prev []ethtool.QueueStats, elapsed time.Duration) ([]SingleQueueModel, DiffResult) {
	if len(cur) == 0 || len(prev) == 0 {
		return nil, DiffQueuesAbsent
	}

	if len(cur) != len(prev) {
		return nil, DiffQueueLengthMismatch
	}

	for i := range cur {
		if cur[i].ID != prev[i].ID {
			return nil, DiffQueueMismatch
		}
	}

	queues := make([]SingleQueueModel, len(cur))

	for i := range cur {
		c, p := &cur[i], &prev[i]

		queues[i] = SingleQueueModel{
			Interface:               name,
			QueueID:                 c.ID,
			RxBytesPerSec:           Rate(c.RxBytes, p.RxBytes, elapsed),
			TxBytesPerSec:           Rate(c.TxBytes, p.TxBytes, elapsed),
			RxCountPerSec:           Rate(c.RxCount, p.RxCount, elapsed),
			TxCountPerSec:           Rate(c.TxCount, p.TxCount, elapsed),
			TxMissedTxPerSec:        Rate(c.TxMissedTx, p.TxMissedTx, elapsed),
			TxUnmaskInterruptPerSec: Rate(c.TxUnmaskInterrupt, p.TxUnmaskInterrupt, elapsed),
			CustomRates:             customRates(c.CustomStats, p.CustomStats, elapsed),
		}
	}

	return queues, DiffMatched
}
