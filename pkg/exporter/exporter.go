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

// Package exporter exposes the latest rate model as Prometheus gauges.
package exporter

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carverauto/nicstat/pkg/model"
)

const namespace = "nicstat"

var (
	nicLabels   = []string{"interface"}
	queueLabels = []string{"interface", "queue"}
	tcLabels    = []string{"interface", "ifindex", "kind", "handle"}
)

// ModelFunc returns the latest model, if any.
type ModelFunc func() (*model.Model, bool)

type field[T any] struct {
	desc  *prometheus.Desc
	value func(*T) (float64, bool)
}

func newField[T any](subsystem, name, help string, labels []string, value func(*T) (float64, bool)) field[T] {
	return field[T]{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, labels, nil),
		value: value,
	}
}

func (f field[T]) collect(ch chan<- prometheus.Metric, v *T, labels ...string) {
	if v == nil {
		return
	}

	if value, ok := f.value(v); ok {
		ch <- prometheus.MustNewConstMetric(f.desc, prometheus.GaugeValue, value, labels...)
	}
}

func u64(p *uint64) (float64, bool) {
	if p == nil {
		return 0, false
	}

	return float64(*p), true
}

func u32(p *uint32) (float64, bool) {
	if p == nil {
		return 0, false
	}

	return float64(*p), true
}

func gauge(v uint32) (float64, bool) {
	return float64(v), true
}

// Exporter is a prometheus.Collector over the most recent model.
type Exporter struct {
	latest ModelFunc

	elapsed       *prometheus.Desc
	ethtoolDiff   *prometheus.Desc
	queueDiff     *prometheus.Desc
	tcDiff        *prometheus.Desc
	nicCustom     *prometheus.Desc
	queueCustom   *prometheus.Desc
	nicFields     []field[model.SingleNicModel]
	queueFields   []field[model.SingleQueueModel]
	tcFields      []field[model.SingleTcModel]
	fqCodelFields []field[model.FqCodelXStatsModel]
	fqFields      []field[model.FqXStatsModel]
	codelFields   []field[model.CodelXStatsModel]
}

func New(latest ModelFunc) *Exporter {
	return &Exporter{
		latest: latest,
		elapsed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "model", "elapsed_seconds"),
			"Time between the two samples the rates were derived from.", nil, nil),
		ethtoolDiff: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ethtool", "interface_diff"),
			"How an interface was matched between samples.", []string{"interface", "result"}, nil),
		queueDiff: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ethtool", "queue_diff"),
			"How an interface's queues were paired between samples.", []string{"interface", "result"}, nil),
		tcDiff: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "tc", "diff"),
			"How a qdisc was matched between samples.", []string{"ifindex", "result"}, nil),
		nicCustom: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ethtool", "custom_per_second"),
			"Rate of a driver specific interface counter.", []string{"interface", "stat"}, nil),
		queueCustom: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ethtool", "queue_custom_per_second"),
			"Rate of a driver specific queue counter.", []string{"interface", "queue", "stat"}, nil),
		nicFields: []field[model.SingleNicModel]{
			newField("ethtool", "tx_timeout_per_second", "Transmit timeouts per second.", nicLabels,
				func(m *model.SingleNicModel) (float64, bool) { return u64(m.TxTimeoutPerSec) }),
		},
		queueFields: []field[model.SingleQueueModel]{
			newField("ethtool", "queue_rx_bytes_per_second", "Bytes received per second on a queue.", queueLabels,
				func(m *model.SingleQueueModel) (float64, bool) { return u64(m.RxBytesPerSec) }),
			newField("ethtool", "queue_tx_bytes_per_second", "Bytes transmitted per second on a queue.", queueLabels,
				func(m *model.SingleQueueModel) (float64, bool) { return u64(m.TxBytesPerSec) }),
			newField("ethtool", "queue_rx_count_per_second", "Packets received per second on a queue.", queueLabels,
				func(m *model.SingleQueueModel) (float64, bool) { return u64(m.RxCountPerSec) }),
			newField("ethtool", "queue_tx_count_per_second", "Packets transmitted per second on a queue.", queueLabels,
				func(m *model.SingleQueueModel) (float64, bool) { return u64(m.TxCountPerSec) }),
			newField("ethtool", "queue_tx_missed_tx_per_second", "Missed transmissions per second on a queue.", queueLabels,
				func(m *model.SingleQueueModel) (float64, bool) { return u64(m.TxMissedTxPerSec) }),
			newField("ethtool", "queue_tx_unmask_interrupt_per_second", "Unmasked transmit interrupts per second on a queue.", queueLabels,
				func(m *model.SingleQueueModel) (float64, bool) { return u64(m.TxUnmaskInterruptPerSec) }),
		},
		tcFields: []field[model.SingleTcModel]{
			newField("tc", "bytes_per_second", "Bytes sent per second through the qdisc.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u64(m.BytesPerSec) }),
			newField("tc", "packets_per_second", "Packets sent per second through the qdisc.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u64(m.PacketsPerSec) }),
			newField("tc", "drops_per_second", "Packets dropped per second by the qdisc.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u64(m.DropsPerSec) }),
			newField("tc", "requeues_per_second", "Packets requeued per second by the qdisc.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u64(m.RequeuesPerSec) }),
			newField("tc", "overlimits_per_second", "Overlimit events per second in the qdisc.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u64(m.OverlimitsPerSec) }),
			newField("tc", "qlen", "Packets currently queued.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u32(m.Qlen) }),
			newField("tc", "backlog", "Bytes currently queued.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u32(m.Backlog) }),
			newField("tc", "bps", "Rate estimator bytes per second.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u64(m.Bps) }),
			newField("tc", "pps", "Rate estimator packets per second.", tcLabels,
				func(m *model.SingleTcModel) (float64, bool) { return u64(m.Pps) }),
		},
		fqCodelFields: []field[model.FqCodelXStatsModel]{
			newField("tc", "fq_codel_maxpacket", "Largest packet seen by fq_codel.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return gauge(m.Maxpacket) }),
			newField("tc", "fq_codel_new_flows_len", "Flows in the fq_codel new list.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return gauge(m.NewFlowsLen) }),
			newField("tc", "fq_codel_old_flows_len", "Flows in the fq_codel old list.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return gauge(m.OldFlowsLen) }),
			newField("tc", "fq_codel_memory_usage", "Memory used by fq_codel in bytes.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return gauge(m.MemoryUsage) }),
			newField("tc", "fq_codel_drop_overlimit_per_second", "fq_codel overlimit drops per second.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return u64(m.DropOverlimitPerSec) }),
			newField("tc", "fq_codel_ecn_mark_per_second", "fq_codel ECN marks per second.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return u64(m.EcnMarkPerSec) }),
			newField("tc", "fq_codel_new_flow_count_per_second", "fq_codel new flows per second.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return u64(m.NewFlowCountPerSec) }),
			newField("tc", "fq_codel_ce_mark_per_second", "fq_codel CE marks per second.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return u64(m.CeMarkPerSec) }),
			newField("tc", "fq_codel_drop_overmemory_per_second", "fq_codel memory limit drops per second.", tcLabels,
				func(m *model.FqCodelXStatsModel) (float64, bool) { return u64(m.DropOvermemoryPerSec) }),
		},
		fqFields: []field[model.FqXStatsModel]{
			newField("tc", "fq_flows", "Flows tracked by fq.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return gauge(m.Flows) }),
			newField("tc", "fq_inactive_flows", "Inactive flows tracked by fq.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return gauge(m.InactiveFlows) }),
			newField("tc", "fq_throttled_flows", "Throttled flows tracked by fq.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return gauge(m.ThrottledFlows) }),
			newField("tc", "fq_gc_flows_per_second", "fq flows garbage collected per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.GcFlowsPerSec) }),
			newField("tc", "fq_highprio_packets_per_second", "fq high priority packets per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.HighprioPacketsPerSec) }),
			newField("tc", "fq_tcp_retrans_per_second", "fq TCP retransmits per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.TcpRetransPerSec) }),
			newField("tc", "fq_throttled_per_second", "fq throttle events per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.ThrottledPerSec) }),
			newField("tc", "fq_flows_plimit_per_second", "fq per flow limit drops per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.FlowsPlimitPerSec) }),
			newField("tc", "fq_pkts_too_long_per_second", "fq oversized packets per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.PktsTooLongPerSec) }),
			newField("tc", "fq_allocation_errors_per_second", "fq allocation errors per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.AllocationErrorsPerSec) }),
			newField("tc", "fq_ce_mark_per_second", "fq CE marks per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.CeMarkPerSec) }),
			newField("tc", "fq_horizon_drops_per_second", "fq horizon drops per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.HorizonDropsPerSec) }),
			newField("tc", "fq_horizon_caps_per_second", "fq horizon caps per second.", tcLabels,
				func(m *model.FqXStatsModel) (float64, bool) { return u64(m.HorizonCapsPerSec) }),
		},
		codelFields: []field[model.CodelXStatsModel]{
			newField("tc", "codel_maxpacket", "Largest packet seen by codel.", tcLabels,
				func(m *model.CodelXStatsModel) (float64, bool) { return gauge(m.Maxpacket) }),
			newField("tc", "codel_count", "codel drop count in the current dropping state.", tcLabels,
				func(m *model.CodelXStatsModel) (float64, bool) { return gauge(m.Count) }),
			newField("tc", "codel_ldelay", "codel sojourn time of the last dequeued packet.", tcLabels,
				func(m *model.CodelXStatsModel) (float64, bool) { return gauge(m.Ldelay) }),
			newField("tc", "codel_dropping", "Whether codel is in the dropping state.", tcLabels,
				func(m *model.CodelXStatsModel) (float64, bool) { return gauge(m.Dropping) }),
			newField("tc", "codel_drop_overlimit_per_second", "codel overlimit drops per second.", tcLabels,
				func(m *model.CodelXStatsModel) (float64, bool) { return u64(m.DropOverlimitPerSec) }),
			newField("tc", "codel_ecn_mark_per_second", "codel ECN marks per second.", tcLabels,
				func(m *model.CodelXStatsModel) (float64, bool) { return u64(m.EcnMarkPerSec) }),
			newField("tc", "codel_ce_mark_per_second", "codel CE marks per second.", tcLabels,
				func(m *model.CodelXStatsModel) (float64, bool) { return u64(m.CeMarkPerSec) }),
		},
	}
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{e.elapsed, e.ethtoolDiff, e.queueDiff, e.tcDiff, e.nicCustom, e.queueCustom} {
		ch <- d
	}

	describe(ch, e.nicFields)
	describe(ch, e.queueFields)
	describe(ch, e.tcFields)
	describe(ch, e.fqCodelFields)
	describe(ch, e.fqFields)
	describe(ch, e.codelFields)
}

func describe[T any](ch chan<- *prometheus.Desc, fields []field[T]) {
	for _, f := range fields {
		ch <- f.desc
	}
}

func collect[T any](ch chan<- prometheus.Metric, fields []field[T], v *T, labels ...string) {
	for _, f := range fields {
		f.collect(ch, v, labels...)
	}
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e.latest == nil {
		return
	}

	m, ok := e.latest()
	if !ok || m == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(e.elapsed, prometheus.GaugeValue, m.Elapsed.Seconds())

	e.collectEthtool(ch, &m.Ethtool)
	e.collectTc(ch, &m.Tc)
}

func (e *Exporter) collectEthtool(ch chan<- prometheus.Metric, m *model.EthtoolModel) {
	for name, diff := range m.Diffs {
		ch <- prometheus.MustNewConstMetric(e.ethtoolDiff, prometheus.GaugeValue, 1, name, diff.String())
	}

	for _, name := range m.Interfaces() {
		nic := m.NIC[name]

		ch <- prometheus.MustNewConstMetric(e.queueDiff, prometheus.GaugeValue, 1, name, nic.QueueDiff.String())

		collect(ch, e.nicFields, &nic.NIC, name)

		for _, stat := range sortedKeys(nic.NIC.CustomRates) {
			ch <- prometheus.MustNewConstMetric(e.nicCustom, prometheus.GaugeValue,
				float64(nic.NIC.CustomRates[stat]), name, stat)
		}

		for i := range nic.Queues {
			q := &nic.Queues[i]
			queue := strconv.FormatUint(uint64(q.QueueID), 10)

			collect(ch, e.queueFields, q, name, queue)

			for _, stat := range sortedKeys(q.CustomRates) {
				ch <- prometheus.MustNewConstMetric(e.queueCustom, prometheus.GaugeValue,
					float64(q.CustomRates[stat]), name, queue, stat)
			}
		}
	}
}

func (e *Exporter) collectTc(ch chan<- prometheus.Metric, m *model.TcModel) {
	for idx, diff := range m.Diffs {
		ch <- prometheus.MustNewConstMetric(e.tcDiff, prometheus.GaugeValue, 1,
			strconv.FormatUint(uint64(idx), 10), diff.String())
	}

	for _, idx := range m.Indexes() {
		t := m.Tc[idx]
		labels := []string{t.Interface, strconv.FormatUint(uint64(idx), 10), t.Kind, formatHandle(t.Handle)}

		collect(ch, e.tcFields, t, labels...)

		if t.XStats == nil {
			continue
		}

		collect(ch, e.fqCodelFields, t.XStats.FqCodel, labels...)
		collect(ch, e.fqFields, t.XStats.Fq, labels...)
		collect(ch, e.codelFields, t.XStats.Codel, labels...)
	}
}

// formatHandle renders a qdisc handle the way tc(8) prints it.
func formatHandle(h uint32) string {
	return fmt.Sprintf("%x:%x", h>>16, h&0xffff)
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
