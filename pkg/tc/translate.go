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
	"errors"

	"github.com/mdlayher/netlink"
)

const (
	tcaKind    = 1
	tcaOptions = 2
	tcaStats   = 3
	tcaXStats  = 4
	tcaStats2  = 7

	tcaStatsBasic     = 1
	tcaStatsRateEst   = 2
	tcaStatsQueue     = 3
	tcaStatsRateEst64 = 5

	// struct tc_stats without trailing padding.
	tcStatsLen        = 8 + 7*4
	statsBasicLen     = 8 + 4
	statsRateEstLen   = 4 + 4
	statsRateEst64Len = 8 + 8
	statsQueueLen     = 5 * 4
)

// Translate turns a qdisc dump into records keyed by interface index. When an interface
// reports several qdiscs the first one is kept unless a later one is attached at the
// root. Records with malformed attributes are kept as decoded so far and their errors
// are returned joined.
func Translate(msgs []Message) (TcStats, error) {
	stats := make(TcStats, len(msgs))

	var errs []error

	for _, msg := range msgs {
		tc, err := NewTc(msg)
		if err != nil {
			errs = append(errs, err)
		}

		if prev, ok := stats[tc.Index]; ok && (prev.IsRoot() || !tc.IsRoot()) {
			continue
		}

		stats[tc.Index] = tc
	}

	return stats, errors.Join(errs...)
}

// NewTc decodes a single qdisc record. The returned record is never nil.
func NewTc(msg Message) (*Tc, error) {
	tc := &Tc{
		Index:  msg.Header.Index,
		Handle: msg.Header.Handle,
		Parent: msg.Header.Parent,
	}

	ad, err := netlink.NewAttributeDecoder(msg.Attributes)
	if err != nil {
		return tc, attributeError(tc.Index, "attributes", err)
	}

	var options, xstats, legacy, stats2 []byte

	for ad.Next() {
		switch ad.Type() {
		case tcaKind:
			tc.Kind = ad.String()
		case tcaOptions:
			options = ad.Bytes()
		case tcaStats:
			legacy = ad.Bytes()
		case tcaXStats:
			xstats = ad.Bytes()
		case tcaStats2:
			stats2 = ad.Bytes()
		}
	}

	var errs []error

	if err := ad.Err(); err != nil {
		errs = append(errs, attributeError(tc.Index, "attributes", err))
	}

	if legacy != nil {
		if err := tc.Stats.applyLegacy(legacy); err != nil {
			errs = append(errs, attributeError(tc.Index, "stats", err))
		}
	}

	if stats2 != nil {
		if err := tc.Stats.applyStats2(stats2); err != nil {
			errs = append(errs, attributeError(tc.Index, "stats2", err))
		}
	}

	if dec, ok := qdiscDecoders[tc.Kind]; ok {
		if options != nil {
			qdisc, err := dec.options(options)
			if err != nil {
				errs = append(errs, attributeError(tc.Index, tc.Kind+" options", err))
			}

			tc.QDisc = qdisc
		}

		if xstats != nil {
			x, err := dec.xstats(xstats)
			if err != nil {
				errs = append(errs, attributeError(tc.Index, tc.Kind+" xstats", err))
			}

			tc.Stats.XStats = x
		}
	}

	return tc, errors.Join(errs...)
}

// applyLegacy decodes struct tc_stats.
func (s *Stats) applyLegacy(b []byte) error {
	if len(b) < tcStatsLen {
		return decodeError("tc_stats is %d bytes, want %d", len(b), tcStatsLen)
	}

	s.Bytes = ptr(u64At(b, 0))
	s.Packets = ptr(u32At(b, 8))
	s.Drops = ptr(u32At(b, 12))
	s.Overlimits = ptr(u32At(b, 16))
	s.Bps = ptr(uint64(u32At(b, 20)))
	s.Pps = ptr(uint64(u32At(b, 24)))
	s.Qlen = ptr(u32At(b, 28))
	s.Backlog = ptr(u32At(b, 32))

	return nil
}

// applyStats2 decodes the nested TCA_STATS2 block over whatever TCA_STATS set.
func (s *Stats) applyStats2(b []byte) error {
	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return err
	}

	var rateEst64 []byte

	var errs []error

	for ad.Next() {
		data := ad.Bytes()

		switch ad.Type() {
		case tcaStatsBasic:
			if len(data) < statsBasicLen {
				errs = append(errs, decodeError("gnet_stats_basic is %d bytes", len(data)))

				continue
			}

			s.Bytes = ptr(u64At(data, 0))
			s.Packets = ptr(u32At(data, 8))
		case tcaStatsRateEst:
			if len(data) < statsRateEstLen {
				errs = append(errs, decodeError("gnet_stats_rate_est is %d bytes", len(data)))

				continue
			}

			s.Bps = ptr(uint64(u32At(data, 0)))
			s.Pps = ptr(uint64(u32At(data, 4)))
		case tcaStatsRateEst64:
			rateEst64 = data
		case tcaStatsQueue:
			if len(data) < statsQueueLen {
				errs = append(errs, decodeError("gnet_stats_queue is %d bytes", len(data)))

				continue
			}

			s.Qlen = ptr(u32At(data, 0))
			s.Backlog = ptr(u32At(data, 4))
			s.Drops = ptr(u32At(data, 8))
			s.Requeues = ptr(u32At(data, 12))
			s.Overlimits = ptr(u32At(data, 16))
		}
	}

	if rateEst64 != nil {
		if len(rateEst64) < statsRateEst64Len {
			errs = append(errs, decodeError("gnet_stats_rate_est64 is %d bytes", len(rateEst64)))
		} else {
			s.Bps = ptr(u64At(rateEst64, 0))
			s.Pps = ptr(u64At(rateEst64, 8))
		}
	}

	if err := ad.Err(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func ptr[T any](v T) *T {
	return &v
}
