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

// Package model derives per-second rates from two snapshots of NIC and qdisc counters.
package model

import (
	"math"
	"math/bits"
	"time"
)

type counter interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Rate returns (cur - prev) / elapsed in units per second, rounded down. It is nil when
// either reading is missing, elapsed is not positive, or the counter went backwards.
// The quotient is computed on 128-bit nanosecond products and saturates at MaxUint64.
func Rate[T counter](cur, prev *T, elapsed time.Duration) *uint64 {
	if cur == nil || prev == nil || elapsed <= 0 {
		return nil
	}

	if *cur < *prev {
		return nil
	}

	v := perSecond(uint64(*cur-*prev), uint64(elapsed))

	return &v
}

func perSecond(delta, elapsedNs uint64) uint64 {
	hi, lo := bits.Mul64(delta, uint64(time.Second))
	if hi >= elapsedNs {
		return math.MaxUint64
	}

	q, _ := bits.Div64(hi, lo, elapsedNs)

	return q
}

func rateOf[T counter](cur, prev T, elapsed time.Duration) *uint64 {
	return Rate(&cur, &prev, elapsed)
}

func customRates(cur, prev map[string]uint64, elapsed time.Duration) map[string]uint64 {
	if len(cur) == 0 || len(prev) == 0 {
		return nil
	}

	var rates map[string]uint64

	for name, value := range cur {
		last, ok := prev[name]
		if !ok {
			continue
		}

		r := rateOf(value, last, elapsed)
		if r == nil {
			continue
		}

		if rates == nil {
			rates = make(map[string]uint64)
		}

		rates[name] = *r
	}

	return rates
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}
