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
	"cmp"
	"slices"
	"strconv"
	"strings"
)

const (
	queueStatPrefix = "queue_"
	txTimeoutStat   = "tx_timeout"
)

// Translate classifies raw driver counters into per-queue, known scalar and custom
// statistics. A queue statistic with an unparsable index fails the whole interface.
func Translate(stats []Stat) (*NicStats, error) {
	nic := &NicStats{}
	queues := make(map[uint32]*QueueStats)

	for _, stat := range stats {
		if strings.HasPrefix(stat.Name, queueStatPrefix) {
			id, field, err := parseQueueStat(stat.Name)
			if err != nil {
				return nil, err
			}

			queue, ok := queues[id]
			if !ok {
				queue = &QueueStats{ID: id}
				queues[id] = queue
			}

			queue.set(field, stat.Value)

			continue
		}

		if stat.Name == txTimeoutStat {
			value := stat.Value
			nic.TxTimeout = &value

			continue
		}

		if nic.CustomStats == nil {
			nic.CustomStats = make(map[string]uint64)
		}

		nic.CustomStats[stat.Name] = stat.Value
	}

	if len(queues) > 0 {
		nic.Queues = make([]QueueStats, 0, len(queues))
		for _, queue := range queues {
			nic.Queues = append(nic.Queues, *queue)
		}

		slices.SortFunc(nic.Queues, func(a, b QueueStats) int {
			return cmp.Compare(a.ID, b.ID)
		})
	}

	return nic, nil
}

// parseQueueStat splits queue_<id>_<field> on the first two underscores.
func parseQueueStat(name string) (uint32, string, error) {
	segments := strings.SplitN(name, "_", 3)
	if len(segments) < 3 {
		return 0, "", parseError("queue stat %q has no field name", name)
	}

	id, err := strconv.ParseUint(segments[1], 10, 32)
	if err != nil {
		return 0, "", parseError("queue stat %q has invalid queue id %q", name, segments[1])
	}

	return uint32(id), segments[2], nil
}
