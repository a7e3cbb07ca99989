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

import "fmt"

// DiffResult records how an interface or its queues were matched between two samples.
type DiffResult int

const (
	// DiffMatched means both samples carried the entity and rates were derived.
	DiffMatched DiffResult = iota
	// DiffNoBaseline means there was no previous sample.
	DiffNoBaseline
	// DiffMissingInPrevious means the entity appeared in the current sample only.
	DiffMissingInPrevious
	// DiffMissingInCurrent means the entity disappeared since the previous sample.
	DiffMissingInCurrent
	// DiffQueuesAbsent means one of the samples had no per-queue statistics.
	DiffQueuesAbsent
	// DiffQueueLengthMismatch means the two samples reported a different number of queues.
	DiffQueueLengthMismatch
	// DiffQueueMismatch means queue identifiers at the same position differ.
	DiffQueueMismatch
	// DiffQdiscReplaced means the qdisc kind or handle changed between samples.
	DiffQdiscReplaced
)

var diffNames = map[DiffResult]string{
	DiffMatched:             "matched",
	DiffNoBaseline:          "no_baseline",
	DiffMissingInPrevious:   "missing_in_previous",
	DiffMissingInCurrent:    "missing_in_current",
	DiffQueuesAbsent:        "queues_absent",
	DiffQueueLengthMismatch: "queue_length_mismatch",
	DiffQueueMismatch:       "queue_mismatch",
	DiffQdiscReplaced:       "qdisc_replaced",
}

func (d DiffResult) String() string {
	if name, ok := diffNames[d]; ok {
		return name
	}

	return fmt.Sprintf("DiffResult(%d)", int(d))
}

func (d DiffResult) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
