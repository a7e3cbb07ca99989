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
	"time"

	"github.com/carverauto/nicstat/pkg/ethtool"
	"github.com/carverauto/nicstat/pkg/tc"
)

// Sample is one point-in-time collection of raw counters.
type Sample struct {
	Timestamp time.Time         `json:"timestamp"`
	Ethtool   *ethtool.Stats    `json:"ethtool,omitempty"`
	Tc        tc.TcStats        `json:"tc,omitempty"`
	Links     map[uint32]string `json:"links,omitempty"`
}

// Model is the rate view derived from two consecutive samples.
type Model struct {
	Timestamp time.Time     `json:"timestamp"`
	Elapsed   time.Duration `json:"elapsed"`
	Ethtool   EthtoolModel  `json:"ethtool"`
	Tc        TcModel       `json:"tc"`
}

// New derives a Model from sample and the sample before it. last may be nil, in which
// case only identity fields are populated. New is a pure function of its inputs.
func New(sample, last *Sample) *Model {
	if sample == nil {
		return &Model{
			Ethtool: NewEthtoolModel(nil, nil, 0),
			Tc:      NewTcModel(nil, nil, nil, 0),
		}
	}

	m := &Model{Timestamp: sample.Timestamp}

	var (
		lastEthtool *ethtool.Stats
		lastTc      tc.TcStats
	)

	if last != nil {
		m.Elapsed = sample.Timestamp.Sub(last.Timestamp)
		lastEthtool = last.Ethtool
		lastTc = last.Tc

		if lastTc == nil && sample.Tc != nil {
			lastTc = tc.TcStats{}
		}

		if lastEthtool == nil && sample.Ethtool != nil {
			lastEthtool = &ethtool.Stats{}
		}
	}

	m.Ethtool = NewEthtoolModel(sample.Ethtool, lastEthtool, m.Elapsed)
	m.Tc = NewTcModel(sample.Tc, lastTc, sample.Links, m.Elapsed)

	return m
}
