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

// Package sampler periodically collects NIC and qdisc counters and keeps the rate model
// derived from the two most recent samples.
package sampler

import (
	"context"
	"time"

	"github.com/carverauto/nicstat/pkg/ethtool"
	"github.com/carverauto/nicstat/pkg/logger"
	"github.com/carverauto/nicstat/pkg/model"
	"github.com/carverauto/nicstat/pkg/tc"
)

// EthtoolSource reads one ethtool snapshot.
type EthtoolSource interface {
	ReadStats(ctx context.Context) (*ethtool.Stats, error)
}

// TcSource reads one qdisc snapshot.
type TcSource interface {
	ReadStats(ctx context.Context) (tc.TcStats, error)
}

// LinkSource resolves interface indexes to names.
type LinkSource func(ctx context.Context) (map[uint32]string, error)

// Collector gathers one model.Sample from its sources. A nil source is skipped.
type Collector struct {
	ethtool EthtoolSource
	tc      TcSource
	links   LinkSource
	now     func() time.Time
	log     logger.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithLinkSource replaces the gopsutil backed link lookup.
func WithLinkSource(links LinkSource) CollectorOption {
	return func(c *Collector) {
		c.links = links
	}
}

// WithClock replaces time.Now for sample timestamps.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCollector(log logger.Logger, eth EthtoolSource, tcs TcSource, opts ...CollectorOption) *Collector {
	if log == nil {
		log = logger.NewTestLogger()
	}

	c := &Collector{
		ethtool: eth,
		tc:      tcs,
		links:   InterfaceNames,
		now:     time.Now,
		log:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Collect reads every source once. A failing source is logged and left empty in the
// sample; only context cancellation is returned as an error.
func (c *Collector) Collect(ctx context.Context) (*model.Sample, error) {
	sample := &model.Sample{Timestamp: c.now()}

	if c.ethtool != nil {
		stats, err := c.ethtool.ReadStats(ctx)
		if err != nil {
			c.log.Warn().Err(err).Msg("Failed to read ethtool statistics")
		} else {
			sample.Ethtool = stats
		}
	}

	if c.tc != nil {
		stats, err := c.tc.ReadStats(ctx)
		if err != nil {
			c.log.Warn().Err(err).Msg("Failed to read tc statistics")
		} else {
			sample.Tc = stats
		}

		if c.links != nil && len(sample.Tc) > 0 {
			links, err := c.links(ctx)
			if err != nil {
				c.log.Debug().Err(err).Msg("Failed to resolve interface names")
			} else {
				sample.Links = links
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return sample, nil
}
