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

package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/nicstat/pkg/config"
	"github.com/carverauto/nicstat/pkg/ethtool"
	"github.com/carverauto/nicstat/pkg/logger"
	"github.com/carverauto/nicstat/pkg/tc"
)

const (
	defaultSampleInterval = time.Second
	minSampleInterval     = 100 * time.Millisecond
	maxSampleInterval     = time.Minute
	defaultListenAddr     = "127.0.0.1:9469"
	defaultParallelism    = 4
)

var (
	errNoInterfaces         = errors.New("at least one interface is required")
	errInvalidInterfaceName = errors.New("invalid interface name")
)

// Config is the nicstat agent configuration.
type Config struct {
	Interfaces     []string        `json:"interfaces"`
	SampleInterval config.Duration `json:"sample_interval,omitempty"`
	ListenAddr     string          `json:"listen_addr,omitempty"`
	Parallelism    int             `json:"parallelism,omitempty"`
	RecvBufferSize int             `json:"recv_buffer_size,omitempty"`
	NetlinkTimeout config.Duration `json:"netlink_timeout,omitempty"`
	Logging        *logger.Config  `json:"logging,omitempty"`
}

// Normalize ensures defaults are populated and clamps the sample interval.
func (c *Config) Normalize() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	interval := time.Duration(c.SampleInterval)

	switch {
	case interval == 0:
		interval = defaultSampleInterval
	case interval < minSampleInterval:
		interval = minSampleInterval
	case interval > maxSampleInterval:
		interval = maxSampleInterval
	}

	c.SampleInterval = config.Duration(interval)

	if c.Parallelism < 1 {
		c.Parallelism = defaultParallelism
	}

	switch {
	case c.RecvBufferSize == 0:
		c.RecvBufferSize = tc.DefaultRecvBufferSize
	case c.RecvBufferSize < tc.MinRecvBufferSize:
		c.RecvBufferSize = tc.MinRecvBufferSize
	}

	if c.NetlinkTimeout <= 0 {
		c.NetlinkTimeout = config.Duration(tc.DefaultRecvTimeout)
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}
}

func (c *Config) Validate() error {
	if len(c.Interfaces) == 0 {
		return errNoInterfaces
	}

	for _, name := range c.Interfaces {
		if name == "" || len(name) >= ethtool.IfNameSize {
			return fmt.Errorf("%w: %q", errInvalidInterfaceName, name)
		}
	}

	return nil
}

// Interval returns the normalized sample interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.SampleInterval)
}
