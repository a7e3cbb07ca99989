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
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/nicstat/pkg/logger"
)

const defaultParallelism = 4

// StatsSource yields raw statistics for one interface.
type StatsSource interface {
	Stats() ([]Stat, error)
	Close() error
}

// OpenFunc opens a StatsSource for a named interface.
type OpenFunc func(ifName string) (StatsSource, error)

// Reader polls a configured set of interfaces and assembles a Stats snapshot.
type Reader struct {
	interfaces  []string
	open        OpenFunc
	parallelism int
	log         logger.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithParallelism bounds how many interfaces are queried at once.
func WithParallelism(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// WithOpener replaces the socket-backed collector factory.
func WithOpener(open OpenFunc) ReaderOption {
	return func(r *Reader) {
		if open != nil {
			r.open = open
		}
	}
}

func NewReader(log logger.Logger, interfaces []string, opts ...ReaderOption) *Reader {
	if log == nil {
		log = logger.NewTestLogger()
	}

	r := &Reader{
		interfaces:  append([]string(nil), interfaces...),
		open:        openCollector,
		parallelism: defaultParallelism,
		log:         log,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func openCollector(ifName string) (StatsSource, error) {
	return NewCollector(ifName)
}

// Interfaces returns the configured interface names.
func (r *Reader) Interfaces() []string {
	return append([]string(nil), r.interfaces...)
}

// ReadNicStats reads and translates the counters of a single interface.
func (r *Reader) ReadNicStats(ifName string) (*NicStats, error) {
	src, err := r.open(ifName)
	if err != nil {
		return nil, err
	}

	defer func() {
		if cerr := src.Close(); cerr != nil {
			r.log.Debug().Err(cerr).Str("interface", ifName).Msg("Failed to close ethtool source")
		}
	}()

	raw, err := src.Stats()
	if err != nil {
		return nil, err
	}

	nic, err := Translate(raw)
	if err != nil {
		return nil, attribute(err, KindParse, ifName)
	}

	return nic, nil
}

// ReadStats polls every configured interface. Interfaces that fail are logged and
// left out of the snapshot; only context cancellation fails the whole read.
func (r *Reader) ReadStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{NIC: make(map[string]*NicStats, len(r.interfaces))}

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for _, ifName := range r.interfaces {
		if err := gctx.Err(); err != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			nic, err := r.ReadNicStats(ifName)
			if err != nil {
				r.log.Warn().Err(err).Str("interface", ifName).Msg("Failed to read ethtool statistics")

				return nil
			}

			mu.Lock()
			stats.NIC[ifName] = nic
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
