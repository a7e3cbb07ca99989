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

package sampler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/carverauto/nicstat/pkg/logger"
	"github.com/carverauto/nicstat/pkg/model"
)

var errSamplerNoContext = errors.New("sampler requires a context")

// CollectFunc produces one sample.
type CollectFunc func(context.Context) (*model.Sample, error)

// Sampler runs a CollectFunc on a fixed interval. It keeps the current and previous
// sample only and derives a fresh model.Model after every successful collection.
type Sampler struct {
	interval time.Duration
	timeout  time.Duration
	collect  CollectFunc
	onModel  func(*model.Model)
	log      logger.Logger

	ctxMu  sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.RWMutex
	current  *model.Sample
	previous *model.Sample
	latest   *model.Model
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithTimeout bounds a single collection. It defaults to the interval.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Sampler) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithOnModel registers a callback invoked with every derived model.
func WithOnModel(fn func(*model.Model)) Option {
	return func(s *Sampler) {
		s.onModel = fn
	}
}

func New(log logger.Logger, interval time.Duration, collect CollectFunc, opts ...Option) *Sampler {
	if log == nil {
		log = logger.NewTestLogger()
	}

	if interval <= 0 {
		interval = time.Second
	}

	s := &Sampler{
		interval: interval,
		timeout:  interval,
		collect:  collect,
		log:      log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the sampling loop. The first collection happens immediately. Calling
// Start on a running sampler is a no-op.
func (s *Sampler) Start(parent context.Context) error {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()

	if s.ctx != nil {
		return nil
	}

	if parent == nil {
		return errSamplerNoContext
	}

	ctx, cancel := context.WithCancel(parent)
	s.ctx = ctx
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)

	return nil
}

func (s *Sampler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.CollectOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CollectOnce runs a single collection and updates the model. Failed collections leave
// the previous state untouched.
func (s *Sampler) CollectOnce(parent context.Context) {
	if s.collect == nil {
		return
	}

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	sample, err := s.collect(ctx)
	if err != nil {
		if parent.Err() == nil {
			s.log.Warn().Err(err).Msg("Sample collection failed")
		}

		return
	}

	s.record(sample)
}

func (s *Sampler) record(sample *model.Sample) {
	if sample == nil {
		return
	}

	s.mu.Lock()
	s.previous = s.current
	s.current = sample
	m := model.New(s.current, s.previous)
	s.latest = m
	s.mu.Unlock()

	s.log.Debug().
		Int("interfaces", len(m.Ethtool.NIC)).
		Int("qdiscs", len(m.Tc.Tc)).
		Dur("elapsed", m.Elapsed).
		Msg("Derived rate model")

	if s.onModel != nil {
		s.onModel(m)
	}
}

// Latest returns the most recently derived model.
func (s *Sampler) Latest() (*model.Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, false
	}

	return s.latest, true
}

// Samples returns the current and previous samples.
func (s *Sampler) Samples() (current, previous *model.Sample) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, s.previous
}

func (s *Sampler) Running() bool {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()

	return s.ctx != nil
}

// Stop cancels the loop and waits for it to exit.
func (s *Sampler) Stop() {
	s.ctxMu.Lock()

	done := s.done

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.ctx = nil
		s.done = nil
	}

	s.ctxMu.Unlock()

	if done != nil {
		<-done
	}
}
