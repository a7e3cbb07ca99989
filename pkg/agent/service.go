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

// Package agent runs the nicstat sampler and serves its rates over HTTP.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carverauto/nicstat/pkg/ethtool"
	"github.com/carverauto/nicstat/pkg/exporter"
	"github.com/carverauto/nicstat/pkg/logger"
	"github.com/carverauto/nicstat/pkg/model"
	"github.com/carverauto/nicstat/pkg/sampler"
	"github.com/carverauto/nicstat/pkg/tc"
	"github.com/carverauto/nicstat/pkg/version"
)

const (
	metricsPath       = "/metrics"
	healthPath        = "/healthz"
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var errNilConfig = errors.New("agent config is nil")

// Service wires the readers, sampler and exporter behind an HTTP listener.
type Service struct {
	cfg      *Config
	log      logger.Logger
	ethtool  sampler.EthtoolSource
	tc       sampler.TcSource
	links    sampler.LinkSource
	sampler  *sampler.Sampler
	registry *prometheus.Registry
	server   *http.Server

	mu   sync.RWMutex
	addr net.Addr
}

// Option configures a Service.
type Option func(*Service)

// WithEthtoolSource replaces the ioctl backed ethtool reader.
func WithEthtoolSource(src sampler.EthtoolSource) Option {
	return func(s *Service) {
		s.ethtool = src
	}
}

// WithTcSource replaces the netlink backed qdisc reader.
func WithTcSource(src sampler.TcSource) Option {
	return func(s *Service) {
		s.tc = src
	}
}

// WithLinkSource replaces the interface index lookup.
func WithLinkSource(src sampler.LinkSource) Option {
	return func(s *Service) {
		s.links = src
	}
}

// NewService normalizes and validates cfg and builds the service.
func NewService(log logger.Logger, cfg *Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}

	s := &Service{
		cfg: cfg,
		log: log,
		ethtool: ethtool.NewReader(log, cfg.Interfaces,
			ethtool.WithParallelism(cfg.Parallelism)),
		tc: tc.NewReader(log,
			tc.WithRecvBufferSize(cfg.RecvBufferSize),
			tc.WithRecvTimeout(time.Duration(cfg.NetlinkTimeout))),
	}

	for _, opt := range opts {
		opt(s)
	}

	var collectorOpts []sampler.CollectorOption
	if s.links != nil {
		collectorOpts = append(collectorOpts, sampler.WithLinkSource(s.links))
	}

	collector := sampler.NewCollector(log, s.ethtool, s.tc, collectorOpts...)
	s.sampler = sampler.New(log, cfg.Interval(), collector.Collect, sampler.WithOnModel(s.onModel))

	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		exporter.New(s.sampler.Latest),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc(healthPath, s.handleHealth)

	s.server = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

func (s *Service) onModel(m *model.Model) {
	for name, diff := range m.Ethtool.Diffs {
		if diff == model.DiffMissingInCurrent {
			s.log.Warn().Str("interface", name).Msg("Interface missing from latest sample")
		}
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.sampler.Running() {
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusOK)
}

// Handler returns the HTTP handler serving metrics and health.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

// Sampler exposes the underlying sampler.
func (s *Service) Sampler() *sampler.Sampler {
	return s.sampler
}

// Addr returns the bound listen address once Run is serving, or nil.
func (s *Service) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.addr
}

// Run starts sampling and serves metrics until ctx is canceled, then shuts the HTTP
// server down gracefully.
func (s *Service) Run(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}

	if err := s.sampler.Start(ctx); err != nil {
		_ = ln.Close()

		return fmt.Errorf("failed to start sampler: %w", err)
	}
	defer s.sampler.Stop()

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.server.Serve(ln)
	}()

	s.log.Info().
		Str("version", version.GetFullVersion()).
		Str("listen_addr", ln.Addr().String()).
		Strs("interfaces", s.cfg.Interfaces).
		Dur("sample_interval", s.cfg.Interval()).
		Msg("nicstat agent started")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}

	s.log.Info().Msg("nicstat agent stopped")

	return nil
}
