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
	"context"
	"time"

	"github.com/carverauto/nicstat/pkg/logger"
)

// DefaultRecvTimeout bounds each receive on the rtnetlink socket unless overridden.
const DefaultRecvTimeout = 5 * time.Second

// Reader takes tc snapshots, opening a fresh netlink connection for every dump.
type Reader struct {
	dial        DialFunc
	recvTimeout time.Duration
	bufSize     int
	log         logger.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithDialer replaces the rtnetlink socket factory.
func WithDialer(dial DialFunc) ReaderOption {
	return func(r *Reader) {
		if dial != nil {
			r.dial = dial
		}
	}
}

// WithRecvTimeout bounds each receive on the default rtnetlink socket. Zero disables
// the bound. It has no effect together with WithDialer.
func WithRecvTimeout(timeout time.Duration) ReaderOption {
	return func(r *Reader) {
		if timeout >= 0 {
			r.recvTimeout = timeout
		}
	}
}

// WithRecvBufferSize sets the size of the datagram receive buffer.
func WithRecvBufferSize(size int) ReaderOption {
	return func(r *Reader) {
		if size > 0 {
			r.bufSize = size
		}
	}
}

func NewReader(log logger.Logger, opts ...ReaderOption) *Reader {
	if log == nil {
		log = logger.NewTestLogger()
	}

	r := &Reader{
		recvTimeout: DefaultRecvTimeout,
		bufSize:     DefaultRecvBufferSize,
		log:         log,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.dial == nil {
		timeout := r.recvTimeout
		r.dial = func() (Conn, error) { return DialTimeout(timeout) }
	}

	return r
}

// ReadStats dumps and translates every qdisc on the host. Records that decode only
// partially are logged and kept.
func (r *Reader) ReadStats(ctx context.Context) (TcStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := r.dial()
	if err != nil {
		return nil, err
	}

	defer func() {
		if cerr := conn.Close(); cerr != nil {
			r.log.Debug().Err(cerr).Msg("Failed to close netlink connection")
		}
	}()

	msgs, err := Dump(conn, r.bufSize)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats, err := Translate(msgs)
	if err != nil {
		r.log.Warn().Err(err).Int("records", len(msgs)).Msg("Partially decoded tc records")
	}

	r.log.Debug().Int("qdiscs", len(msgs)).Int("interfaces", len(stats)).Msg("Read tc statistics")

	return stats, nil
}
