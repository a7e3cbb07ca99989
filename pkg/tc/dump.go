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
	"errors"
	"syscall"

	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
)

const (
	// DefaultRecvBufferSize is the receive buffer used when the caller passes zero.
	DefaultRecvBufferSize = 32 * 1024
	// MinRecvBufferSize is the smallest buffer able to hold a typical qdisc record.
	MinRecvBufferSize = 4 * 1024
)

type dumpState int

const (
	stateAwaitingData dumpState = iota
	stateParsing
	stateDone
	stateFailed
)

func (s dumpState) String() string {
	switch s {
	case stateAwaitingData:
		return "awaiting data"
	case stateParsing:
		return "parsing"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// dumpReader walks a multipart rtnetlink reply that may span several datagrams. The
// receive buffer is reused for every datagram, so accumulated messages own copies.
type dumpReader struct {
	conn     Conn
	buf      []byte
	size     int
	offset   int
	state    dumpState
	messages []Message
	err      error
}

func newDumpReader(conn Conn, bufSize int) *dumpReader {
	return &dumpReader{
		conn:  conn,
		buf:   make([]byte, bufSize),
		state: stateAwaitingData,
	}
}

// Dump sends an RTM_GETQDISC dump request and collects every RTM_NEWQDISC record up to
// NLMSG_DONE. An NLMSG_ERROR reply discards whatever was collected.
func Dump(conn Conn, bufSize int) ([]Message, error) {
	if bufSize <= 0 {
		bufSize = DefaultRecvBufferSize
	}

	if bufSize < MinRecvBufferSize {
		bufSize = MinRecvBufferSize
	}

	req, err := newDumpRequest()
	if err != nil {
		return nil, &Error{Op: OpSend, Msg: err.Error(), cause: err}
	}

	if err := conn.Send(req); err != nil {
		return nil, asError(OpSend, err)
	}

	return newDumpReader(conn, bufSize).run()
}

func (r *dumpReader) run() ([]Message, error) {
	for {
		switch r.state {
		case stateAwaitingData:
			r.fill()
		case stateParsing:
			r.parseNext()
		case stateDone:
			return r.messages, nil
		case stateFailed:
			return nil, r.err
		}
	}
}

func (r *dumpReader) fill() {
	n, err := r.conn.Recv(r.buf)
	if err != nil {
		r.fail(asError(OpRecv, err))

		return
	}

	if n <= 0 {
		r.fail(decodeError("socket returned no data before NLMSG_DONE"))

		return
	}

	if n > len(r.buf) {
		n = len(r.buf)
	}

	r.size = n
	r.offset = 0
	r.state = stateParsing
}

func (r *dumpReader) parseNext() {
	rest := r.buf[r.offset:r.size]

	if len(rest) < 4 {
		r.fail(decodeError("%d trailing bytes cannot hold a message header", len(rest)))

		return
	}

	length := int(nlenc.Uint32(rest[0:4]))
	if length == 0 {
		r.awaitData()

		return
	}

	if length < nlmsgHeaderLen || length > len(rest) {
		r.fail(decodeError("message length %d invalid with %d bytes remaining", length, len(rest)))

		return
	}

	typ := netlink.HeaderType(nlenc.Uint16(rest[4:6]))
	payload := rest[nlmsgHeaderLen:length]

	switch typ {
	case netlink.Error:
		if len(payload) < 4 {
			r.fail(decodeError("error message payload is %d bytes", len(payload)))

			return
		}

		if code := nlenc.Int32(payload[0:4]); code != 0 {
			r.fail(kernelError(code))

			return
		}
	case netlink.Done:
		if len(payload) >= 4 {
			if code := nlenc.Int32(payload[0:4]); code != 0 {
				r.fail(kernelError(code))

				return
			}
		}

		r.state = stateDone

		return
	case rtmNewQdisc:
		msg, err := decodeMessage(payload)
		if err != nil {
			r.fail(err)

			return
		}

		r.messages = append(r.messages, msg)
	}

	r.offset += nlmsgAlign(length)
	if r.offset >= r.size {
		r.awaitData()
	}
}

func (r *dumpReader) awaitData() {
	r.offset = 0
	r.size = 0
	r.state = stateAwaitingData
}

func (r *dumpReader) fail(err error) {
	r.messages = nil
	r.err = err
	r.state = stateFailed
}

func kernelError(code int32) *Error {
	if code < 0 {
		code = -code
	}

	return &Error{Op: OpKernel, Code: int(code), Msg: syscall.Errno(code).Error()}
}

func asError(op Op, err error) error {
	var te *Error
	if errors.As(err, &te) {
		return err
	}

	return &Error{Op: op, Msg: err.Error(), cause: err}
}
