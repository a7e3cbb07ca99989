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
	"fmt"
	"strings"
)

var (
	// ErrNetlink is the root of every failure talking to rtnetlink.
	ErrNetlink = errors.New("tc netlink request failed")
	// ErrAttribute marks a qdisc record whose attributes could not be fully decoded.
	ErrAttribute = errors.New("tc attribute malformed")

	ErrUnsupportedPlatform = errors.New("rtnetlink is only available on linux")
)

// Op names the netlink step that failed.
type Op string

const (
	OpSocket  Op = "socket"
	OpConnect Op = "connect"
	OpSend    Op = "send"
	OpRecv    Op = "recv"
	OpDecode  Op = "decode"
	OpKernel  Op = "kernel"
)

// Error is a netlink transport or protocol failure. Code carries the errno reported by
// the socket call or by an NLMSG_ERROR payload, zero otherwise.
type Error struct {
	Op   Op
	Code int
	Msg  string

	cause error
}

func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "tc netlink %s: %s", e.Op, e.Msg)

	if e.Code != 0 {
		fmt.Fprintf(&b, " (errno %d)", e.Code)
	}

	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrNetlink, e.cause}
	}

	return []error{ErrNetlink}
}

func decodeError(format string, args ...any) *Error {
	return &Error{Op: OpDecode, Msg: fmt.Sprintf(format, args...)}
}

// attributeError reports a partially decoded record.
func attributeError(index uint32, what string, err error) error {
	return fmt.Errorf("%w: ifindex %d %s: %w", ErrAttribute, index, what, err)
}
