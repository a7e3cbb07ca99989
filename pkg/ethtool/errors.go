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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSocket is returned when the control socket cannot be opened.
	ErrSocket = errors.New("ethtool socket failed")
	// ErrIoctl is the transport-level failure before it is attributed to a protocol step.
	ErrIoctl = errors.New("ethtool ioctl failed")
	// ErrStringSetInfo marks a failed ETHTOOL_GSSET_INFO query. Callers use it to tell
	// "driver has no stats" apart from parse failures further down.
	ErrStringSetInfo = errors.New("ethtool string set info query failed")
	// ErrStrings marks a failed ETHTOOL_GSTRINGS query.
	ErrStrings = errors.New("ethtool strings query failed")
	// ErrStats marks a failed ETHTOOL_GSTATS query.
	ErrStats = errors.New("ethtool stats query failed")
	// ErrParse marks a malformed kernel buffer or statistic name.
	ErrParse = errors.New("ethtool parse failed")

	ErrStringSetUnsupported = errors.New("driver does not expose the stats string set")
	ErrInterfaceName        = errors.New("invalid interface name")
	ErrUnsupportedPlatform  = errors.New("ethtool ioctl is only available on linux")

	errEmptyPayload = errors.New("ioctl payload is empty")
)

// Kind classifies an ethtool failure.
type Kind int

const (
	KindSocket Kind = iota + 1
	KindIoctl
	KindStringSetInfo
	KindStrings
	KindStats
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindSocket:
		return "socket"
	case KindIoctl:
		return "ioctl"
	case KindStringSetInfo:
		return "string set info"
	case KindStrings:
		return "strings"
	case KindStats:
		return "stats"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindSocket:
		return ErrSocket
	case KindIoctl:
		return ErrIoctl
	case KindStringSetInfo:
		return ErrStringSetInfo
	case KindStrings:
		return ErrStrings
	case KindStats:
		return ErrStats
	default:
		return ErrParse
	}
}

// Error is the typed failure returned by every ethtool operation. Code carries the
// kernel errno for kernel-call failures and is zero for parse failures.
type Error struct {
	Kind      Kind
	Interface string
	Code      int
	Msg       string

	cause error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("ethtool")

	if e.Interface != "" {
		b.WriteString(" ")
		b.WriteString(e.Interface)
	}

	fmt.Fprintf(&b, ": %s: %s", e.Kind, e.Msg)

	if e.Code != 0 {
		fmt.Fprintf(&b, " (errno %d)", e.Code)
	}

	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind.sentinel(), e.cause}
	}

	return []error{e.Kind.sentinel()}
}

// NotSupported reports whether the driver rejected the request as unsupported.
func (e *Error) NotSupported() bool {
	return e.Code == errnoNotSupported || errors.Is(e.cause, ErrStringSetUnsupported)
}

func parseError(format string, args ...any) *Error {
	return &Error{Kind: KindParse, Msg: fmt.Sprintf(format, args...)}
}

// attribute re-labels a transport failure with the protocol step it happened in.
func attribute(err error, kind Kind, ifName string) error {
	var ee *Error
	if errors.As(err, &ee) {
		return &Error{Kind: kind, Interface: ifName, Code: ee.Code, Msg: ee.Msg, cause: ee.cause}
	}

	return &Error{Kind: kind, Interface: ifName, Msg: err.Error(), cause: err}
}
