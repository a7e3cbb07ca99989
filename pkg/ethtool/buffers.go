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

// Package ethtool reads NIC driver statistics through the SIOCETHTOOL ioctl, the
// mechanism behind `ethtool -S`.
//
// Kernel request records are never overlaid on Go structs. Each one is an explicit
// byte buffer with documented offsets; fields are written and read in host byte order,
// which is little-endian on every platform this package builds for.
package ethtool

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

const (
	cmdGSSetInfo uint32 = 0x37
	cmdGStrings  uint32 = 0x1b
	cmdGStats    uint32 = 0x1d

	// stringSetStats is ETH_SS_STATS.
	stringSetStats uint32 = 1

	// GStringLen is the fixed width of one statistic name slot.
	GStringLen = 32
	// IfNameSize is IFNAMSIZ. It includes the NUL terminator, so names are at most 15 bytes.
	IfNameSize = 16
	// MaxGStrings bounds the number of statistics a single query may return.
	MaxGStrings = 8192

	statValueLen = 8
)

// ifreq: name [0,16), data pointer [16,24); the kernel record is padded to 40 bytes.
const (
	ifreqSize       = 40
	ifreqDataOffset = IfNameSize
)

// ethtool_sset_info: cmd u32 @0, reserved u32 @4, sset_mask u64 @8, data[0] u32 @16.
const (
	ssetInfoSize       = 24
	ssetInfoMaskOffset = 8
	ssetInfoDataOffset = 16
)

// ethtool_gstrings: cmd u32 @0, string_set u32 @4, len u32 @8, data @12.
const (
	gstringsLenOffset  = 8
	gstringsDataOffset = 12
	gstringsBufferSize = gstringsDataOffset + MaxGStrings*GStringLen
)

// ethtool_stats: cmd u32 @0, n_stats u32 @4, data @8.
const (
	gstatsDataOffset = 8
	gstatsBufferSize = gstatsDataOffset + MaxGStrings*statValueLen
)

var hostOrder = binary.NativeEndian

func encodeIfreq(ifName string, data uintptr) ([ifreqSize]byte, error) {
	var req [ifreqSize]byte

	if ifName == "" || len(ifName) >= IfNameSize {
		return req, ErrInterfaceName
	}

	copy(req[:IfNameSize], ifName)
	hostOrder.PutUint64(req[ifreqDataOffset:ifreqDataOffset+8], uint64(data))

	return req, nil
}

func newStringSetInfoRequest() []byte {
	buf := make([]byte, ssetInfoSize)
	hostOrder.PutUint32(buf[0:4], cmdGSSetInfo)
	hostOrder.PutUint64(buf[ssetInfoMaskOffset:ssetInfoMaskOffset+8], 1<<stringSetStats)

	return buf
}

// decodeStringSetInfo returns the number of stats strings and whether the kernel kept
// the stats bit in the returned mask.
func decodeStringSetInfo(buf []byte) (count uint32, supported bool, err error) {
	if len(buf) < ssetInfoSize {
		return 0, false, parseError("string set info buffer is %d bytes, want %d", len(buf), ssetInfoSize)
	}

	mask := hostOrder.Uint64(buf[ssetInfoMaskOffset : ssetInfoMaskOffset+8])
	if mask&(1<<stringSetStats) == 0 {
		return 0, false, nil
	}

	return hostOrder.Uint32(buf[ssetInfoDataOffset : ssetInfoDataOffset+4]), true, nil
}

func newStringsRequest(count uint32) ([]byte, error) {
	if count > MaxGStrings {
		return nil, parseError("%d statistics exceed the %d name slots", count, MaxGStrings)
	}

	buf := make([]byte, gstringsBufferSize)
	hostOrder.PutUint32(buf[0:4], cmdGStrings)
	hostOrder.PutUint32(buf[4:8], stringSetStats)
	hostOrder.PutUint32(buf[gstringsLenOffset:gstringsLenOffset+4], count)

	return buf, nil
}

func newStatsRequest(count uint32) ([]byte, error) {
	if count > MaxGStrings {
		return nil, parseError("%d statistics exceed the %d value slots", count, MaxGStrings)
	}

	buf := make([]byte, gstatsBufferSize)
	hostOrder.PutUint32(buf[0:4], cmdGStats)
	hostOrder.PutUint32(buf[4:8], count)

	return buf, nil
}

// parseNames splits the GSTRINGS payload into length NUL-terminated names.
func parseNames(data []byte, length int) ([]string, error) {
	names := make([]string, 0, length)

	for i := 0; i < length; i++ {
		start := i * GStringLen
		end := start + GStringLen

		if end > len(data) {
			return nil, parseError("stat name %d out of bounds at offset %d", i, start)
		}

		slot := data[start:end]

		nul := bytes.IndexByte(slot, 0)
		if nul < 0 {
			return nil, parseError("stat name %d has no NUL terminator", i)
		}

		if !utf8.Valid(slot[:nul]) {
			return nil, parseError("stat name %d is not valid UTF-8", i)
		}

		names = append(names, string(slot[:nul]))
	}

	return names, nil
}

// parseValues reads length host-order u64 counters from the GSTATS payload.
func parseValues(data []byte, length int) ([]uint64, error) {
	values := make([]uint64, 0, length)

	for i := 0; i < length; i++ {
		offset := i * statValueLen

		if offset+statValueLen > len(data) {
			return nil, parseError("stat value %d out of bounds at offset %d", i, offset)
		}

		values = append(values, hostOrder.Uint64(data[offset:offset+statValueLen]))
	}

	return values, nil
}
