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
	"sync/atomic"

	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
)

const (
	rtmNewQdisc netlink.HeaderType = 36
	rtmGetQdisc netlink.HeaderType = 38

	nlmsgHeaderLen = 16
	nlmsgAlignTo   = 4
	tcmsgLen       = 20

	// TcHRoot is the parent handle of a root qdisc (TC_H_ROOT).
	TcHRoot uint32 = 0xFFFFFFFF
)

var sequence atomic.Uint32

// Header is the fixed tcmsg that precedes a qdisc's attributes.
type Header struct {
	Family uint8  `json:"family"`
	Index  uint32 `json:"index"`
	Handle uint32 `json:"handle"`
	Parent uint32 `json:"parent"`
	Info   uint32 `json:"info"`
}

// Message is one RTM_NEWQDISC record. Attributes holds the raw TLV stream that follows
// the header and is owned by the Message.
type Message struct {
	Header     Header
	Attributes []byte
}

func newDumpRequest() ([]byte, error) {
	msg := netlink.Message{
		Header: netlink.Header{
			Length:   nlmsgHeaderLen + tcmsgLen,
			Type:     rtmGetQdisc,
			Flags:    netlink.Request | netlink.Dump,
			Sequence: sequence.Add(1),
		},
		Data: make([]byte, tcmsgLen),
	}

	return msg.MarshalBinary()
}

func decodeMessage(payload []byte) (Message, error) {
	if len(payload) < tcmsgLen {
		return Message{}, decodeError("qdisc payload is %d bytes, shorter than tcmsg", len(payload))
	}

	attrs := make([]byte, len(payload)-tcmsgLen)
	copy(attrs, payload[tcmsgLen:])

	return Message{
		Header: Header{
			Family: payload[0],
			Index:  nlenc.Uint32(payload[4:8]),
			Handle: nlenc.Uint32(payload[8:12]),
			Parent: nlenc.Uint32(payload[12:16]),
			Info:   nlenc.Uint32(payload[16:20]),
		},
		Attributes: attrs,
	}, nil
}

func nlmsgAlign(n int) int {
	return (n + nlmsgAlignTo - 1) &^ (nlmsgAlignTo - 1)
}
