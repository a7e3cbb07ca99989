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

//go:generate mockgen -destination=mock_transport.go -package=ethtool github.com/carverauto/nicstat/pkg/ethtool Transport

package ethtool

// Transport issues SIOCETHTOOL requests against a named interface. The payload is a
// complete ethtool command buffer; on success the kernel has rewritten it in place.
// A Transport owns one socket and is not safe for concurrent use.
type Transport interface {
	Ioctl(ifName string, payload []byte) error
	Close() error
}
