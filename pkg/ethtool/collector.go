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

// Stat is one named driver counter as reported by the kernel.
type Stat struct {
	Name  string
	Value uint64
}

// Collector runs the GSSET_INFO -> GSTRINGS -> GSTATS sequence against one interface.
// It owns a single socket for its lifetime and must not be shared between goroutines.
type Collector struct {
	ifName    string
	transport Transport
}

// NewCollector opens an AF_INET datagram socket for ifName.
func NewCollector(ifName string) (*Collector, error) {
	if ifName == "" || len(ifName) >= IfNameSize {
		return nil, &Error{Kind: KindSocket, Interface: ifName, Msg: ErrInterfaceName.Error(), cause: ErrInterfaceName}
	}

	transport, err := newSocketTransport()
	if err != nil {
		return nil, attribute(err, KindSocket, ifName)
	}

	return NewCollectorWithTransport(ifName, transport), nil
}

// NewCollectorWithTransport builds a collector over an existing transport.
func NewCollectorWithTransport(ifName string, transport Transport) *Collector {
	return &Collector{
		ifName:    ifName,
		transport: transport,
	}
}

// Interface returns the interface name the collector is bound to.
func (c *Collector) Interface() string {
	return c.ifName
}

// Stats returns the driver counters in kernel order, equivalent to `ethtool -S`.
func (c *Collector) Stats() ([]Stat, error) {
	count, err := c.stringSetInfo()
	if err != nil {
		return nil, err
	}

	if count == 0 {
		return []Stat{}, nil
	}

	names, err := c.names(count)
	if err != nil {
		return nil, err
	}

	values, err := c.values(count)
	if err != nil {
		return nil, err
	}

	stats := make([]Stat, len(names))
	for i, name := range names {
		stats[i] = Stat{Name: name, Value: values[i]}
	}

	return stats, nil
}

// Close releases the collector's socket.
func (c *Collector) Close() error {
	return c.transport.Close()
}

func (c *Collector) stringSetInfo() (uint32, error) {
	req := newStringSetInfoRequest()

	if err := c.transport.Ioctl(c.ifName, req); err != nil {
		return 0, attribute(err, KindStringSetInfo, c.ifName)
	}

	count, supported, err := decodeStringSetInfo(req)
	if err != nil {
		return 0, attribute(err, KindParse, c.ifName)
	}

	if !supported {
		return 0, &Error{
			Kind:      KindStringSetInfo,
			Interface: c.ifName,
			Msg:       ErrStringSetUnsupported.Error(),
			cause:     ErrStringSetUnsupported,
		}
	}

	return count, nil
}

func (c *Collector) names(count uint32) ([]string, error) {
	req, err := newStringsRequest(count)
	if err != nil {
		return nil, attribute(err, KindParse, c.ifName)
	}

	if err := c.transport.Ioctl(c.ifName, req); err != nil {
		return nil, attribute(err, KindStrings, c.ifName)
	}

	names, err := parseNames(req[gstringsDataOffset:], int(count))
	if err != nil {
		return nil, attribute(err, KindParse, c.ifName)
	}

	return names, nil
}

func (c *Collector) values(count uint32) ([]uint64, error) {
	req, err := newStatsRequest(count)
	if err != nil {
		return nil, attribute(err, KindParse, c.ifName)
	}

	if err := c.transport.Ioctl(c.ifName, req); err != nil {
		return nil, attribute(err, KindStats, c.ifName)
	}

	values, err := parseValues(req[gstatsDataOffset:], int(count))
	if err != nil {
		return nil, attribute(err, KindParse, c.ifName)
	}

	return values, nil
}
