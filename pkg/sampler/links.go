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
	"fmt"

	"github.com/shirou/gopsutil/v3/net"
)

var interfacesWithContext = net.InterfacesWithContext

// InterfaceNames maps every host interface index to its name.
func InterfaceNames(ctx context.Context) (map[uint32]string, error) {
	ifaces, err := interfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	names := make(map[uint32]string, len(ifaces))

	for _, iface := range ifaces {
		if iface.Index < 0 {
			continue
		}

		names[uint32(iface.Index)] = iface.Name
	}

	return names, nil
}
