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

//go:generate mockgen -destination=mock_conn.go -package=tc github.com/carverauto/nicstat/pkg/tc Conn

package tc

// Conn is a connected NETLINK_ROUTE socket. Recv returns one datagram per call and a
// Conn is not safe for concurrent use.
type Conn interface {
	Send(b []byte) error
	Recv(b []byte) (int, error)
	Close() error
}

// DialFunc opens a Conn.
type DialFunc func() (Conn, error)
