// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

//go:build !linux && !freebsd && !openbsd && !netbsd && !aix && !dragonfly && !darwin
// +build !linux,!freebsd,!openbsd,!netbsd,!aix,!dragonfly,!darwin

package netw

import "net"

// setNoDelay is a no-op on platforms without golang.org/x/sys/unix
// socket-option support; net.TCPConn already defaults to TCP_NODELAY
// disabled-by-Nagle behavior that is merely suboptimal, not incorrect.
func setNoDelay(conn *net.TCPConn) error {
	return nil
}
