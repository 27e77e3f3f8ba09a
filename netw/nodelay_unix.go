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

//go:build linux || freebsd || openbsd || netbsd || aix || dragonfly || darwin
// +build linux freebsd openbsd netbsd aix dragonfly darwin

package netw

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// setNoDelay disables Nagle's algorithm on conn. eau2 messages are
// small and round-trip latency (get_and_wait) matters more than
// bandwidth efficiency, so every frame should hit the wire promptly.
func setNoDelay(conn *net.TCPConn) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var setErr error
	err = rc.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	})
	if err != nil {
		return err
	}
	if setErr != nil && setErr != syscall.ENOPROTOOPT {
		return setErr
	}
	return nil
}
