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

package netw

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/SnellerInc/sneller/message"
)

// frameLenSize is the width, in bytes, of the length prefix that
// precedes every message on the wire: a single machine word, per
// spec.md §6's "[total_length: machine word][payload]" framing.
const frameLenSize = 8

// TCP is the IP-based Network implementation. Node 0 acts as the
// rendezvous: non-zero nodes dial it and Register; node 0
// accumulates registrations and broadcasts a Directory once every
// node has checked in. Thereafter Send opens a short-lived
// connection per message and Receive blocks on accept.
type TCP struct {
	index          int
	self           string
	rendezvousAddr string
	numNodes       int

	listener net.Listener
	incoming chan message.Message

	mu    sync.Mutex
	peers map[int]string
}

// NewTCP returns a TCP network for a cluster of numNodes nodes.
// self is the "host:port" this node listens on; rendezvousAddr is
// node 0's "host:port" (ignored when index == 0).
func NewTCP(self string, numNodes int, rendezvousAddr string) *TCP {
	return &TCP{
		self:           self,
		rendezvousAddr: rendezvousAddr,
		numNodes:       numNodes,
		incoming:       make(chan message.Message, 64),
		peers:          make(map[int]string),
	}
}

func (t *TCP) Index() int { return t.index }
func (t *TCP) Size() int  { return t.numNodes }

// Register starts listening on t.self and performs cluster
// bring-up: node 0 waits for a Register from every other node and
// then broadcasts a Directory; non-zero nodes Register with node 0
// and wait for that Directory.
func (t *TCP) Register(index int) error {
	t.index = index
	ln, err := net.Listen("tcp", t.self)
	if err != nil {
		return fmt.Errorf("netw.TCP: listen on %s: %w", t.self, err)
	}
	t.listener = ln
	go t.acceptLoop()

	t.mu.Lock()
	t.peers[index] = t.self
	t.mu.Unlock()

	if index == 0 {
		return t.waitForRegistrations()
	}
	return t.registerWithRendezvous()
}

func (t *TCP) acceptLoop() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			return // listener closed; Close() tore this down
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			if err := setNoDelay(tc); err != nil {
				log.Printf("netw.TCP: setNoDelay: %v", err)
			}
		}
		go t.handleConn(conn)
	}
}

func (t *TCP) handleConn(conn net.Conn) {
	defer conn.Close()
	payload, err := readFrame(conn)
	if err != nil {
		if err != io.EOF {
			log.Printf("netw.TCP: reading frame: %v", err)
		}
		return
	}
	t.incoming <- message.Decode(payload)
}

func (t *TCP) waitForRegistrations() error {
	for {
		t.mu.Lock()
		have := len(t.peers)
		t.mu.Unlock()
		if have >= t.numNodes {
			break
		}
		msg := <-t.incoming
		reg, ok := msg.(*message.Register)
		if !ok {
			continue // bring-up ignores stray kinds, per spec.md §4.6
		}
		t.mu.Lock()
		t.peers[reg.Hdr.Sender] = fmt.Sprintf("%s:%d", reg.Address, reg.Port)
		t.mu.Unlock()
	}

	t.mu.Lock()
	addrs := make([]string, t.numNodes)
	for i := 0; i < t.numNodes; i++ {
		addrs[i] = t.peers[i]
	}
	t.mu.Unlock()

	for idx := 1; idx < t.numNodes; idx++ {
		dir := message.NewDirectory(0, idx, addrs, make([]int, len(addrs)))
		if err := dialAndSend(addrs[idx], dir); err != nil {
			return fmt.Errorf("netw.TCP: broadcasting directory to node %d: %w", idx, err)
		}
	}
	return nil
}

func (t *TCP) registerWithRendezvous() error {
	host, portStr, err := net.SplitHostPort(t.self)
	if err != nil {
		return fmt.Errorf("netw.TCP: parsing self address %q: %w", t.self, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("netw.TCP: parsing self port %q: %w", portStr, err)
	}
	reg := message.NewRegister(t.index, host, port)
	if err := dialAndSend(t.rendezvousAddr, reg); err != nil {
		return fmt.Errorf("netw.TCP: registering with rendezvous %s: %w", t.rendezvousAddr, err)
	}

	for {
		msg := <-t.incoming
		dir, ok := msg.(*message.Directory)
		if !ok {
			continue
		}
		t.mu.Lock()
		for i, a := range dir.Addresses {
			t.peers[i] = a
		}
		t.mu.Unlock()
		return nil
	}
}

// Send opens a short-lived connection to the target and transmits
// a single length-prefixed frame. Each call is an independent
// connection; callers must not rely on cross-link ordering, per
// spec.md §5. The receiver reads each connection on its own
// goroutine, so two messages sent to the same target may also
// arrive out of send order.
func (t *TCP) Send(msg message.Message) error {
	t.mu.Lock()
	addr, ok := t.peers[msg.Header().Target]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("netw.TCP: unknown node %d", msg.Header().Target)
	}
	return dialAndSend(addr, msg)
}

func dialAndSend(addr string, msg message.Message) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := setNoDelay(tc); err != nil {
			log.Printf("netw.TCP: setNoDelay: %v", err)
		}
	}
	return writeFrame(conn, message.Encode(msg))
}

func (t *TCP) Receive() (message.Message, error) {
	msg, ok := <-t.incoming
	if !ok {
		return nil, errClosed
	}
	return msg, nil
}

func (t *TCP) Close() error {
	close(t.incoming)
	return t.listener.Close()
}

func writeFrame(w io.Writer, payload []byte) error {
	var hdr [frameLenSize]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var hdr [frameLenSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint64(hdr[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// resolveSelf turns an IP and a port into the "host:port" string TCP
// expects, bracketing IPv6 literals.
func resolveSelf(ip string, port int) string {
	if strings.Contains(ip, ":") {
		return fmt.Sprintf("[%s]:%d", ip, port)
	}
	return fmt.Sprintf("%s:%d", ip, port)
}

// ResolveAddr exposes resolveSelf for callers outside this package.
func ResolveAddr(ip string, port int) string { return resolveSelf(ip, port) }
