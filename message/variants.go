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

package message

import (
	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/wire"
)

// Status is a diagnostic-only message.
type Status struct {
	Hdr  Header
	Text string
}

func NewStatus(sender, target int, text string) *Status {
	return &Status{Hdr: NewHeader(KindStatus, sender, target), Text: text}
}
func (s *Status) Header() Header { return s.Hdr }
func (s *Status) Encode(buf *wire.Buffer) {
	s.Hdr.encode(buf)
	buf.PutString(s.Text)
}
func decodeStatus(c *wire.Cursor) *Status {
	return &Status{Hdr: decodeHeader(c), Text: c.ReadString()}
}

// Register is sent by a new node announcing itself to node 0
// during bring-up.
type Register struct {
	Hdr     Header
	Address string
	Port    int
}

func NewRegister(sender int, address string, port int) *Register {
	return &Register{Hdr: NewHeader(KindRegister, sender, 0), Address: address, Port: port}
}
func (r *Register) Header() Header { return r.Hdr }
func (r *Register) Encode(buf *wire.Buffer) {
	r.Hdr.encode(buf)
	buf.PutString(r.Address)
	buf.PutUword(wire.Word(r.Port))
}
func decodeRegister(c *wire.Cursor) *Register {
	hdr := decodeHeader(c)
	addr := c.ReadString()
	port := int(c.ReadUword())
	return &Register{Hdr: hdr, Address: addr, Port: port}
}

// Directory is node 0's broadcast of the full cluster roster,
// sent to every non-zero node once bring-up is complete.
type Directory struct {
	Hdr       Header
	Addresses []string
	Ports     []int
}

func NewDirectory(sender, target int, addrs []string, ports []int) *Directory {
	return &Directory{Hdr: NewHeader(KindDirectory, sender, target), Addresses: addrs, Ports: ports}
}
func (d *Directory) Header() Header { return d.Hdr }
func (d *Directory) Encode(buf *wire.Buffer) {
	d.Hdr.encode(buf)
	buf.PutUword(wire.Word(len(d.Addresses)))
	for i := range d.Addresses {
		buf.PutString(d.Addresses[i])
		buf.PutUword(wire.Word(d.Ports[i]))
	}
}
func decodeDirectory(c *wire.Cursor) *Directory {
	hdr := decodeHeader(c)
	n := int(c.ReadUword())
	addrs := make([]string, n)
	ports := make([]int, n)
	for i := 0; i < n; i++ {
		addrs[i] = c.ReadString()
		ports[i] = int(c.ReadUword())
	}
	return &Directory{Hdr: hdr, Addresses: addrs, Ports: ports}
}

// Get requests the value for Key from its home node.
type Get struct {
	Hdr Header
	Key kv.Key
}

func NewGet(sender, target int, key kv.Key) *Get {
	return &Get{Hdr: NewHeader(KindGet, sender, target), Key: key}
}
func (g *Get) Header() Header { return g.Hdr }
func (g *Get) Encode(buf *wire.Buffer) {
	g.Hdr.encode(buf)
	g.Key.Encode(buf)
}
func decodeGet(c *wire.Cursor) *Get {
	hdr := decodeHeader(c)
	return &Get{Hdr: hdr, Key: kv.DecodeKey(c)}
}

// Put requests that Key be bound to Value on its home node.
type Put struct {
	Hdr   Header
	Key   kv.Key
	Value kv.Value
}

func NewPut(sender, target int, key kv.Key, value kv.Value) *Put {
	return &Put{Hdr: NewHeader(KindPut, sender, target), Key: key, Value: value}
}
func (p *Put) Header() Header { return p.Hdr }
func (p *Put) Encode(buf *wire.Buffer) {
	p.Hdr.encode(buf)
	p.Key.Encode(buf)
	buf.PutUword(wire.Word(p.Value.Len()))
	buf.PutRawBytes(p.Value.Bytes())
}
func decodePut(c *wire.Cursor) *Put {
	hdr := decodeHeader(c)
	key := kv.DecodeKey(c)
	n := int(c.ReadUword())
	val := kv.NewValue(c.ReadRawBytes(n))
	return &Put{Hdr: hdr, Key: key, Value: val}
}

// Reply answers a Get with the requested Value.
type Reply struct {
	Hdr   Header
	Key   kv.Key
	Value kv.Value
}

// NewReply builds a Reply correlated to req by reusing its id,
// with sender/target swapped so it routes back to the requester.
func NewReply(req *Get, value kv.Value) *Reply {
	hdr := Header{Kind: KindReply, Sender: req.Hdr.Target, Target: req.Hdr.Sender, ID: req.Hdr.ID}
	return &Reply{Hdr: hdr, Key: req.Key, Value: value}
}
func (r *Reply) Header() Header { return r.Hdr }
func (r *Reply) Encode(buf *wire.Buffer) {
	r.Hdr.encode(buf)
	r.Key.Encode(buf)
	buf.PutUword(wire.Word(r.Value.Len()))
	buf.PutRawBytes(r.Value.Bytes())
}
func decodeReply(c *wire.Cursor) *Reply {
	hdr := decodeHeader(c)
	key := kv.DecodeKey(c)
	n := int(c.ReadUword())
	val := kv.NewValue(c.ReadRawBytes(n))
	return &Reply{Hdr: hdr, Key: key, Value: val}
}

// Kill instructs a servicer to exit its dispatch loop.
type Kill struct {
	Hdr Header
}

func NewKill(sender, target int) *Kill {
	return &Kill{Hdr: NewHeader(KindKill, sender, target)}
}
func (k *Kill) Header() Header         { return k.Hdr }
func (k *Kill) Encode(buf *wire.Buffer) { k.Hdr.encode(buf) }
func decodeKill(c *wire.Cursor) *Kill  { return &Kill{Hdr: decodeHeader(c)} }
