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

// Package message implements the tagged message variants exchanged
// between eau2 nodes: Status, Register, Directory, Get, Put, Reply,
// and Kill, all sharing a uniform (kind, sender, target, id) header.
package message

import (
	"fmt"

	"github.com/SnellerInc/sneller/wire"
	"github.com/google/uuid"
)

// Kind tags which message variant follows the header.
type Kind uint64

const (
	KindStatus Kind = iota
	KindRegister
	KindDirectory
	KindGet
	KindPut
	KindReply
	KindKill
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "Status"
	case KindRegister:
		return "Register"
	case KindDirectory:
		return "Directory"
	case KindGet:
		return "Get"
	case KindPut:
		return "Put"
	case KindReply:
		return "Reply"
	case KindKill:
		return "Kill"
	default:
		return "Unknown"
	}
}

// Header is the uniform three-word-plus-id prefix shared by every
// message: kind, sender, target, and a 16-byte correlation id used to
// match a Reply to the Get that requested it.
type Header struct {
	Kind   Kind
	Sender int
	Target int
	ID     uuid.UUID
}

// NewHeader returns a header for a message of kind k from sender
// to target with a fresh correlation id.
func NewHeader(k Kind, sender, target int) Header {
	return Header{Kind: k, Sender: sender, Target: target, ID: uuid.New()}
}

func (h Header) encode(buf *wire.Buffer) {
	buf.PutUword(wire.Word(h.Kind))
	buf.PutUword(wire.Word(h.Sender))
	buf.PutUword(wire.Word(h.Target))
	buf.PutRawBytes(h.ID[:])
}

func decodeHeader(c *wire.Cursor) Header {
	kind := Kind(c.ReadUword())
	sender := int(c.ReadUword())
	target := int(c.ReadUword())
	var id uuid.UUID
	copy(id[:], c.ReadRawBytes(len(id)))
	return Header{Kind: kind, Sender: sender, Target: target, ID: id}
}

// Message is implemented by every message variant.
type Message interface {
	Header() Header
	Encode(buf *wire.Buffer)
}

// Encode serializes msg to a freshly-allocated byte slice, suitable
// for framing and transmission by a Network implementation.
func Encode(msg Message) []byte {
	buf := wire.NewBuffer()
	msg.Encode(buf)
	out := make([]byte, buf.Size())
	copy(out, buf.Bytes())
	return out
}

// Decode inspects the leading kind tag in raw and delegates to the
// matching variant decoder. An unrecognized kind is a protocol
// violation and is fatal per spec.md's error-handling design.
func Decode(raw []byte) Message {
	c := wire.NewCursor(raw)
	kind := Kind(c.PeekUword())
	switch kind {
	case KindStatus:
		return decodeStatus(c)
	case KindRegister:
		return decodeRegister(c)
	case KindDirectory:
		return decodeDirectory(c)
	case KindGet:
		return decodeGet(c)
	case KindPut:
		return decodePut(c)
	case KindReply:
		return decodeReply(c)
	case KindKill:
		return decodeKill(c)
	default:
		panic(fmt.Sprintf("message.Decode: unknown message kind %d", kind))
	}
}
