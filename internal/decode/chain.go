package decode

import (
	"github.com/DrJosh9000/capview/internal/arena"
	"github.com/DrJosh9000/capview/internal/registry"
)

// NewChain returns a Chain that decodes frames through reg, bound to the
// session arena a (it does not own a — callers reset it at the lifecycle
// points spec §5 names). PDUs and Packets are not allocated from a; they
// are ordinary Go heap values (see newPDU).
func NewChain(reg *registry.Registry, a *arena.Arena) *Chain {
	return &Chain{reg: reg, arena: a}
}

// Packets returns every Packet decoded so far, in sequence order.
func (c *Chain) Packets() []*Packet {
	return c.packets
}

// Reset drops the chain's record of decoded packets and restarts sequence
// numbering. Called when the session arena is reset (spec §5 "start"
// clears analyzer state and resets the capture-session arena).
func (c *Chain) Reset() {
	c.packets = nil
	c.nextSeq = 0
}

func newPDU(a *arena.Arena, layer registry.Layer, key registry.Key, id int) *PDU {
	// PDU structs themselves aren't arena-backed (Go has no region types
	// to make that safe for pointer-containing structs), and a is not
	// drawn on here: handlers also copy the bytes they keep into ordinary
	// Go slices. The PDU nodes are regular heap values reclaimed by the GC
	// once the Packet holding them is dropped from the sequence.
	return &PDU{Layer: layer, Key: key, ID: id}
}

// Decode runs the full decoder chain over frame (spec §4.4): assigns a
// sequence number, allocates the root PDU, invokes the link-layer handler,
// and recursively follows Next links up to MaxChainDepth. It never panics:
// every handler is required to bounds-check its own reads, and Decode
// itself never indexes frame outside what a handler's Next/length claims
// were validated against.
func (c *Chain) Decode(frame []byte) *Packet {
	seq := c.nextSeq
	c.nextSeq++

	linkKey := registry.Key(0) // Ethernet is the only link-layer handler in this system (spec §4.4 step 3)
	root := newPDU(c.arena, registry.LayerLink, linkKey, c.reg.IDOf(registry.LayerLink, linkKey))

	pkt := &Packet{Seq: seq, RawLen: len(frame), Root: root}

	kind, detail := c.decodeInto(root, registry.LayerLink, linkKey, frame, 1)
	pkt.ErrKind = kind
	pkt.ErrDetail = detail

	c.packets = append(c.packets, pkt)
	return pkt
}

// decodeInto invokes the handler for (layer, key) against buf, filling pdu
// with the result, and recurses into Next if the handler reported one and
// depth hasn't hit MaxChainDepth. It returns the terminal ErrKind for the
// whole chain from this point down: the first DecodeErr/Truncated wins and
// stops the chain (spec §4.4 step 3); UnkProtocol also stops the chain but
// is reported separately so the packet isn't treated as malformed.
func (c *Chain) decodeInto(pdu *PDU, layer registry.Layer, key registry.Key, buf []byte, depth int) (ErrKind, string) {
	h := c.reg.Get(layer, key)
	if h == nil {
		return UnkProtocol, ""
	}

	payload, next, kind, detail := h.Decode(buf)
	pdu.Payload = payload
	pdu.Length = len(buf)

	switch kind {
	case DecodeErr, Truncated:
		return kind, detail
	case UnkProtocol:
		return UnkProtocol, ""
	}

	// NoErr: record per-protocol stats for this layer (spec §4.4 step 6).
	c.reg.RecordDecode(layer, key, len(buf))

	if !next.Valid || depth >= MaxChainDepth {
		return NoErr, ""
	}

	nextID := c.reg.IDOf(next.Layer, next.Key)
	childPDU := newPDU(c.arena, next.Layer, next.Key, nextID)
	pdu.Next = childPDU

	// The handler already validated next's bounds against its own header
	// and kept the unconsumed tail of buf in its payload; the inner layer
	// decodes that tail, obtained through the payload's Remainder method
	// (a payload without one hands the inner layer no bytes).
	rem := remainderOf(payload)
	innerKind, innerDetail := c.decodeInto(childPDU, next.Layer, next.Key, rem, depth+1)
	return innerKind, innerDetail
}

// remainderer is implemented by handler payload types that carry the
// unconsumed tail of the frame for the next layer to decode.
type remainderer interface {
	Remainder() []byte
}

func remainderOf(payload any) []byte {
	if r, ok := payload.(remainderer); ok {
		return r.Remainder()
	}
	return nil
}
