// Package decode implements the decoder chain and protocol handlers (spec
// §4.4, §4.5): it drives registered handlers over a captured frame, builds
// a linked chain of decoded PDUs, and classifies errors so malformed frames
// are kept and displayed rather than dropped (spec §7).
package decode

import (
	"time"

	"github.com/DrJosh9000/capview/internal/arena"
	"github.com/DrJosh9000/capview/internal/registry"
)

// MaxChainDepth bounds PDU chain recursion (spec §3 invariant: depth ≤ 16).
const MaxChainDepth = 16

// ErrKind classifies the outcome of decoding one layer (spec §7). It is an
// alias of registry.Kind so handlers (which only depend on package
// registry) and the chain (which builds Packets) agree on the same values
// without an import cycle.
type ErrKind = registry.Kind

const (
	NoErr       = registry.NoErr
	DecodeErr   = registry.DecodeErr
	UnkProtocol = registry.UnkProtocol
	Truncated   = registry.Truncated
)

// PDU is one node in a packet's decode tree (spec §3): a protocol
// identifier, a typed payload, the number of bytes this layer covers, and a
// link to the inner PDU (nil if this is the innermost decoded layer).
type PDU struct {
	Layer   registry.Layer
	Key     registry.Key
	ID      int // compact id from the registry, for GetPacketData lookups
	Payload any
	Length  int
	Next    *PDU
}

// GetPacketData walks the chain from root looking for a PDU stamped with
// id, returning its payload. Returns nil if not found or if walking would
// exceed MaxChainDepth (defensive: the chain is built bounded, but a
// pathological caller-supplied root should never spin).
func GetPacketData(root *PDU, id int) any {
	p := root
	for depth := 0; p != nil && depth < MaxChainDepth; depth++ {
		if p.ID == id {
			return p.Payload
		}
		p = p.Next
	}
	return nil
}

// Packet is one captured frame (spec §3): immutable once built, held in
// the Chain's packet sequence until Chain.Reset drops it. It is an
// ordinary Go heap value, not an arena allocation.
type Packet struct {
	Seq       uint64
	TimeSec   int64
	TimeUsec  int64
	RawLen    int
	Root      *PDU
	ErrKind   ErrKind
	ErrDetail string // human-readable diagnostic for DecodeErr/Truncated
}

// Timestamp returns the packet's capture time.
func (p *Packet) Timestamp() time.Time {
	return time.Unix(p.TimeSec, p.TimeUsec*1000)
}

// Chain drives a sequence of monotonically-numbered Packets. It holds a
// reference to the session arena without allocating from it, assigns sequence numbers, and
// stores the decoded Packets for later (index, iteration, and being the
// source of the "pointers into the packet sequence" that the flow analyzer
// keeps, per spec §3).
type Chain struct {
	reg   *registry.Registry
	arena *arena.Arena

	nextSeq uint64
	packets []*Packet
}
