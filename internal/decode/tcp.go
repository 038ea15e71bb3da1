package decode

import (
	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// TCP flag bits (spec §4.5/§4.7).
const (
	TCPFlagFIN = 1 << 0
	TCPFlagSYN = 1 << 1
	TCPFlagRST = 1 << 2
	TCPFlagPSH = 1 << 3
	TCPFlagACK = 1 << 4
	TCPFlagURG = 1 << 5
)

// TCPOption is one parsed TCP options TLV entry. Kind 0 (EOL) and kind 1
// (NOP) carry no Data.
type TCPOption struct {
	Kind byte
	Data []byte
}

// TCPSegment is the decoded TCP header.
type TCPSegment struct {
	SrcPort, DstPort uint16
	SeqNum, AckNum   uint32
	DataOffset       byte // in 32-bit words
	Flags            byte
	Window           uint16
	Checksum         uint16
	UrgentPointer    uint16
	Options          []TCPOption
	rest             []byte
}

// Remainder implements remainderer.
func (s *TCPSegment) Remainder() []byte { return s.rest }

const tcpMinHeaderWords = 5

// TCPHandler decodes TCP and performs the port-layer dispatch spec §4.4
// step 5 describes: both source and destination port are checked against
// the registry (destination first), and whichever one matches becomes the
// Next key. reg must be the same registry the handler is registered into.
type TCPHandler struct {
	Reg *registry.Registry
}

// Decode implements registry.Handler.
func (h TCPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	srcPort, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tcp: truncated source port"
	}
	dstPort, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tcp: truncated destination port"
	}
	seq, err := c.U32BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tcp: truncated sequence number"
	}
	ack, err := c.U32BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tcp: truncated acknowledgment number"
	}
	offsetFlags, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tcp: truncated data offset/flags"
	}
	window, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tcp: truncated window"
	}
	checksum, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tcp: truncated checksum"
	}
	urgPtr, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tcp: truncated urgent pointer"
	}

	dataOffset := byte(offsetFlags >> 12)
	flags := byte(offsetFlags & 0x3F)

	if dataOffset < tcpMinHeaderWords {
		return nil, registry.Next{}, registry.DecodeErr, "tcp: data offset < 5"
	}
	headerLen := int(dataOffset) * 4
	if headerLen > len(buf) {
		return nil, registry.Next{}, registry.DecodeErr, "tcp: data offset exceeds captured length"
	}

	opts, err := parseTCPOptions(buf[20:headerLen])
	if err != nil {
		return nil, registry.Next{}, registry.DecodeErr, "tcp: malformed options"
	}

	seg := &TCPSegment{
		SrcPort:       srcPort,
		DstPort:       dstPort,
		SeqNum:        seq,
		AckNum:        ack,
		DataOffset:    dataOffset,
		Flags:         flags,
		Window:        window,
		Checksum:      checksum,
		UrgentPointer: urgPtr,
		Options:       opts,
		rest:          buf[headerLen:],
	}

	next := registry.Next{}
	if h.Reg != nil {
		if h.Reg.Get(registry.LayerPort, registry.Key(dstPort)) != nil {
			next = registry.Next{Layer: registry.LayerPort, Key: registry.Key(dstPort), Valid: true}
		} else if h.Reg.Get(registry.LayerPort, registry.Key(srcPort)) != nil {
			next = registry.Next{Layer: registry.LayerPort, Key: registry.Key(srcPort), Valid: true}
		}
	}

	return seg, next, registry.NoErr, ""
}

// parseTCPOptions walks a TCP options area as a TLV stream. Kind 0 (EOL)
// ends the walk early; kind 1 (NOP) is a single byte with no length field.
// Every other kind carries an explicit length byte (including itself and
// the kind byte), so a length of 0 or 1 on those kinds would spin forever —
// that is rejected rather than looped on.
func parseTCPOptions(buf []byte) ([]TCPOption, error) {
	var opts []TCPOption
	c := byteio.NewCursor(buf)
	for c.Len() > 0 {
		kind, err := c.U8()
		if err != nil {
			return opts, err
		}
		if kind == 0 {
			break
		}
		if kind == 1 {
			opts = append(opts, TCPOption{Kind: kind})
			continue
		}
		length, err := c.U8()
		if err != nil {
			return opts, err
		}
		if length < 2 {
			return opts, byteio.ErrTruncated
		}
		data, err := c.Bytes(int(length) - 2)
		if err != nil {
			return opts, err
		}
		opts = append(opts, TCPOption{Kind: kind, Data: append([]byte(nil), data...)})
	}
	return opts, nil
}
