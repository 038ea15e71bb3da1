package decode

import (
	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

const udpHeaderLen = 8

// UDPDatagram is the decoded UDP header.
type UDPDatagram struct {
	SrcPort, DstPort uint16
	Length           uint16
	Checksum         uint16
	rest             []byte
}

// Remainder implements remainderer.
func (d *UDPDatagram) Remainder() []byte { return d.rest }

// UDPHandler decodes UDP, with the same destination-then-source port
// registry dispatch TCPHandler uses (spec §4.4 step 5).
type UDPHandler struct {
	Reg *registry.Registry
}

// Decode implements registry.Handler.
func (h UDPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	if len(buf) < udpHeaderLen {
		return nil, registry.Next{}, registry.Truncated, "udp: truncated header"
	}
	c := byteio.NewCursor(buf)
	srcPort, _ := c.U16BE()
	dstPort, _ := c.U16BE()
	length, _ := c.U16BE()
	checksum, _ := c.U16BE()

	if int(length) < udpHeaderLen || int(length) > len(buf) {
		return nil, registry.Next{}, registry.DecodeErr, "udp: length inconsistent with captured length"
	}

	d := &UDPDatagram{
		SrcPort:  srcPort,
		DstPort:  dstPort,
		Length:   length,
		Checksum: checksum,
		rest:     buf[udpHeaderLen:length],
	}

	next := registry.Next{}
	if h.Reg != nil {
		if h.Reg.Get(registry.LayerPort, registry.Key(dstPort)) != nil {
			next = registry.Next{Layer: registry.LayerPort, Key: registry.Key(dstPort), Valid: true}
		} else if h.Reg.Get(registry.LayerPort, registry.Key(srcPort)) != nil {
			next = registry.Next{Layer: registry.LayerPort, Key: registry.Key(srcPort), Valid: true}
		}
	}

	return d, next, registry.NoErr, ""
}
