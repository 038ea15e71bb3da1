package decode

import (
	"net"

	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// EtherTypeARP is the Ethernet II ethertype for ARP.
const EtherTypeARP = 0x0806

// ARPOp is the ARP opcode (spec S1 scenario: opcode 1 is "request").
type ARPOp uint16

const (
	ARPRequest ARPOp = 1
	ARPReply   ARPOp = 2
)

// ARPPacket is the decoded ARP payload. ARP has no inner PDU, so it does
// not implement remainderer.
type ARPPacket struct {
	Op                         ARPOp
	SenderMAC, TargetMAC       net.HardwareAddr
	SenderIP, TargetIP         net.IP
}

// ARPHandler decodes ARP (spec §4.5, scenario S1).
type ARPHandler struct{}

// Decode implements registry.Handler.
func (ARPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)

	htype, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated hardware type"
	}
	ptype, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated protocol type"
	}
	hlen, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated hardware length"
	}
	plen, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated protocol length"
	}
	op, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated opcode"
	}
	if htype != 1 || ptype != 0x0800 || hlen != 6 || plen != 4 {
		return nil, registry.Next{}, registry.DecodeErr, "arp: unsupported hardware/protocol type combination"
	}

	senderMAC, err := c.Bytes(6)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated sender MAC"
	}
	senderIP, err := c.Bytes(4)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated sender IP"
	}
	targetMAC, err := c.Bytes(6)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated target MAC"
	}
	targetIP, err := c.Bytes(4)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "arp: truncated target IP"
	}

	p := &ARPPacket{
		Op:        ARPOp(op),
		SenderMAC: net.HardwareAddr(append([]byte(nil), senderMAC...)),
		SenderIP:  net.IP(append([]byte(nil), senderIP...)),
		TargetMAC: net.HardwareAddr(append([]byte(nil), targetMAC...)),
		TargetIP:  net.IP(append([]byte(nil), targetIP...)),
	}
	return p, registry.Next{}, registry.NoErr, ""
}
