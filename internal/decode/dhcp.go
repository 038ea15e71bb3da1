package decode

import (
	"net"

	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// dhcpMagicCookie identifies a BOOTP packet as DHCP (RFC 2131 §3).
var dhcpMagicCookie = [4]byte{99, 130, 83, 99}

// DHCPOption is one parsed DHCP option TLV.
type DHCPOption struct {
	Code byte
	Data []byte
}

// DHCPMessage is the decoded BOOTP/DHCP message.
type DHCPMessage struct {
	Op            byte
	HType         byte
	HLen          byte
	Hops          byte
	XID           uint32
	Secs          uint16
	Flags         uint16
	ClientAddr    net.IP
	YourAddr      net.IP
	ServerAddr    net.IP
	GatewayAddr   net.IP
	ClientHWAddr  net.HardwareAddr
	Options       []DHCPOption
}

const dhcpFixedLen = 236 // up to but excluding the magic cookie

// DHCPHandler decodes BOOTP/DHCP messages.
type DHCPHandler struct{}

// Decode implements registry.Handler. DHCP has no further inner PDU.
func (DHCPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	if len(buf) < dhcpFixedLen+4 {
		return nil, registry.Next{}, registry.Truncated, "dhcp: truncated fixed section"
	}
	c := byteio.NewCursor(buf)
	op, _ := c.U8()
	htype, _ := c.U8()
	hlen, _ := c.U8()
	hops, _ := c.U8()
	xid, _ := c.U32BE()
	secs, _ := c.U16BE()
	flags, _ := c.U16BE()
	ciaddr, _ := c.Bytes(4)
	yiaddr, _ := c.Bytes(4)
	siaddr, _ := c.Bytes(4)
	giaddr, _ := c.Bytes(4)
	chaddr, _ := c.Bytes(16)

	if err := c.Seek(dhcpFixedLen); err != nil {
		return nil, registry.Next{}, registry.Truncated, "dhcp: truncated sname/file section"
	}
	cookie, err := c.Bytes(4)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "dhcp: truncated magic cookie"
	}
	if [4]byte(cookie) != dhcpMagicCookie {
		return nil, registry.Next{}, registry.DecodeErr, "dhcp: bad magic cookie"
	}

	hwLen := int(hlen)
	if hwLen > 16 {
		hwLen = 16
	}

	m := &DHCPMessage{
		Op:           op,
		HType:        htype,
		HLen:         hlen,
		Hops:         hops,
		XID:          xid,
		Secs:         secs,
		Flags:        flags,
		ClientAddr:   net.IP(append([]byte(nil), ciaddr...)),
		YourAddr:     net.IP(append([]byte(nil), yiaddr...)),
		ServerAddr:   net.IP(append([]byte(nil), siaddr...)),
		GatewayAddr:  net.IP(append([]byte(nil), giaddr...)),
		ClientHWAddr: net.HardwareAddr(append([]byte(nil), chaddr[:hwLen]...)),
	}

	for c.Len() > 0 {
		code, err := c.U8()
		if err != nil {
			break
		}
		if code == 0xFF { // End option
			break
		}
		if code == 0x00 { // Pad option
			continue
		}
		length, err := c.U8()
		if err != nil {
			return nil, registry.Next{}, registry.DecodeErr, "dhcp: truncated option length"
		}
		data, err := c.Bytes(int(length))
		if err != nil {
			return nil, registry.Next{}, registry.DecodeErr, "dhcp: truncated option data"
		}
		m.Options = append(m.Options, DHCPOption{Code: code, Data: append([]byte(nil), data...)})
	}

	return m, registry.Next{}, registry.NoErr, ""
}
