package decode

import (
	"net"

	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// EthernetFrame is the decoded Ethernet II / 802.3 header (spec §4.5).
type EthernetFrame struct {
	Dst, Src   net.HardwareAddr
	EtherType  uint16 // valid when >= 0x0600 (Ethernet II)
	Length8023 uint16 // valid when < 0x0600 (802.3 length field)
	rest       []byte
}

// Remainder implements remainderer.
func (e *EthernetFrame) Remainder() []byte { return e.rest }

const ethHeaderLen = 14
const ethMinLenFieldBoundary = 0x0600

// EthernetHandler decodes the link layer. It is always registered at
// (LayerLink, 0), since Ethernet is the only link-layer handler this
// system supports (spec §4.4 step 3).
type EthernetHandler struct{}

// Decode implements registry.Handler.
func (EthernetHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	dst, err := c.Bytes(6)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ethernet: truncated destination MAC"
	}
	src, err := c.Bytes(6)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ethernet: truncated source MAC"
	}
	etherOrLen, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ethernet: truncated ethertype/length field"
	}

	f := &EthernetFrame{
		Dst:  net.HardwareAddr(append([]byte(nil), dst...)),
		Src:  net.HardwareAddr(append([]byte(nil), src...)),
		rest: c.Remaining(),
	}

	if etherOrLen >= ethMinLenFieldBoundary {
		f.EtherType = etherOrLen
		return f, registry.Next{Layer: registry.LayerEthertype, Key: registry.Key(etherOrLen), Valid: true}, registry.NoErr, ""
	}

	f.Length8023 = etherOrLen
	// 802.3 + LLC: the next three bytes are DSAP/SSAP/control; SNAP is
	// signalled by DSAP==SSAP==0xAA. The LLC802 layer's single registered
	// handler (key 0) disambiguates further.
	return f, registry.Next{Layer: registry.LayerLLC802, Key: 0, Valid: true}, registry.NoErr, ""
}
